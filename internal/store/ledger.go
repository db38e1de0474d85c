package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/ledger"
)

// Ledger persists transactions, goals and settings in SQLite
type Ledger struct {
	db *gorm.DB
}

var _ ledger.Ledger = (*Ledger)(nil)

// NewLedger creates a new ledger and migrates its schema
func NewLedger(db *gorm.DB) (*Ledger, error) {
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// ==================== Transactions ====================

// AppendTransaction stores a transaction. Calling it twice stores it twice.
func (l *Ledger) AppendTransaction(ctx context.Context, tx *ledger.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = time.Now()
	}
	// stored in UTC so range filters compare consistently
	tx.OccurredAt = tx.OccurredAt.UTC()
	tx.Amount = tx.Amount.Round(2)
	tx.CreatedAt = time.Now()

	return l.db.WithContext(ctx).Create(tx).Error
}

// ListTransactions returns the owner's transactions, newest first
func (l *Ledger) ListTransactions(ctx context.Context, owner string, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	query := l.db.WithContext(ctx).Where("owner = ?", owner)

	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", filter.To.UTC())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var txs []ledger.Transaction
	err := query.Order("occurred_at DESC").Find(&txs).Error
	return txs, err
}

// ==================== Goals ====================

// ListGoals returns the owner's goals in creation order
func (l *Ledger) ListGoals(ctx context.Context, owner string) ([]ledger.Goal, error) {
	var goals []ledger.Goal
	err := l.db.WithContext(ctx).Where("owner = ?", owner).Order("id ASC").Find(&goals).Error
	return goals, err
}

// GetGoal finds a goal by case-insensitive exact name; nil when absent.
// SQLite's lower() only folds ASCII, so the comparison happens here.
func (l *Ledger) GetGoal(ctx context.Context, owner, name string) (*ledger.Goal, error) {
	goals, err := l.ListGoals(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		if goals[i].MatchesName(name) {
			return &goals[i], nil
		}
	}
	return nil, nil
}

// GetGoalByID retrieves a goal by id; nil when absent
func (l *Ledger) GetGoalByID(ctx context.Context, owner string, id uint) (*ledger.Goal, error) {
	var goal ledger.Goal
	err := l.db.WithContext(ctx).Where("owner = ? AND id = ?", owner, id).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// CreateGoal stores a new goal and returns its id
func (l *Ledger) CreateGoal(ctx context.Context, goal *ledger.Goal) (uint, error) {
	goal.ID = 0
	if goal.Status == "" {
		goal.Status = ledger.GoalActive
	}
	goal.TargetAmount = goal.TargetAmount.Round(2)
	goal.CurrentAmount = goal.CurrentAmount.Round(2)

	if err := l.db.WithContext(ctx).Create(goal).Error; err != nil {
		return 0, err
	}
	return goal.ID, nil
}

// UpdateGoal applies the non-nil fields of update
func (l *Ledger) UpdateGoal(ctx context.Context, owner string, id uint, update ledger.GoalUpdate) error {
	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if update.Name != nil {
		fields["name"] = strings.TrimSpace(*update.Name)
	}
	if update.TargetAmount != nil {
		fields["target_amount"] = update.TargetAmount.Round(2)
	}
	if update.CurrentAmount != nil {
		fields["current_amount"] = update.CurrentAmount.Round(2)
	}
	if update.ClearDeadline {
		fields["deadline"] = nil
	} else if update.Deadline != nil {
		fields["deadline"] = *update.Deadline
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}

	result := l.db.WithContext(ctx).Model(&ledger.Goal{}).
		Where("owner = ? AND id = ?", owner, id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.WithDetail(apperrors.ErrGoalNotFound, fmt.Sprintf("Meta #%d não encontrada", id))
	}
	return nil
}

// DeleteGoal removes a goal permanently
func (l *Ledger) DeleteGoal(ctx context.Context, owner string, id uint) error {
	result := l.db.WithContext(ctx).Where("owner = ? AND id = ?", owner, id).Delete(&ledger.Goal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.WithDetail(apperrors.ErrGoalNotFound, fmt.Sprintf("Meta #%d não encontrada", id))
	}
	return nil
}

// ListOverdueGoals returns active goals of every owner whose deadline is
// before now. Only maintenance jobs use it.
func (l *Ledger) ListOverdueGoals(ctx context.Context, now time.Time) ([]ledger.Goal, error) {
	var active []ledger.Goal
	err := l.db.WithContext(ctx).
		Where("status = ? AND deadline IS NOT NULL", ledger.GoalActive).
		Order("id ASC").
		Find(&active).Error
	if err != nil {
		return nil, err
	}

	var overdue []ledger.Goal
	for _, g := range active {
		if g.Deadline.Before(now) {
			overdue = append(overdue, g)
		}
	}
	return overdue, nil
}

// ==================== Settings ====================

// GetSetting returns the value and whether it was set
func (l *Ledger) GetSetting(ctx context.Context, owner, key string) (string, bool, error) {
	var setting ledger.Setting
	err := l.db.WithContext(ctx).Where("owner = ? AND key = ?", owner, key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

// SetSetting inserts or replaces a setting
func (l *Ledger) SetSetting(ctx context.Context, owner, key, value string) error {
	setting := &ledger.Setting{Owner: owner, Key: key, Value: value, UpdatedAt: time.Now()}
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
}
