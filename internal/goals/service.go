// Package goals interprets savings-goal phrases and applies them to the
// ledger: contributions, creation, listing, edits and removal.
package goals

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/money"
)

// ContributionResult reports the state of a goal after a contribution.
type ContributionResult struct {
	Goal      ledger.Goal
	Added     decimal.Decimal
	Percent   decimal.Decimal
	Completed bool
}

// Service applies goal intents against a Ledger.
type Service struct {
	ledger ledger.Ledger
	logger *zap.Logger
}

// NewService creates a goal service
func NewService(l ledger.Ledger, logger *zap.Logger) *Service {
	return &Service{ledger: l, logger: logger}
}

// Contribute adds amount to the owner's goal named name (case-insensitive,
// exact). Inactive goals are left untouched.
func (s *Service) Contribute(ctx context.Context, owner, name string, amount decimal.Decimal) (*ContributionResult, error) {
	goal, err := s.ledger.GetGoal(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up goal: %w", err)
	}
	if goal == nil {
		return nil, apperrors.WithDetail(apperrors.ErrGoalNotFound,
			fmt.Sprintf("Não encontrei a meta '%s'. Verifique se o nome está correto.", name))
	}
	if !goal.IsActive() {
		return nil, apperrors.WithDetail(apperrors.ErrGoalNotActive,
			fmt.Sprintf("A meta '%s' não está ativa", goal.Name))
	}

	total := goal.CurrentAmount.Add(amount).Round(2)
	update := ledger.GoalUpdate{CurrentAmount: &total}

	completed := total.GreaterThanOrEqual(goal.TargetAmount)
	if completed {
		status := ledger.GoalCompleted
		update.Status = &status
	}

	if err := s.ledger.UpdateGoal(ctx, owner, goal.ID, update); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	goal.CurrentAmount = total
	if completed {
		goal.Status = ledger.GoalCompleted
	}

	s.logger.Info("Goal contribution registered",
		zap.String("owner", owner),
		zap.Uint("goal_id", goal.ID),
		zap.String("amount", money.Canonical(amount)),
		zap.Bool("completed", completed),
	)

	return &ContributionResult{
		Goal:      *goal,
		Added:     amount,
		Percent:   money.Percent(total, goal.TargetAmount),
		Completed: completed,
	}, nil
}

// Create opens a new active goal.
func (s *Service) Create(ctx context.Context, owner string, intent CreateIntent) (*ledger.Goal, error) {
	name := strings.TrimSpace(intent.Name)
	if name == "" {
		return nil, apperrors.WithDetail(apperrors.ErrInvalidInput, "O nome da meta não pode ficar vazio")
	}
	if !intent.Amount.IsPositive() {
		return nil, apperrors.WithDetail(apperrors.ErrNonPositiveAmount, "O valor deve ser maior que zero")
	}

	goal := &ledger.Goal{
		Owner:         owner,
		Name:          name,
		TargetAmount:  intent.Amount.Round(2),
		CurrentAmount: decimal.Zero,
		Deadline:      intent.Deadline,
		Status:        ledger.GoalActive,
	}

	id, err := s.ledger.CreateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	goal.ID = id

	s.logger.Info("Goal created",
		zap.String("owner", owner),
		zap.Uint("goal_id", id),
		zap.String("name", name),
	)

	return goal, nil
}

// List returns all of the owner's goals.
func (s *Service) List(ctx context.Context, owner string) ([]ledger.Goal, error) {
	goals, err := s.ledger.ListGoals(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// Edit changes the given fields of a goal. Raising current or lowering the
// target can complete an active goal; nothing moves it back to active.
func (s *Service) Edit(ctx context.Context, owner string, id uint, update ledger.GoalUpdate) (*ledger.Goal, error) {
	goal, err := s.get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return goal, nil
	}
	if update.Status != nil {
		return nil, apperrors.WithDetail(apperrors.ErrBadRequest, "O status da meta não pode ser editado diretamente")
	}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, apperrors.WithDetail(apperrors.ErrInvalidInput, "O nome da meta não pode ficar vazio")
		}
		update.Name = &trimmed
		goal.Name = trimmed
	}
	if update.TargetAmount != nil {
		if !update.TargetAmount.IsPositive() {
			return nil, apperrors.WithDetail(apperrors.ErrNonPositiveAmount, "O valor deve ser maior que zero")
		}
		goal.TargetAmount = update.TargetAmount.Round(2)
	}
	if update.CurrentAmount != nil {
		if update.CurrentAmount.IsNegative() {
			return nil, apperrors.WithDetail(apperrors.ErrNonPositiveAmount, "O valor atual não pode ser negativo")
		}
		goal.CurrentAmount = update.CurrentAmount.Round(2)
	}
	if update.Description != nil {
		goal.Description = *update.Description
	}
	if update.ClearDeadline {
		goal.Deadline = nil
	} else if update.Deadline != nil {
		goal.Deadline = update.Deadline
	}

	if goal.IsActive() && goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount) {
		status := ledger.GoalCompleted
		update.Status = &status
		goal.Status = status
	}

	if err := s.ledger.UpdateGoal(ctx, owner, id, update); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return goal, nil
}

// Cancel moves an active goal to cancelled.
func (s *Service) Cancel(ctx context.Context, owner string, id uint) (*ledger.Goal, error) {
	goal, err := s.get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if !goal.IsActive() {
		return nil, apperrors.WithDetail(apperrors.ErrGoalNotActive,
			fmt.Sprintf("A meta '%s' não está ativa", goal.Name))
	}

	status := ledger.GoalCancelled
	if err := s.ledger.UpdateGoal(ctx, owner, id, ledger.GoalUpdate{Status: &status}); err != nil {
		return nil, fmt.Errorf("failed to cancel goal: %w", err)
	}
	goal.Status = status

	s.logger.Info("Goal cancelled", zap.String("owner", owner), zap.Uint("goal_id", id))
	return goal, nil
}

// Remove deletes a goal permanently.
func (s *Service) Remove(ctx context.Context, owner string, id uint) error {
	if _, err := s.get(ctx, owner, id); err != nil {
		return err
	}
	if err := s.ledger.DeleteGoal(ctx, owner, id); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	s.logger.Info("Goal removed", zap.String("owner", owner), zap.Uint("goal_id", id))
	return nil
}

func (s *Service) get(ctx context.Context, owner string, id uint) (*ledger.Goal, error) {
	goal, err := s.ledger.GetGoalByID(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up goal: %w", err)
	}
	if goal == nil {
		return nil, apperrors.WithDetail(apperrors.ErrGoalNotFound,
			fmt.Sprintf("Meta #%d não encontrada", id))
	}
	return goal, nil
}
