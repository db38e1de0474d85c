package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes money going out from money coming in
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Transaction is one immutable ledger entry
type Transaction struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	Owner       string          `json:"owner" gorm:"index"`
	Kind        Kind            `json:"kind" gorm:"index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2)"`
	Description string          `json:"description"`
	Category    string          `json:"category" gorm:"index"`
	OccurredAt  time.Time       `json:"occurred_at" gorm:"index"`
	CreatedAt   time.Time       `json:"created_at"`

	// DateMentioned is false when OccurredAt fell back to parse time.
	DateMentioned bool `json:"date_mentioned" gorm:"-"`
}

// GoalStatus is the lifecycle state of a goal
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

// Goal is a named savings target
type Goal struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Owner         string          `json:"owner" gorm:"index"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount" gorm:"type:decimal(20,2)"`
	CurrentAmount decimal.Decimal `json:"current_amount" gorm:"type:decimal(20,2)"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	Description   string          `json:"description,omitempty"`
	Status        GoalStatus      `json:"status" gorm:"index"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsActive reports whether the goal still accepts contributions
func (g *Goal) IsActive() bool {
	return g.Status == GoalActive
}

// Progress returns the completion percentage rounded to one place
func (g *Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(1)
}

// Remaining returns how much is still missing, never negative
func (g *Goal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// MatchesName compares goal names case-insensitively
func (g *Goal) MatchesName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(g.Name), strings.TrimSpace(name))
}

// GoalUpdate carries optional field changes; nil fields are left untouched.
type GoalUpdate struct {
	Name          *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *time.Time
	ClearDeadline bool
	Description   *string
	Status        *GoalStatus
}

// IsEmpty reports whether the update changes nothing
func (u GoalUpdate) IsEmpty() bool {
	return u.Name == nil && u.TargetAmount == nil && u.CurrentAmount == nil &&
		u.Deadline == nil && !u.ClearDeadline && u.Description == nil && u.Status == nil
}

// TransactionFilter narrows ListTransactions; zero values mean "any".
type TransactionFilter struct {
	Kind     Kind
	Category string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// Setting is a per-owner key/value pair
type Setting struct {
	Owner     string    `json:"owner" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known setting keys
const (
	SettingUserName = "nome_usuario"
	SettingSalary   = "salario"
)
