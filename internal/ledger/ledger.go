// Package ledger defines the persistence contract for transactions, goals
// and per-user settings. Every operation is scoped to a single owner.
package ledger

import "context"

// Ledger is implemented by internal/store.
type Ledger interface {
	AppendTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, owner string, filter TransactionFilter) ([]Transaction, error)

	ListGoals(ctx context.Context, owner string) ([]Goal, error)
	// GetGoal looks a goal up by case-insensitive name; nil when absent.
	GetGoal(ctx context.Context, owner, name string) (*Goal, error)
	GetGoalByID(ctx context.Context, owner string, id uint) (*Goal, error)
	CreateGoal(ctx context.Context, goal *Goal) (uint, error)
	UpdateGoal(ctx context.Context, owner string, id uint, update GoalUpdate) error
	DeleteGoal(ctx context.Context, owner string, id uint) error

	GetSetting(ctx context.Context, owner, key string) (string, bool, error)
	SetSetting(ctx context.Context, owner, key, value string) error
}
