package goals

import (
	"time"

	"github.com/shopspring/decimal"
)

// Intent is the outcome of interpreting a goal phrase. It is one of
// ContributeIntent, CreateIntent, ListIntent, InvalidIntent or
// UnrecognizedIntent.
type Intent interface {
	intent()
}

// ContributeIntent adds money to an existing goal.
type ContributeIntent struct {
	GoalName string
	Amount   decimal.Decimal
}

// CreateIntent opens a new goal.
type CreateIntent struct {
	Name     string
	Amount   decimal.Decimal
	Deadline *time.Time
}

// ListIntent asks for the user's goals.
type ListIntent struct{}

// InvalidIntent is a recognized goal phrase whose amount or deadline failed
// validation. Err carries the typed error.
type InvalidIntent struct {
	Err error
}

// UnrecognizedIntent means no goal pattern matched.
type UnrecognizedIntent struct{}

func (ContributeIntent) intent()   {}
func (CreateIntent) intent()       {}
func (ListIntent) intent()         {}
func (InvalidIntent) intent()      {}
func (UnrecognizedIntent) intent() {}
