package store

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/metrics"
)

// BreakerLedger guards a ledger with a circuit breaker. Consecutive storage
// failures open the circuit and later calls fail fast with LEDGER_001 until
// the timeout elapses.
type BreakerLedger struct {
	next    ledger.Ledger
	cb      *gobreaker.CircuitBreaker[any]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ ledger.Ledger = (*BreakerLedger)(nil)

type BreakerOptions struct {
	MaxFailures uint32
	OpenTimeout time.Duration
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

func NewBreakerLedger(next ledger.Ledger, opts BreakerOptions) *BreakerLedger {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	b := &BreakerLedger{
		next:    next,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}

	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "ledger",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if b.metrics != nil {
				b.metrics.SetBreakerState(int(to))
			}
		},
		// domain errors (goal not found and similar) mean the ledger answered
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.IsAppError(err)
		},
	})

	return b
}

// State reports the current breaker state
func (b *BreakerLedger) State() gobreaker.State {
	return b.cb.State()
}

func call[T any](b *BreakerLedger, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, apperrors.Wrap(err, apperrors.ErrLedgerUnavailable.Code, "ledger temporarily unavailable")
	}
	if err != nil {
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, nil
	}
	return v, nil
}

func (b *BreakerLedger) AppendTransaction(ctx context.Context, tx *ledger.Transaction) error {
	_, err := call(b, func() (struct{}, error) {
		return struct{}{}, b.next.AppendTransaction(ctx, tx)
	})
	return err
}

func (b *BreakerLedger) ListTransactions(ctx context.Context, owner string, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	return call(b, func() ([]ledger.Transaction, error) {
		return b.next.ListTransactions(ctx, owner, filter)
	})
}

func (b *BreakerLedger) ListGoals(ctx context.Context, owner string) ([]ledger.Goal, error) {
	return call(b, func() ([]ledger.Goal, error) {
		return b.next.ListGoals(ctx, owner)
	})
}

func (b *BreakerLedger) GetGoal(ctx context.Context, owner, name string) (*ledger.Goal, error) {
	return call(b, func() (*ledger.Goal, error) {
		return b.next.GetGoal(ctx, owner, name)
	})
}

func (b *BreakerLedger) GetGoalByID(ctx context.Context, owner string, id uint) (*ledger.Goal, error) {
	return call(b, func() (*ledger.Goal, error) {
		return b.next.GetGoalByID(ctx, owner, id)
	})
}

func (b *BreakerLedger) CreateGoal(ctx context.Context, goal *ledger.Goal) (uint, error) {
	return call(b, func() (uint, error) {
		return b.next.CreateGoal(ctx, goal)
	})
}

func (b *BreakerLedger) UpdateGoal(ctx context.Context, owner string, id uint, update ledger.GoalUpdate) error {
	_, err := call(b, func() (struct{}, error) {
		return struct{}{}, b.next.UpdateGoal(ctx, owner, id, update)
	})
	return err
}

func (b *BreakerLedger) DeleteGoal(ctx context.Context, owner string, id uint) error {
	_, err := call(b, func() (struct{}, error) {
		return struct{}{}, b.next.DeleteGoal(ctx, owner, id)
	})
	return err
}

type settingResult struct {
	value string
	found bool
}

func (b *BreakerLedger) GetSetting(ctx context.Context, owner, key string) (string, bool, error) {
	res, err := call(b, func() (settingResult, error) {
		v, ok, err := b.next.GetSetting(ctx, owner, key)
		return settingResult{value: v, found: ok}, err
	})
	return res.value, res.found, err
}

func (b *BreakerLedger) SetSetting(ctx context.Context, owner, key, value string) error {
	_, err := call(b, func() (struct{}, error) {
		return struct{}{}, b.next.SetSetting(ctx, owner, key, value)
	})
	return err
}
