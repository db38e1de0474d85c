package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/metrics"
)

// flakyLedger fails every call with err while it is set
type flakyLedger struct {
	ledger.Ledger
	err   error
	calls int
}

func (f *flakyLedger) ListGoals(ctx context.Context, owner string) ([]ledger.Goal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []ledger.Goal{{ID: 1, Owner: owner, Name: "Viagem"}}, nil
}

func (f *flakyLedger) GetSetting(ctx context.Context, owner, key string) (string, bool, error) {
	f.calls++
	if f.err != nil {
		return "", false, f.err
	}
	return "Alice", true, nil
}

func TestBreakerPassesThrough(t *testing.T) {
	inner := &flakyLedger{}
	b := NewBreakerLedger(inner, BreakerOptions{MaxFailures: 2})

	goals, err := b.ListGoals(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Viagem", goals[0].Name)

	value, found, err := b.GetSetting(context.Background(), "alice", ledger.SettingUserName)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Alice", value)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyLedger{err: errors.New("disk I/O error")}
	m := metrics.New()
	b := NewBreakerLedger(inner, BreakerOptions{MaxFailures: 2, OpenTimeout: time.Minute, Metrics: m})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := b.ListGoals(ctx, "alice")
		require.Error(t, err)
		assert.False(t, errors.Is(err, apperrors.ErrLedgerUnavailable))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.ListGoals(ctx, "alice")
	assert.ErrorIs(t, err, apperrors.ErrLedgerUnavailable)
	assert.Equal(t, 2, inner.calls, "open breaker must not reach the ledger")
}

func TestBreakerIgnoresDomainErrors(t *testing.T) {
	inner := &flakyLedger{err: apperrors.ErrGoalNotFound}
	b := NewBreakerLedger(inner, BreakerOptions{MaxFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := b.ListGoals(context.Background(), "alice")
		assert.ErrorIs(t, err, apperrors.ErrGoalNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerOverRealLedger(t *testing.T) {
	b := NewBreakerLedger(newTestLedger(t), BreakerOptions{})
	ctx := context.Background()

	goal, err := b.GetGoal(ctx, "alice", "nada")
	require.NoError(t, err)
	assert.Nil(t, goal)

	require.NoError(t, b.SetSetting(ctx, "alice", ledger.SettingSalary, "5000.00"))
	value, found, err := b.GetSetting(ctx, "alice", ledger.SettingSalary)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "5000.00", value)
}
