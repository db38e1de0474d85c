package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/metrics"
)

type fakeGC struct {
	calls     int
	rewritten int
	err       error
	kv        map[string]string
}

func (f *fakeGC) RunValueLogGC(discardRatio float64) (int, error) {
	f.calls++
	return f.rewritten, f.err
}

func (f *fakeGC) SetKV(key string, value []byte) error {
	if f.kv == nil {
		f.kv = make(map[string]string)
	}
	f.kv[key] = string(value)
	return nil
}

type fakeGoals struct {
	goals []ledger.Goal
	err   error
}

func (f *fakeGoals) ListOverdueGoals(ctx context.Context, now time.Time) ([]ledger.Goal, error) {
	return f.goals, f.err
}

func TestNewRunnerRegistersJobs(t *testing.T) {
	r, err := NewRunner(Config{BadgerGC: "@every 1h", DeadlineSweep: "0 9 * * *"}, &fakeGC{}, &fakeGoals{}, metrics.New(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Jobs())

	r, err = NewRunner(Config{BadgerGC: "@every 1h"}, &fakeGC{}, nil, metrics.New(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Jobs())
}

func TestNewRunnerRejectsBadSchedule(t *testing.T) {
	_, err := NewRunner(Config{BadgerGC: "every hour"}, &fakeGC{}, nil, metrics.New(), zap.NewNop())
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	r, err := NewRunner(Config{BadgerGC: "@every 1h"}, &fakeGC{}, nil, metrics.New(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, r.Start())
	assert.True(t, r.IsRunning())
	assert.Error(t, r.Start())

	r.Stop()
	assert.False(t, r.IsRunning())
	r.Stop()
}

func TestRunGC(t *testing.T) {
	gc := &fakeGC{rewritten: 3}
	m := metrics.New()
	r, err := NewRunner(Config{}, gc, nil, m, zap.NewNop())
	require.NoError(t, err)

	r.RunGC()
	assert.Equal(t, 1, gc.calls)
	assert.Contains(t, gc.kv, LastRunKey(JobBadgerGC))

	gc.err = errors.New("closed")
	r.RunGC()
	assert.Equal(t, 2, gc.calls)

	expected := `
# HELP finbot_badger_gc_rewrites_total Badger value-log files rewritten by GC
# TYPE finbot_badger_gc_rewrites_total counter
finbot_badger_gc_rewrites_total 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "finbot_badger_gc_rewrites_total"))
}

func TestSweepDeadlines(t *testing.T) {
	past := time.Now().AddDate(0, -1, 0)
	lister := &fakeGoals{goals: []ledger.Goal{
		{ID: 1, Owner: "alice", Name: "Viagem", Deadline: &past, Status: ledger.GoalActive},
		{ID: 2, Owner: "bob", Name: "Carro", Deadline: &past, Status: ledger.GoalActive},
	}}
	kv := &fakeGC{}
	r, err := NewRunner(Config{Location: time.UTC}, kv, lister, metrics.New(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, r.SweepDeadlines(context.Background()))
	stamp, ok := kv.kv[LastRunKey(JobDeadlineSweep)]
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err)

	delete(kv.kv, LastRunKey(JobDeadlineSweep))
	lister.err = errors.New("database is locked")
	assert.Equal(t, 0, r.SweepDeadlines(context.Background()))
	assert.NotContains(t, kv.kv, LastRunKey(JobDeadlineSweep))
}
