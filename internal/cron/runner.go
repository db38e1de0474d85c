// Package cron schedules storage maintenance and the goal deadline sweep.
package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/metrics"
)

// gcDiscardRatio is the badger value-log discard ratio used by the GC job
const gcDiscardRatio = 0.5

// Job names, also used as suffixes of the last-run keys
const (
	JobBadgerGC      = "badger_gc"
	JobDeadlineSweep = "deadline_sweep"
)

// LastRunKey is the kv key holding the RFC 3339 time of a job's last success
func LastRunKey(job string) string {
	return "cron:last_run:" + job
}

// Config holds cron runner configuration
type Config struct {
	BadgerGC      string // cron spec, empty disables the job
	DeadlineSweep string // cron spec, empty disables the job
	Location      *time.Location
}

// Maintenance is implemented by store.Store
type Maintenance interface {
	RunValueLogGC(discardRatio float64) (int, error)
	SetKV(key string, value []byte) error
}

// OverdueLister is implemented by store.Ledger
type OverdueLister interface {
	ListOverdueGoals(ctx context.Context, now time.Time) ([]ledger.Goal, error)
}

// Runner manages scheduled job execution
type Runner struct {
	config  Config
	cron    *robfig.Cron
	store   Maintenance
	goals   OverdueLister
	metrics *metrics.Metrics
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mu      sync.RWMutex
}

// NewRunner creates a new cron runner and registers its jobs
func NewRunner(config Config, st Maintenance, goals OverdueLister, m *metrics.Metrics, logger *zap.Logger) (*Runner, error) {
	if config.Location == nil {
		config.Location = time.Local
	}
	if m == nil {
		m = metrics.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		config: config,
		cron: robfig.New(
			robfig.WithLocation(config.Location),
			robfig.WithChain(robfig.SkipIfStillRunning(robfig.DiscardLogger)),
		),
		store:   st,
		goals:   goals,
		metrics: m,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	if config.BadgerGC != "" && st != nil {
		if _, err := r.cron.AddFunc(config.BadgerGC, func() { r.RunGC() }); err != nil {
			cancel()
			return nil, fmt.Errorf("invalid badger_gc schedule %q: %w", config.BadgerGC, err)
		}
	}
	if config.DeadlineSweep != "" && goals != nil {
		if _, err := r.cron.AddFunc(config.DeadlineSweep, func() { r.SweepDeadlines(r.ctx) }); err != nil {
			cancel()
			return nil, fmt.Errorf("invalid deadline_sweep schedule %q: %w", config.DeadlineSweep, err)
		}
	}

	return r, nil
}

// Start starts the cron runner
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("cron runner already running")
	}

	r.running = true
	r.cron.Start()
	r.logger.Info("Cron runner started", zap.Int("jobs", len(r.cron.Entries())))
	return nil
}

// Stop stops the cron runner and waits for running jobs
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()
	<-r.cron.Stop().Done()
	r.logger.Info("Cron runner stopped")
}

// IsRunning returns whether the runner is active
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Jobs returns the number of scheduled jobs
func (r *Runner) Jobs() int {
	return len(r.cron.Entries())
}

// RunGC reclaims badger value-log space
func (r *Runner) RunGC() {
	start := time.Now()
	rewritten, err := r.store.RunValueLogGC(gcDiscardRatio)
	if err != nil {
		r.logger.Error("Badger GC failed", zap.Error(err))
		return
	}
	r.metrics.RecordBadgerGC(rewritten)
	r.markRun(JobBadgerGC)
	r.logger.Debug("Badger GC finished",
		zap.Int("rewritten", rewritten),
		zap.Duration("took", time.Since(start)),
	)
}

// SweepDeadlines logs and counts active goals whose deadline has passed.
// Goals are not cancelled; the status only changes through contributions
// and explicit edits.
func (r *Runner) SweepDeadlines(ctx context.Context) int {
	now := time.Now().In(r.config.Location)

	overdue, err := r.goals.ListOverdueGoals(ctx, now)
	if err != nil {
		r.logger.Error("Deadline sweep failed", zap.Error(err))
		return 0
	}

	for _, g := range overdue {
		r.logger.Info("Goal past deadline",
			zap.String("owner", g.Owner),
			zap.Uint("goal_id", g.ID),
			zap.String("name", g.Name),
			zap.Time("deadline", *g.Deadline),
		)
	}
	r.metrics.SetOverdueGoals(len(overdue))
	r.markRun(JobDeadlineSweep)
	return len(overdue)
}

func (r *Runner) markRun(job string) {
	if r.store == nil {
		return
	}
	stamp := time.Now().In(r.config.Location).Format(time.RFC3339)
	if err := r.store.SetKV(LastRunKey(job), []byte(stamp)); err != nil {
		r.logger.Warn("Failed to record job run", zap.String("job", job), zap.Error(err))
	}
}
