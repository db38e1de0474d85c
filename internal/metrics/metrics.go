package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finbot"

// Outcomes recorded per handled message
const (
	OutcomeMatched    = "matched"
	OutcomeNotMatched = "not_matched"
	OutcomeRejected   = "rejected"
	OutcomeError      = "error"
)

type Metrics struct {
	startTime time.Time
	registry  *prometheus.Registry

	messagesTotal    *prometheus.CounterVec
	handleDuration   *prometheus.HistogramVec
	transactions     *prometheus.CounterVec
	parseErrors      *prometheus.CounterVec
	goalEvents       *prometheus.CounterVec
	onboardingSteps  *prometheus.CounterVec
	rateLimited      prometheus.Counter
	breakerState     prometheus.Gauge
	overdueGoals     prometheus.Gauge
	badgerGCRewrites prometheus.Counter

	messagesProcessed atomic.Int64
	messagesMatched   atomic.Int64
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// New creates a metrics set on its own registry
func New() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
		registry:  prometheus.NewRegistry(),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messages handled, by interpreter and outcome",
		}, []string{"handler", "outcome"}),
		handleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handle_duration_seconds",
			Help:      "Time spent handling one message",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"channel"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions appended to the ledger",
		}, []string{"kind", "category"}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Typed parse failures reported back to users",
		}, []string{"code"}),
		goalEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goal_events_total",
			Help:      "Goal lifecycle events",
		}, []string{"event"}),
		onboardingSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "onboarding_steps_total",
			Help:      "Onboarding steps completed, by stage left",
		}, []string{"stage"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Messages dropped by the per-chat limiter",
		}),
		breakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_breaker_state",
			Help:      "Ledger circuit breaker state (0 closed, 1 half-open, 2 open)",
		}),
		overdueGoals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overdue_goals",
			Help:      "Active goals past their deadline at the last sweep",
		}),
		badgerGCRewrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badger_gc_rewrites_total",
			Help:      "Badger value-log files rewritten by GC",
		}),
	}

	m.registry.MustRegister(
		m.messagesTotal,
		m.handleDuration,
		m.transactions,
		m.parseErrors,
		m.goalEvents,
		m.onboardingSteps,
		m.rateLimited,
		m.breakerState,
		m.overdueGoals,
		m.badgerGCRewrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordMessage(handler, outcome string) {
	m.messagesTotal.WithLabelValues(handler, outcome).Inc()
	m.messagesProcessed.Add(1)
	if outcome == OutcomeMatched || outcome == OutcomeRejected {
		m.messagesMatched.Add(1)
	}
}

func (m *Metrics) RecordHandleDuration(channel string, d time.Duration) {
	m.handleDuration.WithLabelValues(channel).Observe(d.Seconds())
}

func (m *Metrics) RecordTransaction(kind, category string) {
	m.transactions.WithLabelValues(kind, category).Inc()
}

func (m *Metrics) RecordParseError(code string) {
	m.parseErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordGoalEvent(event string) {
	m.goalEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) RecordOnboardingStep(stage string) {
	m.onboardingSteps.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordRateLimited() {
	m.rateLimited.Inc()
}

func (m *Metrics) SetBreakerState(state int) {
	m.breakerState.Set(float64(state))
}

func (m *Metrics) SetOverdueGoals(n int) {
	m.overdueGoals.Set(float64(n))
}

func (m *Metrics) RecordBadgerGC(rewritten int) {
	m.badgerGCRewrites.Add(float64(rewritten))
}

type Snapshot struct {
	Uptime            time.Duration `json:"uptime"`
	MessagesProcessed int64         `json:"messages_processed"`
	MessagesMatched   int64         `json:"messages_matched"`
	MatchRate         float64       `json:"match_rate"`
}

func (m *Metrics) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:            time.Since(m.startTime),
		MessagesProcessed: m.messagesProcessed.Load(),
		MessagesMatched:   m.messagesMatched.Load(),
	}
	if s.MessagesProcessed > 0 {
		s.MatchRate = float64(s.MessagesMatched) / float64(s.MessagesProcessed) * 100
	}
	return s
}
