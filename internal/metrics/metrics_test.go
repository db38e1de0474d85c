package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Error("New() returned nil")
	}
}

func TestDefault(t *testing.T) {
	m1 := Default()
	m2 := Default()

	if m1 != m2 {
		t.Error("Default() should return same instance")
	}
}

func TestRecordMessage(t *testing.T) {
	m := New()
	m.RecordMessage("expense", OutcomeMatched)
	m.RecordMessage("expense", OutcomeMatched)
	m.RecordMessage("goals", OutcomeNotMatched)

	if got := testutil.ToFloat64(m.messagesTotal.WithLabelValues("expense", OutcomeMatched)); got != 2 {
		t.Errorf("Expected 2 matched expense messages, got %v", got)
	}
	if got := testutil.ToFloat64(m.messagesTotal.WithLabelValues("goals", OutcomeNotMatched)); got != 1 {
		t.Errorf("Expected 1 unmatched goals message, got %v", got)
	}
}

func TestRecordTransactionAndErrors(t *testing.T) {
	m := New()
	m.RecordTransaction("expense", "Alimentação")
	m.RecordParseError("AMOUNT_004")
	m.RecordGoalEvent("completed")
	m.RecordOnboardingStep("awaiting_salary")
	m.RecordRateLimited()

	if got := testutil.ToFloat64(m.transactions.WithLabelValues("expense", "Alimentação")); got != 1 {
		t.Errorf("Expected 1 transaction, got %v", got)
	}
	if got := testutil.ToFloat64(m.parseErrors.WithLabelValues("AMOUNT_004")); got != 1 {
		t.Errorf("Expected 1 parse error, got %v", got)
	}
	if got := testutil.ToFloat64(m.goalEvents.WithLabelValues("completed")); got != 1 {
		t.Errorf("Expected 1 goal event, got %v", got)
	}
	if got := testutil.ToFloat64(m.onboardingSteps.WithLabelValues("awaiting_salary")); got != 1 {
		t.Errorf("Expected 1 onboarding step, got %v", got)
	}
	if got := testutil.ToFloat64(m.rateLimited); got != 1 {
		t.Errorf("Expected 1 rate limited message, got %v", got)
	}
}

func TestGauges(t *testing.T) {
	m := New()
	m.SetBreakerState(2)
	m.SetOverdueGoals(3)
	m.RecordBadgerGC(4)

	if got := testutil.ToFloat64(m.breakerState); got != 2 {
		t.Errorf("Expected breaker state 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.overdueGoals); got != 3 {
		t.Errorf("Expected 3 overdue goals, got %v", got)
	}
	if got := testutil.ToFloat64(m.badgerGCRewrites); got != 4 {
		t.Errorf("Expected 4 rewrites, got %v", got)
	}
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.RecordMessage("expense", OutcomeMatched)
	m.RecordMessage("goals", OutcomeRejected)
	m.RecordMessage("none", OutcomeNotMatched)
	m.RecordMessage("none", OutcomeNotMatched)

	s := m.Snapshot()
	if s.MessagesProcessed != 4 {
		t.Errorf("Expected 4 processed, got %d", s.MessagesProcessed)
	}
	if s.MessagesMatched != 2 {
		t.Errorf("Expected 2 matched, got %d", s.MessagesMatched)
	}
	if s.MatchRate != 50 {
		t.Errorf("Expected 50%% match rate, got %v", s.MatchRate)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordMessage("expense", OutcomeMatched)
	m.RecordHandleDuration("telegram", 3*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	if !strings.Contains(out, `finbot_messages_total{handler="expense",outcome="matched"} 1`) {
		t.Error("Expected messages counter in exposition output")
	}
	if !strings.Contains(out, "finbot_handle_duration_seconds_count") {
		t.Error("Expected duration histogram in exposition output")
	}
}

func BenchmarkRecordMessage(b *testing.B) {
	m := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordMessage("expense", OutcomeMatched)
	}
}
