package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gmsas95/finbot/internal/agent"
	"github.com/gmsas95/finbot/internal/config"
	"github.com/gmsas95/finbot/internal/cron"
	apperrors "github.com/gmsas95/finbot/internal/errors"
	"github.com/gmsas95/finbot/internal/goals"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/metrics"
	"github.com/gmsas95/finbot/internal/store"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Defaults(dir)
	cfg.Security.JWTSecret = testSecret
	cfg.Finance.Timezone = "UTC"

	db, err := store.OpenSQLite(cfg.Storage.SQLitePath)
	require.NoError(t, err)
	bdb, err := store.OpenBadger(filepath.Join(dir, "badger"))
	require.NoError(t, err)
	st := store.NewFromHandles(db, bdb)
	t.Cleanup(func() { st.Close() })

	l, err := store.NewLedger(db)
	require.NoError(t, err)

	logger := zap.NewNop()
	m := metrics.New()
	a := agent.New(agent.Deps{
		Ledger:  l,
		Goals:   goals.NewService(l, logger),
		Logger:  logger,
		Metrics: m,
	})

	return New(cfg, st, a, m, logger)
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := IssueToken(testSecret, subject, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, s *Server, method, path, body, tok string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.store.SetKV(cron.LastRunKey(cron.JobDeadlineSweep), []byte("2025-06-15T09:00:00Z")))

	resp, body := do(t, s, "GET", "/api/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, version, out["version"])
	assert.Equal(t, map[string]interface{}{cron.JobDeadlineSweep: "2025-06-15T09:00:00Z"}, out["jobs"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, "POST", "/api/messages", `{"user_id":"alice","text":"gastei 50 com almoço"}`, token(t, "alice"))

	resp, body := do(t, s, "GET", "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `finbot_transactions_total{category="Alimentação",kind="expense"} 1`)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	resp, _ := do(t, s, "GET", "/api/users/alice/goals", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, s, "GET", "/api/users/alice/goals", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	bad, err := IssueToken("other-secret", "alice", time.Hour)
	require.NoError(t, err)
	resp, _ = do(t, s, "GET", "/api/users/alice/goals", "", bad)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired, err := IssueToken(testSecret, "alice", -time.Hour)
	require.NoError(t, err)
	resp, _ = do(t, s, "GET", "/api/users/alice/goals", "", expired)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	resp, _ = do(t, s, "GET", "/api/users/alice/goals", "", unsigned)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, s, "GET", "/api/users/alice/goals", "", token(t, "bob"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, s, "GET", "/api/users/alice/goals", "", token(t, AllUsers))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPostMessage(t *testing.T) {
	s := newTestServer(t)
	tok := token(t, "alice")

	resp, body := do(t, s, "POST", "/api/messages", `{"user_id":"alice","text":"gastei 50 reais com almoço"}`, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out messageResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Matched)
	assert.Equal(t, "expense", out.Handler)
	assert.Contains(t, out.Reply, "R$50.00")
	assert.Empty(t, out.ErrorCode)

	_, body = do(t, s, "POST", "/api/messages", `{"user_id":"alice","text":"gastei 2000000000 com carro"}`, tok)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "AMOUNT_004", out.ErrorCode)

	_, body = do(t, s, "POST", "/api/messages", `{"user_id":"alice","text":"bom dia"}`, tok)
	out = messageResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Matched)

	_, body = do(t, s, "POST", "/api/messages", `{"user_id":"alice","text":"gastei 30 com presente","category":"Lazer"}`, tok)
	out = messageResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out.Reply, "categoria: Lazer")
	assert.Empty(t, out.ErrorCode)

	_, body = do(t, s, "POST", "/api/messages", `{"user_id":"alice","text":"gastei 30 com presente","category":"Viagens"}`, tok)
	out = messageResponse{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Matched)
	assert.Equal(t, apperrors.ErrInvalidCategory.Code, out.ErrorCode)
	assert.Contains(t, out.Reply, "Categorias válidas")

	resp, _ = do(t, s, "POST", "/api/messages", `{"user_id":"alice"}`, tok)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, "POST", "/api/messages", `{"user_id":"bob","text":"oi"}`, tok)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGoalsAndSummary(t *testing.T) {
	s := newTestServer(t)
	tok := token(t, "alice")

	for _, text := range []string{
		"quero criar uma meta de viagem com 5000 reais",
		"juntei 1000 para a meta viagem",
		"paguei 300 com aluguel",
	} {
		resp, _ := do(t, s, "POST", "/api/messages", `{"user_id":"alice","text":"`+text+`"}`, tok)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := do(t, s, "GET", "/api/users/alice/goals", "", tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []ledger.Goal
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "viagem", list[0].Name)
	assert.Equal(t, "1000", list[0].CurrentAmount.String())

	resp, body = do(t, s, "GET", "/api/users/alice/summary", "", tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report agent.Report
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "300", report.Expenses.String())
	require.Len(t, report.ByCategory, 1)
	assert.Equal(t, "Moradia", report.ByCategory[0].Category)

	resp, _ = do(t, s, "GET", "/api/users/alice/summary?from=01/01/2000&to=31/01/2000", "", tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, s, "GET", "/api/users/alice/summary?from=2000-01-01", "", tok)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
