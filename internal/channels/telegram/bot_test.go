package telegram

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gmsas95/finbot/internal/agent"
	"github.com/gmsas95/finbot/internal/goals"
	"github.com/gmsas95/finbot/internal/ledger"
	"github.com/gmsas95/finbot/internal/metrics"
	"github.com/gmsas95/finbot/internal/onboarding"
	"github.com/gmsas95/finbot/internal/store"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Text
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestBot(t *testing.T, cfg Config) (*Bot, *fakeSender, *store.Ledger) {
	t.Helper()

	dir := t.TempDir()
	db, err := store.OpenSQLite(filepath.Join(dir, "finbot.db"))
	require.NoError(t, err)
	bdb, err := store.OpenBadger(filepath.Join(dir, "badger"))
	require.NoError(t, err)
	s := store.NewFromHandles(db, bdb)
	t.Cleanup(func() { s.Close() })

	l, err := store.NewLedger(db)
	require.NoError(t, err)

	logger := zap.NewNop()
	svc := goals.NewService(l, logger)
	m := metrics.New()
	a := agent.New(agent.Deps{
		Ledger:     l,
		Goals:      svc,
		Onboarding: onboarding.NewMachine(s, l, svc, onboarding.Options{Location: time.UTC}),
		Logger:     logger,
		Metrics:    m,
	})

	sender := &fakeSender{}
	cfg.Location = time.UTC
	return newBot(cfg, sender, a, m, logger), sender, l
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: userID},
		From: &tgbotapi.User{ID: userID},
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return tgbotapi.Update{Message: msg}
}

func onboard(t *testing.T, l *store.Ledger, userID int64) {
	t.Helper()
	require.NoError(t, l.SetSetting(t.Context(), Owner(userID), ledger.SettingUserName, "Alice"))
}

func TestOwner(t *testing.T) {
	assert.Equal(t, "telegram:42", Owner(42))
}

func TestStartBeginsOnboarding(t *testing.T) {
	b, sender, _ := newTestBot(t, Config{})

	require.NoError(t, b.handleUpdate(textUpdate(1, "/start")))
	assert.Contains(t, sender.last(), "Como você gostaria de ser chamado")

	require.NoError(t, b.handleUpdate(textUpdate(1, "Alice")))
	assert.Contains(t, sender.last(), "Prazer, Alice")
}

func TestStartForKnownUser(t *testing.T) {
	b, sender, l := newTestBot(t, Config{})
	onboard(t, l, 1)

	require.NoError(t, b.handleUpdate(textUpdate(1, "/start")))
	assert.Contains(t, sender.last(), "Bem-vindo de volta")
}

func TestMessageRegistersExpense(t *testing.T) {
	b, sender, l := newTestBot(t, Config{})
	onboard(t, l, 1)

	require.NoError(t, b.handleUpdate(textUpdate(1, "gastei 50 reais com almoço")))
	assert.Contains(t, sender.last(), "Gasto registrado: R$50.00 com almoço")

	txs, err := l.ListTransactions(t.Context(), Owner(1), ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestCommands(t *testing.T) {
	b, sender, l := newTestBot(t, Config{RatePerMinute: 600, Burst: 50})
	onboard(t, l, 1)

	require.NoError(t, b.handleUpdate(textUpdate(1, "/ajuda")))
	assert.Equal(t, agent.HelpMessage, sender.last())

	require.NoError(t, b.handleUpdate(textUpdate(1, "/categorias")))
	assert.Contains(t, sender.last(), "Alimentação")

	require.NoError(t, b.handleUpdate(textUpdate(1, "/salario 4200")))
	assert.Equal(t, "✅ Salário atualizado para R$4200.00", sender.last())

	require.NoError(t, b.handleUpdate(textUpdate(1, "/salario")))
	assert.Contains(t, sender.last(), "Uso: /salario")

	require.NoError(t, b.handleUpdate(textUpdate(1, "quero criar uma meta de viagem com 5000 reais")))
	require.NoError(t, b.handleUpdate(textUpdate(1, "/metas")))
	assert.Contains(t, sender.last(), "#1 viagem")

	require.NoError(t, b.handleUpdate(textUpdate(1, "/cancelar abc")))
	assert.Contains(t, sender.last(), "Uso: /cancelar")

	require.NoError(t, b.handleUpdate(textUpdate(1, "/cancelar 1")))
	assert.Equal(t, "❌ Meta 'viagem' cancelada.", sender.last())

	require.NoError(t, b.handleUpdate(textUpdate(1, "/resumo")))
	assert.Contains(t, sender.last(), "Resumo financeiro de Alice")

	require.NoError(t, b.handleUpdate(textUpdate(1, "/xyz")))
	assert.Contains(t, sender.last(), "Comando desconhecido")
}

func TestAllowList(t *testing.T) {
	b, sender, _ := newTestBot(t, Config{AllowList: []int64{7}})

	require.NoError(t, b.handleUpdate(textUpdate(1, "oi")))
	assert.Contains(t, sender.last(), "não tem permissão")
}

func TestRateLimit(t *testing.T) {
	b, sender, l := newTestBot(t, Config{RatePerMinute: 1, Burst: 2})
	onboard(t, l, 1)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.handleUpdate(textUpdate(1, "/ajuda")))
	}
	assert.Equal(t, 2, sender.count())

	onboard(t, l, 2)
	require.NoError(t, b.handleUpdate(textUpdate(2, "/ajuda")))
	assert.Equal(t, 3, sender.count(), "limits are per chat")
}

func TestSendMessageTruncates(t *testing.T) {
	b, sender, _ := newTestBot(t, Config{})

	long := make([]rune, maxMessageLen+10)
	for i := range long {
		long[i] = 'ç'
	}
	require.NoError(t, b.sendMessage(1, string(long)))

	assert.Equal(t, maxMessageLen, len([]rune(sender.last())))
}

func TestDisabledBot(t *testing.T) {
	b, err := NewBot(Config{Enabled: false}, nil, nil, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, b.Enabled())
	assert.NoError(t, b.Start())
	b.Stop()
	assert.Equal(t, false, b.GetBotInfo()["enabled"])
}
