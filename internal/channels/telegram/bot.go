package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gmsas95/finbot/internal/agent"
	"github.com/gmsas95/finbot/internal/metrics"
)

const maxMessageLen = 4096

// Sender is the subset of the Bot API used to reply. *tgbotapi.BotAPI
// satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot represents a Telegram bot integration
type Bot struct {
	api       Sender
	updates   func(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	agent     *agent.Agent
	logger    *zap.Logger
	metrics   *metrics.Metrics
	location  *time.Location
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	enabled   bool
	allowList map[int64]bool // Allowed user IDs

	// one limiter per chat
	limiters      map[int64]*rate.Limiter
	limMu         sync.Mutex
	ratePerMinute int
	burst         int
}

// Config holds Telegram bot configuration
type Config struct {
	Token         string
	Enabled       bool
	AllowList     []int64 // List of allowed user IDs (empty = allow all)
	RatePerMinute int
	Burst         int
	Location      *time.Location
}

// NewBot creates a new Telegram bot
func NewBot(cfg Config, a *agent.Agent, m *metrics.Metrics, logger *zap.Logger) (*Bot, error) {
	if !cfg.Enabled || cfg.Token == "" {
		return &Bot{enabled: false}, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false
	logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))

	b := newBot(cfg, api, a, m, logger)
	b.updates = api.GetUpdatesChan
	return b, nil
}

func newBot(cfg Config, api Sender, a *agent.Agent, m *metrics.Metrics, logger *zap.Logger) *Bot {
	ctx, cancel := context.WithCancel(context.Background())

	allowList := make(map[int64]bool)
	for _, id := range cfg.AllowList {
		allowList[id] = true
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 30
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if m == nil {
		m = metrics.Default()
	}

	return &Bot{
		api:           api,
		agent:         a,
		logger:        logger,
		metrics:       m,
		location:      cfg.Location,
		ctx:           ctx,
		cancel:        cancel,
		enabled:       true,
		allowList:     allowList,
		limiters:      make(map[int64]*rate.Limiter),
		ratePerMinute: cfg.RatePerMinute,
		burst:         cfg.Burst,
	}
}

// Enabled reports whether the bot was configured
func (b *Bot) Enabled() bool {
	return b.enabled
}

// Start starts the bot
func (b *Bot) Start() error {
	if !b.enabled {
		return nil
	}

	b.wg.Add(1)
	go b.run()

	return nil
}

// Stop stops the bot
func (b *Bot) Stop() {
	if !b.enabled {
		return
	}

	b.cancel()
	b.wg.Wait()
}

// run processes updates one at a time, so messages from a chat are never
// handled concurrently.
func (b *Bot) run() {
	defer b.wg.Done()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.updates(u)

	for {
		select {
		case <-b.ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := b.handleUpdate(update); err != nil {
				b.logger.Error("Failed to handle update", zap.Error(err))
			}
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	userID := msg.From.ID

	if len(b.allowList) > 0 && !b.allowList[userID] {
		return b.sendMessage(msg.Chat.ID, "⛔ Você não tem permissão para usar este bot.")
	}

	if !b.limiter(msg.Chat.ID).Allow() {
		b.metrics.RecordRateLimited()
		b.logger.Warn("Rate limited", zap.Int64("chat_id", msg.Chat.ID))
		return nil
	}

	if msg.IsCommand() {
		return b.handleCommand(msg)
	}

	if strings.TrimSpace(msg.Text) != "" {
		return b.handleMessage(msg)
	}

	return nil
}

func (b *Bot) limiter(chatID int64) *rate.Limiter {
	b.limMu.Lock()
	defer b.limMu.Unlock()

	l, ok := b.limiters[chatID]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(b.ratePerMinute)), b.burst)
		b.limiters[chatID] = l
	}
	return l
}

// Owner is the ledger owner id for a Telegram user
func Owner(userID int64) string {
	return "telegram:" + strconv.FormatInt(userID, 10)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	owner := Owner(msg.From.ID)

	ctx, cancel := context.WithTimeout(b.ctx, 30*time.Second)
	defer cancel()

	var (
		reply string
		err   error
	)

	switch msg.Command() {
	case "start":
		res, herr := b.agent.Handle(ctx, agent.Request{Owner: owner, Now: time.Now().In(b.location), Channel: "telegram"})
		reply, err = res.Reply, herr
		if err == nil && res.Handler != "onboarding" {
			reply = "👋 Bem-vindo de volta!\n\n" + agent.HelpMessage
		}

	case "ajuda", "help":
		reply = agent.HelpMessage

	case "resumo":
		from, to := agent.MonthRange(time.Now().In(b.location))
		report, serr := b.agent.Summary(ctx, owner, from, to)
		if serr == nil {
			reply = agent.FormatSummary(report)
		}
		err = serr

	case "metas":
		reply, err = b.agent.GoalsMessage(ctx, owner)

	case "categorias":
		reply = agent.CategoriesMessage()

	case "salario":
		args := strings.TrimSpace(msg.CommandArguments())
		if args == "" {
			reply = "Uso: /salario <valor>, por exemplo /salario 3500"
			break
		}
		reply, err = b.agent.SetSalary(ctx, owner, args)

	case "cancelar":
		id, perr := strconv.ParseUint(strings.TrimSpace(msg.CommandArguments()), 10, 64)
		if perr != nil || id == 0 {
			reply = "Uso: /cancelar <id da meta>. Veja os ids com /metas."
			break
		}
		reply, err = b.agent.CancelGoal(ctx, owner, uint(id))

	default:
		reply = "❓ Comando desconhecido. Use /ajuda para ver os comandos."
	}

	if err != nil {
		b.logger.Error("Command failed",
			zap.String("command", msg.Command()),
			zap.String("owner", owner),
			zap.Error(err),
		)
		reply = agent.UserMessage(err)
	}
	return b.sendMessage(chatID, reply)
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	typing := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.api.Send(typing)

	ctx, cancel := context.WithTimeout(b.ctx, 30*time.Second)
	defer cancel()

	res, err := b.agent.Handle(ctx, agent.Request{
		Owner:   Owner(msg.From.ID),
		Text:    msg.Text,
		Now:     time.Now().In(b.location),
		Channel: "telegram",
	})
	if err != nil {
		b.logger.Error("Agent error", zap.Int64("chat_id", chatID), zap.Error(err))
		return b.sendMessage(chatID, agent.UserMessage(err))
	}

	return b.sendMessage(chatID, res.Reply)
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	if utf8.RuneCountInString(text) > maxMessageLen {
		runes := []rune(text)
		text = string(runes[:maxMessageLen-3]) + "..."
	}

	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// GetBotInfo returns bot information
func (b *Bot) GetBotInfo() map[string]interface{} {
	if !b.enabled {
		return map[string]interface{}{
			"enabled": false,
		}
	}

	info := map[string]interface{}{"enabled": true}
	if api, ok := b.api.(*tgbotapi.BotAPI); ok {
		info["username"] = api.Self.UserName
		info["firstName"] = api.Self.FirstName
	}
	return info
}
