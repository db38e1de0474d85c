package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gmsas95/finbot/internal/agent"
	"github.com/gmsas95/finbot/internal/api"
	"github.com/gmsas95/finbot/internal/batch"
	"github.com/gmsas95/finbot/internal/channels/telegram"
	"github.com/gmsas95/finbot/internal/config"
	"github.com/gmsas95/finbot/internal/cron"
	"github.com/gmsas95/finbot/internal/goals"
	"github.com/gmsas95/finbot/internal/metrics"
	"github.com/gmsas95/finbot/internal/onboarding"
	"github.com/gmsas95/finbot/internal/store"
)

// LocalOwner is the ledger owner used by the terminal chat and imports
const LocalOwner = "cli:local"

type App struct {
	Config      *config.Config
	Store       *store.Store
	Records     *store.Ledger
	Ledger      *store.BreakerLedger
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Agent       *agent.Agent
	TelegramBot *telegram.Bot
	CronRunner  *cron.Runner
	Server      *api.Server
	Version     string

	serving bool
}

// New wires the ledger, agent and channels over an opened store
func New(cfg *config.Config, st *store.Store, logger *zap.Logger, version string) (*App, error) {
	m := metrics.Default()
	loc := cfg.Location()

	sqlLedger, err := store.NewLedger(st.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}

	l := store.NewBreakerLedger(sqlLedger, store.BreakerOptions{
		MaxFailures: uint32(cfg.Ledger.MaxFailures),
		OpenTimeout: time.Duration(cfg.Ledger.OpenTimeoutSec) * time.Second,
		Logger:      logger,
		Metrics:     m,
	})

	svc := goals.NewService(l, logger)
	machine := onboarding.NewMachine(st, l, svc, onboarding.Options{
		TTL:      cfg.OnboardingTTL(),
		Location: loc,
		Logger:   logger,
	})

	a := agent.New(agent.Deps{
		Ledger:     l,
		Goals:      svc,
		Onboarding: machine,
		Goal:       goals.NewInterpreter(loc),
		Logger:     logger,
		Metrics:    m,
	})

	return &App{
		Config:  cfg,
		Store:   st,
		Records: sqlLedger,
		Ledger:  l,
		Logger:  logger,
		Metrics: m,
		Agent:   a,
		Server:  api.New(cfg, st, a, m, logger),
		Version: version,
	}, nil
}

// RunServer starts the enabled channels and blocks until SIGINT or SIGTERM
func (app *App) RunServer() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.startChannels(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	if app.Config.Server.Enabled {
		app.serving = true
		go func() {
			if err := app.Server.Start(); err != nil {
				errCh <- err
			}
		}()
		app.Logger.Info("Server started",
			zap.String("address", app.Config.ServerAddr()),
			zap.String("url", fmt.Sprintf("http://localhost:%d", app.Config.Server.Port)),
		)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		app.Logger.Error("Server error", zap.Error(runErr))
	}

	app.Logger.Info("Shutting down...")
	app.Shutdown()
	return runErr
}

func (app *App) startChannels() error {
	tg := app.Config.Channels.Telegram
	if tg.Enabled {
		bot, err := telegram.NewBot(telegram.Config{
			Token:         tg.BotToken,
			Enabled:       true,
			AllowList:     tg.AllowList,
			RatePerMinute: tg.RatePerMinute,
			Burst:         tg.Burst,
			Location:      app.Config.Location(),
		}, app.Agent, app.Metrics, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to create Telegram bot: %w", err)
		}
		if err := bot.Start(); err != nil {
			return fmt.Errorf("failed to start Telegram bot: %w", err)
		}
		app.TelegramBot = bot
		app.Logger.Info("Telegram bot started")
	}

	if app.Config.Cron.Enabled {
		runner, err := cron.NewRunner(cron.Config{
			BadgerGC:      app.Config.Cron.BadgerGC,
			DeadlineSweep: app.Config.Cron.DeadlineSweep,
			Location:      app.Config.Location(),
		}, app.Store, app.Records, app.Metrics, app.Logger)
		if err != nil {
			return err
		}
		if err := runner.Start(); err != nil {
			return err
		}
		app.CronRunner = runner
	}

	return nil
}

// Shutdown stops channels and closes the store
func (app *App) Shutdown() {
	if app.TelegramBot != nil {
		app.TelegramBot.Stop()
	}
	if app.CronRunner != nil {
		app.CronRunner.Stop()
	}
	if app.serving {
		if err := app.Server.Shutdown(); err != nil {
			app.Logger.Error("Server shutdown error", zap.Error(err))
		}
	}
	if err := app.Store.Close(); err != nil {
		app.Logger.Error("Store close error", zap.Error(err))
	}
}

// Import replays a message file through the agent
func (app *App) Import(ctx context.Context, cfg batch.Config, inputPath, outputPath string) (*batch.Result, error) {
	cfg.Location = app.Config.Location()
	p := batch.NewProcessor(app.Agent, cfg, app.Logger)
	return p.ProcessFile(ctx, inputPath, outputPath)
}

func (app *App) RunCLI(message string) {
	if message != "" {
		if err := OneShot(context.Background(), app.Agent, app.Config, os.Stdout, message); err != nil {
			os.Exit(1)
		}
		return
	}

	Interactive(app.Agent, app.Config, os.Stdin, os.Stdout)
}

// OneShot sends a single message as the local owner and prints the reply
func OneShot(ctx context.Context, a *agent.Agent, cfg *config.Config, out io.Writer, msg string) error {
	res, err := a.Handle(ctx, agent.Request{
		Owner:   LocalOwner,
		Text:    msg,
		Now:     time.Now().In(cfg.Location()),
		Channel: "cli",
	})
	if err != nil {
		fmt.Fprintln(out, agent.UserMessage(err))
		return err
	}

	fmt.Fprintln(out, res.Reply)
	return nil
}

func Interactive(a *agent.Agent, cfg *config.Config, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "💰 FinBot - Modo interativo")
	fmt.Fprintln(out, "Digite 'sair' para encerrar, 'ajuda' para ver exemplos")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	ctx := context.Background()

	for {
		fmt.Fprint(out, "👤 Você: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		reply, quit := localCommand(ctx, a, cfg, input)
		if quit {
			fmt.Fprintln(out, "👋 Até logo!")
			return
		}
		if reply == "" {
			res, err := a.Handle(ctx, agent.Request{
				Owner:   LocalOwner,
				Text:    input,
				Now:     time.Now().In(cfg.Location()),
				Channel: "cli",
			})
			if err != nil {
				reply = agent.UserMessage(err)
			} else {
				reply = res.Reply
			}
		}

		fmt.Fprintf(out, "🤖 FinBot: %s\n\n", reply)
	}
}

// localCommand mirrors the Telegram slash commands for the terminal
func localCommand(ctx context.Context, a *agent.Agent, cfg *config.Config, input string) (string, bool) {
	var err error
	reply := ""

	switch strings.ToLower(input) {
	case "sair", "exit", "quit", "q":
		return "", true
	case "ajuda", "help":
		reply = agent.HelpMessage
	case "categorias":
		reply = agent.CategoriesMessage()
	case "metas":
		reply, err = a.GoalsMessage(ctx, LocalOwner)
	case "resumo":
		from, to := agent.MonthRange(time.Now().In(cfg.Location()))
		var report *agent.Report
		report, err = a.Summary(ctx, LocalOwner, from, to)
		if err == nil {
			reply = agent.FormatSummary(report)
		}
	default:
		if raw, ok := strings.CutPrefix(strings.ToLower(input), "salario "); ok {
			reply, err = a.SetSalary(ctx, LocalOwner, raw)
		}
	}

	if err != nil {
		return agent.UserMessage(err), false
	}
	return reply, false
}
