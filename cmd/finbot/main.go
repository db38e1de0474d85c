package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/gmsas95/finbot/internal/app"
	"github.com/gmsas95/finbot/internal/cli"
	"github.com/gmsas95/finbot/internal/config"
	"github.com/gmsas95/finbot/internal/store"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	cliMode    = flag.Bool("cli", false, "Chat in the terminal (one-shot or interactive)")
	message    = flag.String("m", "", "Message to send (CLI mode)")
	version    = "dev"
)

func main() {
	flag.Parse()
	cli.Version = version

	if err := config.LoadEnvFiles(); err != nil {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	paths := cli.Paths{Config: *configPath, DataDir: *dataDir}
	args := flag.Args()

	if len(args) > 0 {
		os.Exit(runCommand(args, paths))
	}

	if firstRun(paths) && !*cliMode && *message == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("💰 Welcome to FinBot!")
		fmt.Println()
		fmt.Print("No config file found. Write one with default values? (Y/n): ")

		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))

		if response == "" || response == "y" || response == "yes" {
			if err := cli.HandleConfigCommand(os.Stdout, []string{"init"}, paths); err != nil {
				fmt.Printf("❌ %v\n", err)
				os.Exit(1)
			}
		}
	}

	application, logger := initApp(paths)
	defer logger.Sync()

	if *cliMode || *message != "" {
		defer application.Shutdown()
		application.RunCLI(*message)
		return
	}

	if err := application.RunServer(); err != nil {
		os.Exit(1)
	}
}

func runCommand(args []string, paths cli.Paths) int {
	var err error

	switch args[0] {
	case "config":
		err = cli.HandleConfigCommand(os.Stdout, args[1:], paths)
	case "channels":
		err = cli.HandleChannelsCommand(os.Stdout, args[1:], paths)
	case "token":
		err = cli.HandleTokenCommand(os.Stdout, args[1:], paths)
	case "status":
		err = cli.HandleStatusCommand(os.Stdout, paths)
	case "doctor":
		if cli.HandleDoctorCommand(os.Stdout, paths) > 0 {
			return 1
		}
	case "import":
		opts, ok, perr := cli.ParseImportArgs(args[1:])
		if perr != nil || !ok {
			cli.PrintImportHelp(os.Stdout)
			if perr != nil {
				fmt.Printf("\nError: %v\n", perr)
				return 1
			}
			return 0
		}

		application, logger := initApp(paths)
		defer logger.Sync()
		defer application.Shutdown()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		err = cli.HandleImportCommand(ctx, os.Stdout, opts, application)
	case "help", "--help", "-h":
		cli.PrintExtendedHelp(os.Stdout)
	case "version", "--version", "-v":
		fmt.Printf("FinBot version %s\n", version)
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		cli.PrintExtendedHelp(os.Stdout)
		return 1
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

func firstRun(paths cli.Paths) bool {
	if paths.Config != "" {
		return false
	}
	cfg, err := config.Load("", paths.DataDir)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(cfg.Storage.DataDir, "finbot.yaml"))
	return os.IsNotExist(err)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}

func initApp(paths cli.Paths) (*app.App, *zap.Logger) {
	cfg, err := config.Load(paths.Config, paths.DataDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Info("Starting FinBot",
		zap.String("version", version),
		zap.String("mode", getMode()),
		zap.String("data_dir", cfg.Storage.DataDir),
	)

	st, err := store.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}

	application, err := app.New(cfg, st, logger, version)
	if err != nil {
		logger.Fatal("Failed to initialize app", zap.Error(err))
	}

	return application, logger
}

func getMode() string {
	if *cliMode || *message != "" {
		return "cli"
	}
	return "server"
}
