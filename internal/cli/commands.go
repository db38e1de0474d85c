package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gmsas95/finbot/internal/api"
	"github.com/gmsas95/finbot/internal/config"
)

var Version = "dev"

// Paths are the -config and -data flag values shared by every subcommand
type Paths struct {
	Config  string
	DataDir string
}

func (p Paths) load() (*config.Config, error) {
	return config.Load(p.Config, p.DataDir)
}

func (p Paths) configFile(cfg *config.Config) string {
	if p.Config != "" {
		return p.Config
	}
	return filepath.Join(cfg.Storage.DataDir, "finbot.yaml")
}

func HandleConfigCommand(out io.Writer, args []string, paths Paths) error {
	if len(args) == 0 {
		PrintConfigHelp(out)
		return nil
	}

	cfg, err := paths.load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	configPath := paths.configFile(cfg)

	switch args[0] {
	case "init":
		force := len(args) > 1 && (args[1] == "--force" || args[1] == "-f")
		if err := config.WriteDefault(configPath, config.Defaults(cfg.Storage.DataDir), force); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Config written to %s\n", configPath)

	case "get":
		if len(args) < 2 {
			fmt.Fprintln(out, "Usage: finbot config get <key>")
			fmt.Fprintln(out, "Example: finbot config get finance.timezone")
			return fmt.Errorf("missing key")
		}
		return printConfigValue(out, cfg, args[1])

	case "path":
		fmt.Fprintln(out, configPath)

	case "show", "view":
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("error reading config: %w", err)
		}
		fmt.Fprintln(out, string(data))

	default:
		PrintConfigHelp(out)
	}
	return nil
}

func printConfigValue(out io.Writer, cfg *config.Config, key string) error {
	switch key {
	case "server.port":
		fmt.Fprintln(out, cfg.Server.Port)
	case "server.address":
		fmt.Fprintln(out, cfg.Server.Address)
	case "storage.data_dir":
		fmt.Fprintln(out, cfg.Storage.DataDir)
	case "channels.telegram.enabled":
		fmt.Fprintln(out, cfg.Channels.Telegram.Enabled)
	case "finance.timezone":
		fmt.Fprintln(out, cfg.Finance.Timezone)
	case "finance.onboarding_ttl_hours":
		fmt.Fprintln(out, cfg.Finance.OnboardingTTLHours)
	case "cron.enabled":
		fmt.Fprintln(out, cfg.Cron.Enabled)
	case "log.level":
		fmt.Fprintln(out, cfg.Log.Level)
	default:
		fmt.Fprintln(out, "Available keys: server.port, server.address, storage.data_dir, channels.telegram.enabled, finance.timezone, finance.onboarding_ttl_hours, cron.enabled, log.level")
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func HandleChannelsCommand(out io.Writer, args []string, paths Paths) error {
	if len(args) == 0 || args[0] != "status" {
		PrintChannelsHelp(out)
		return nil
	}

	cfg, err := paths.load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	tg := cfg.Channels.Telegram
	fmt.Fprintln(out, "Channel Status:")
	fmt.Fprintln(out, "===============")
	fmt.Fprintf(out, "Telegram: %s\n", channelStatus(tg.Enabled))
	if tg.Enabled {
		fmt.Fprintf(out, "  Bot Token: %s\n", maskToken(tg.BotToken))
		fmt.Fprintf(out, "  Allow List: %d users\n", len(tg.AllowList))
		fmt.Fprintf(out, "  Rate: %d/min (burst %d)\n", tg.RatePerMinute, tg.Burst)
	}
	fmt.Fprintf(out, "HTTP API: %s\n", channelStatus(cfg.Server.Enabled))
	return nil
}

func channelStatus(enabled bool) string {
	if enabled {
		return "✅ enabled"
	}
	return "❌ disabled"
}

func maskToken(token string) string {
	if len(token) < 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// HandleTokenCommand issues an API token for a ledger owner ("*" for a
// service token that may act on every owner)
func HandleTokenCommand(out io.Writer, args []string, paths Paths) error {
	if len(args) == 0 {
		fmt.Fprintln(out, "Usage: finbot token <owner|*> [ttl]")
		fmt.Fprintln(out, "Example: finbot token telegram:123456 720h")
		return nil
	}

	ttl := 24 * time.Hour
	if len(args) > 1 {
		d, err := time.ParseDuration(args[1])
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid ttl %q", args[1])
		}
		ttl = d
	}

	cfg, err := paths.load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if config.ResolveEnvWithAliases("FINBOT_SECURITY_JWT_SECRET") == "" && !secretInFile(paths.configFile(cfg)) {
		return fmt.Errorf("security.jwt_secret is not configured; tokens would not survive a restart")
	}

	tok, err := api.IssueToken(cfg.Security.JWTSecret, args[0], ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tok)
	return nil
}

// secretInFile reports whether the config file pins a JWT secret; otherwise
// Load generates a fresh one on every start.
func secretInFile(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var fileCfg config.Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return false
	}
	return fileCfg.Security.JWTSecret != ""
}

func HandleStatusCommand(out io.Writer, paths Paths) error {
	cfg, err := paths.load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	fmt.Fprintln(out, "FinBot Status")
	fmt.Fprintln(out, "=============")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Version:  %s\n", Version)
	fmt.Fprintf(out, "Config:   %s\n", paths.configFile(cfg))
	fmt.Fprintf(out, "Data:     %s\n", cfg.Storage.DataDir)
	fmt.Fprintf(out, "Timezone: %s\n", cfg.Finance.Timezone)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Server Configuration:")
	fmt.Fprintf(out, "  Address: %s\n", cfg.ServerAddr())
	fmt.Fprintf(out, "  URL: http://localhost:%d\n", cfg.Server.Port)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Channels:")
	fmt.Fprintf(out, "  Telegram: %s\n", channelStatus(cfg.Channels.Telegram.Enabled))
	fmt.Fprintf(out, "  HTTP API: %s\n", channelStatus(cfg.Server.Enabled))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'finbot doctor' for diagnostics")
	return nil
}

// HandleDoctorCommand prints diagnostics and returns the number of issues
func HandleDoctorCommand(out io.Writer, paths Paths) int {
	fmt.Fprintln(out, "FinBot Diagnostics")
	fmt.Fprintln(out, "==================")
	fmt.Fprintln(out)

	issues := 0

	cfg, err := paths.load()
	if err != nil {
		fmt.Fprintln(out, "❌ Config: Error loading configuration")
		fmt.Fprintf(out, "   %v\n", err)
		return 1
	}
	fmt.Fprintln(out, "✅ Config: Loaded successfully")

	if _, err := os.Stat(cfg.Storage.DataDir); os.IsNotExist(err) {
		fmt.Fprintln(out, "❌ Data Directory: Does not exist")
		issues++
	} else {
		fmt.Fprintln(out, "✅ Data Directory: Exists")
	}

	if _, err := os.Stat(paths.configFile(cfg)); os.IsNotExist(err) {
		fmt.Fprintln(out, "⚠️  Config File: Not found, using defaults")
		fmt.Fprintln(out, "   Run: finbot config init")
		issues++
	} else {
		fmt.Fprintln(out, "✅ Config File: Found")
	}

	fmt.Fprintf(out, "✅ Timezone: %s\n", cfg.Location())

	if cfg.Channels.Telegram.Enabled {
		fmt.Fprintf(out, "✅ Telegram: token %s\n", maskToken(cfg.Channels.Telegram.BotToken))
	} else if config.ResolveEnvWithAliases("FINBOT_CHANNELS_TELEGRAM_BOT_TOKEN") != "" {
		fmt.Fprintln(out, "⚠️  Telegram: token set but channel disabled")
		issues++
	} else {
		fmt.Fprintln(out, "ℹ️  Telegram: disabled")
	}

	fmt.Fprintln(out)
	if issues == 0 {
		fmt.Fprintln(out, "✅ All checks passed!")
	} else {
		fmt.Fprintf(out, "⚠️  Found %d issue(s).\n", issues)
	}
	return issues
}
