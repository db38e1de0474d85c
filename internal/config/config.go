package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for FinBot
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Channels ChannelsConfig `mapstructure:"channels" yaml:"channels"`
	Security SecurityConfig `mapstructure:"security" yaml:"security"`
	Finance  FinanceConfig  `mapstructure:"finance" yaml:"finance"`
	Ledger   LedgerConfig   `mapstructure:"ledger" yaml:"ledger"`
	Cron     CronConfig     `mapstructure:"cron" yaml:"cron"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	Address      string `mapstructure:"address" yaml:"address"`
	Port         int    `mapstructure:"port" yaml:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	BadgerPath string `mapstructure:"badger_path" yaml:"badger_path"`
}

// ChannelsConfig holds integration settings
type ChannelsConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
}

// TelegramConfig holds Telegram bot settings
type TelegramConfig struct {
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
	BotToken  string  `mapstructure:"bot_token" yaml:"bot_token"`
	AllowList []int64 `mapstructure:"allow_list" yaml:"allow_list"`
	// RatePerMinute caps messages handled per chat; Burst allows short spikes.
	RatePerMinute int `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
	Burst         int `mapstructure:"burst" yaml:"burst"`
}

// SecurityConfig holds security settings
type SecurityConfig struct {
	JWTSecret    string   `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	AllowOrigins []string `mapstructure:"allow_origins" yaml:"allow_origins"`
}

// FinanceConfig holds parsing and onboarding settings
type FinanceConfig struct {
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
	// OnboardingTTLHours bounds how long an unfinished onboarding survives.
	OnboardingTTLHours int `mapstructure:"onboarding_ttl_hours" yaml:"onboarding_ttl_hours"`
}

// LedgerConfig holds circuit breaker settings around the ledger
type LedgerConfig struct {
	MaxFailures    int `mapstructure:"max_failures" yaml:"max_failures"`
	OpenTimeoutSec int `mapstructure:"open_timeout_sec" yaml:"open_timeout_sec"`
}

// CronConfig holds maintenance schedules (robfig/cron spec strings)
type CronConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	BadgerGC      string `mapstructure:"badger_gc" yaml:"badger_gc"`
	DeadlineSweep string `mapstructure:"deadline_sweep" yaml:"deadline_sweep"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}
	dataDir = expandPath(dataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.SetDefault("storage.sqlite_path", filepath.Join(dataDir, "finbot.db"))
	v.SetDefault("storage.badger_path", filepath.Join(dataDir, "badger"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "finbot.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (FINBOT_SERVER_PORT, FINBOT_CHANNELS_TELEGRAM_BOT_TOKEN, etc.)
	v.SetEnvPrefix("FINBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Defaults returns the configuration produced by defaults alone, rooted at dataDir.
func Defaults(dataDir string) *Config {
	v := viper.New()
	setDefaults(v)
	v.Set("storage.data_dir", dataDir)
	v.Set("storage.sqlite_path", filepath.Join(dataDir, "finbot.db"))
	v.Set("storage.badger_path", filepath.Join(dataDir, "badger"))

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("channels.telegram.enabled", false)
	v.SetDefault("channels.telegram.rate_per_minute", 30)
	v.SetDefault("channels.telegram.burst", 5)

	v.SetDefault("security.allow_origins", []string{"*"})

	v.SetDefault("finance.timezone", "America/Sao_Paulo")
	v.SetDefault("finance.onboarding_ttl_hours", 72)

	v.SetDefault("ledger.max_failures", 5)
	v.SetDefault("ledger.open_timeout_sec", 30)

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.badger_gc", "@every 1h")
	v.SetDefault("cron.deadline_sweep", "0 9 * * *")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", true)
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "finbot")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "finbot")
}

// expandPath resolves a leading "~/" against the home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// loadEnvOverrides applies aliased env vars that viper's prefix does not cover
func loadEnvOverrides(cfg *Config) {
	if token := ResolveEnvWithAliases("FINBOT_CHANNELS_TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Channels.Telegram.BotToken = token
	}
	if secret := ResolveEnvWithAliases("FINBOT_SECURITY_JWT_SECRET"); secret != "" {
		cfg.Security.JWTSecret = secret
	}
	if tz := ResolveEnvWithAliases("FINBOT_FINANCE_TIMEZONE"); tz != "" {
		cfg.Finance.Timezone = tz
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FINBOT_SERVER_PORT") == "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.BotToken == "" {
		return fmt.Errorf("channels.telegram.bot_token is required when telegram is enabled")
	}

	if _, err := time.LoadLocation(cfg.Finance.Timezone); err != nil {
		return fmt.Errorf("invalid finance.timezone %q: %w", cfg.Finance.Timezone, err)
	}

	if cfg.Finance.OnboardingTTLHours <= 0 {
		return fmt.Errorf("finance.onboarding_ttl_hours must be positive")
	}

	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = generateRandomString(32)
	}

	return nil
}

func generateRandomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b)
}

// Location returns the configured timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Finance.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// OnboardingTTL returns how long onboarding sessions are kept.
func (c *Config) OnboardingTTL() time.Duration {
	return time.Duration(c.Finance.OnboardingTTLHours) * time.Hour
}

// ServerAddr returns host:port for the HTTP listener.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
