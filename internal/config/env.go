package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads .env files from the working directory and the user's
// config locations. Variables already set in the environment win.
func LoadEnvFiles() error {
	envPaths := []string{"./.env"}

	if home, err := os.UserHomeDir(); err == nil {
		envPaths = append(envPaths,
			filepath.Join(home, ".finbot", ".env"),
			filepath.Join(home, ".config", "finbot", ".env"),
		)
	}

	for _, path := range envPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
	}

	return nil
}

// envAliases are the shorter names accepted for a few settings, in priority order
var envAliases = map[string][]string{
	"FINBOT_CHANNELS_TELEGRAM_BOT_TOKEN": {"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN"},
	"FINBOT_SECURITY_JWT_SECRET":         {"FINBOT_JWT_SECRET", "JWT_SECRET"},
	"FINBOT_FINANCE_TIMEZONE":            {"TZ_NAME"},
}

func ResolveEnvWithAliases(canonicalKey string) string {
	if val := os.Getenv(canonicalKey); val != "" {
		return val
	}

	for _, alias := range envAliases[canonicalKey] {
		if val := os.Getenv(alias); val != "" {
			return val
		}
	}

	return ""
}
