package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# FinBot
TELEGRAM_BOT_TOKEN="123:abc"
TZ_NAME='America/Recife'
FINBOT_SERVER_PORT=9090
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))

	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TZ_NAME", "")
	t.Setenv("FINBOT_SERVER_PORT", "7070")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")
	os.Unsetenv("TZ_NAME")

	require.NoError(t, godotenv.Load(envFile))

	assert.Equal(t, "123:abc", os.Getenv("TELEGRAM_BOT_TOKEN"))
	assert.Equal(t, "America/Recife", os.Getenv("TZ_NAME"))
	assert.Equal(t, "7070", os.Getenv("FINBOT_SERVER_PORT"), "existing variables win")
}

func TestResolveEnvWithAliases(t *testing.T) {
	const key = "FINBOT_CHANNELS_TELEGRAM_BOT_TOKEN"
	t.Setenv(key, "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_TOKEN", "")

	assert.Empty(t, ResolveEnvWithAliases(key))

	t.Setenv("TELEGRAM_TOKEN", "alias_value")
	assert.Equal(t, "alias_value", ResolveEnvWithAliases(key))

	t.Setenv("TELEGRAM_BOT_TOKEN", "bot_token_value")
	assert.Equal(t, "bot_token_value", ResolveEnvWithAliases(key))

	t.Setenv(key, "canonical_value")
	assert.Equal(t, "canonical_value", ResolveEnvWithAliases(key))
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/finbot", filepath.Join(home, "finbot")},
		{"/var/lib/finbot", "/var/lib/finbot"},
		{"relative/path", "relative/path"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, expandPath(test.input))
	}
}

func TestEnvAliases_Exist(t *testing.T) {
	assert.Contains(t, envAliases["FINBOT_CHANNELS_TELEGRAM_BOT_TOKEN"], "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, envAliases["FINBOT_SECURITY_JWT_SECRET"], "JWT_SECRET")
}
