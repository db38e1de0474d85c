package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmsas95/finbot/internal/batch"
)

func TestChannelStatus(t *testing.T) {
	assert.Equal(t, "✅ enabled", channelStatus(true))
	assert.Equal(t, "❌ disabled", channelStatus(false))
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"1234567890", "1234...7890"},
		{"123456:ABC-DEF1234ghIkl", "1234...hIkl"},
		{"short", "***"},
		{"", "***"},
		{"1234567", "***"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, maskToken(tt.token), "token %q", tt.token)
	}
}

func TestConfigCommand(t *testing.T) {
	paths := Paths{DataDir: t.TempDir()}
	var out bytes.Buffer

	require.NoError(t, HandleConfigCommand(&out, []string{"init"}, paths))
	assert.FileExists(t, filepath.Join(paths.DataDir, "finbot.yaml"))

	assert.Error(t, HandleConfigCommand(&out, []string{"init"}, paths))
	require.NoError(t, HandleConfigCommand(&out, []string{"init", "--force"}, paths))

	out.Reset()
	require.NoError(t, HandleConfigCommand(&out, []string{"get", "finance.timezone"}, paths))
	assert.Equal(t, "America/Sao_Paulo\n", out.String())

	out.Reset()
	require.NoError(t, HandleConfigCommand(&out, []string{"path"}, paths))
	assert.Equal(t, filepath.Join(paths.DataDir, "finbot.yaml")+"\n", out.String())

	assert.Error(t, HandleConfigCommand(&out, []string{"get", "storage.password"}, paths))
}

func TestTokenCommand(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{DataDir: dir}
	var out bytes.Buffer

	t.Setenv("FINBOT_SECURITY_JWT_SECRET", "")
	t.Setenv("FINBOT_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	assert.Error(t, HandleTokenCommand(&out, []string{"telegram:1"}, paths))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "finbot.yaml"), []byte("security:\n  jwt_secret: s3cret\n"), 0600))
	require.NoError(t, HandleTokenCommand(&out, []string{"telegram:1", "1h"}, paths))

	tok, err := jwt.ParseWithClaims(string(bytes.TrimSpace(out.Bytes())), &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	sub, err := tok.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "telegram:1", sub)

	assert.Error(t, HandleTokenCommand(&out, []string{"telegram:1", "forever"}, paths))
}

func TestStatusAndDoctor(t *testing.T) {
	paths := Paths{DataDir: t.TempDir()}
	var out bytes.Buffer

	require.NoError(t, HandleStatusCommand(&out, paths))
	assert.Contains(t, out.String(), "Timezone: America/Sao_Paulo")

	t.Setenv("FINBOT_CHANNELS_TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_TOKEN", "")
	out.Reset()
	assert.Equal(t, 1, HandleDoctorCommand(&out, paths))
	assert.Contains(t, out.String(), "finbot config init")

	require.NoError(t, HandleConfigCommand(&out, []string{"init"}, paths))
	out.Reset()
	assert.Equal(t, 0, HandleDoctorCommand(&out, paths))
	assert.Contains(t, out.String(), "All checks passed")
}

func TestParseImportArgs(t *testing.T) {
	opts, ok, err := ParseImportArgs([]string{"-i", "in.txt", "-o", "out.jsonl", "-c", "4", "--rpm", "600", "--owner", "telegram:9"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "in.txt", opts.Input)
	assert.Equal(t, "out.jsonl", opts.Output)
	assert.Equal(t, 4, opts.Batch.MaxConcurrency)
	assert.Equal(t, 600, opts.Batch.RPM)
	assert.Equal(t, "telegram:9", opts.Batch.DefaultOwner)

	_, ok, err = ParseImportArgs([]string{"--help"})
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseImportArgs([]string{"-o", "out.txt"})
	assert.Error(t, err)
	_, _, err = ParseImportArgs([]string{"-i"})
	assert.Error(t, err)
	_, _, err = ParseImportArgs([]string{"-i", "x", "-c", "many"})
	assert.Error(t, err)
}

type fakeImporter struct {
	cfg batch.Config
}

func (f *fakeImporter) Import(ctx context.Context, cfg batch.Config, in, out string) (*batch.Result, error) {
	f.cfg = cfg
	return &batch.Result{
		Total:   2,
		Success: 1,
		Failed:  1,
		Items: []batch.OutputItem{
			{ID: "line-1", Success: true},
			{ID: "line-2", Error: "ledger unavailable"},
		},
	}, nil
}

func TestImportCommand(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("gastei 10 com pão\n"), 0644))

	opts, _, err := ParseImportArgs([]string{"-i", in, "-c", "2"})
	require.NoError(t, err)

	var out bytes.Buffer
	imp := &fakeImporter{}
	require.NoError(t, HandleImportCommand(context.Background(), &out, opts, imp))
	assert.Equal(t, 2, imp.cfg.MaxConcurrency)
	assert.Contains(t, out.String(), "line-2: ledger unavailable")

	opts.Input = filepath.Join(t.TempDir(), "missing.txt")
	assert.Error(t, HandleImportCommand(context.Background(), &out, opts, imp))
}

func TestPrintFunctions(t *testing.T) {
	var out bytes.Buffer
	PrintExtendedHelp(&out)
	PrintConfigHelp(&out)
	PrintChannelsHelp(&out)
	PrintImportHelp(&out)
	assert.Contains(t, out.String(), "finbot import")
}
