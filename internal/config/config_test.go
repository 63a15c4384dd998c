package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYAML(t *testing.T, content string) (*MainConfig, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := NewViper()
	require.NoError(t, ReadFile(v, path))
	return Load(v)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(TokenEnv, "")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Telegram.PollTimeout)
	assert.Equal(t, "тг", cfg.Export.Currency)
	assert.Equal(t, "./reports", cfg.Export.ConsoleDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "reportbot.in", cfg.NATS.Subject)
	assert.Equal(t, "reportbot.out", cfg.NATS.ReplyPrefix)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Empty(t, cfg.Metrics.Addr)

	_, err = cfg.RequireToken()
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLoadFile(t *testing.T) {
	cfg, err := loadYAML(t, `
telegram:
  token: "123:abc"
  poll_timeout: 30
catalog:
  file: ./catalog.yaml
export:
  currency: KZT
  timezone: UTC
  spool_dir: /tmp/spool
log:
  level: debug
  format: json
metrics:
  addr: ":9090"
nats:
  subject: sales.in
max_concurrency: 2
`)
	require.NoError(t, err)

	token, err := cfg.RequireToken()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", token)
	assert.Equal(t, 30, cfg.Telegram.PollTimeout)
	assert.Equal(t, "./catalog.yaml", cfg.Catalog.File)
	assert.Equal(t, "KZT", cfg.Export.Currency)
	assert.Equal(t, "/tmp/spool", cfg.Export.SpoolDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, "sales.in", cfg.NATS.Subject)
	assert.Equal(t, "reportbot.out", cfg.NATS.ReplyPrefix)
	assert.Equal(t, 2, cfg.MaxConcurrency)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadTokenFallback(t *testing.T) {
	t.Setenv(TokenEnv, "from-env")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)

	cfg, err = loadYAML(t, "telegram:\n  token: from-file\n")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Telegram.Token, "config wins over TOKEN")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("REPORTBOT_LOG_LEVEL", "warn")
	t.Setenv("REPORTBOT_MAX_CONCURRENCY", "16")

	cfg, err := loadYAML(t, "log:\n  level: debug\n")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 16, cfg.MaxConcurrency)
}

func TestLoadValidation(t *testing.T) {
	_, err := loadYAML(t, `
log:
  level: loud
  format: xml
export:
  timezone: Mars/Olympus
max_concurrency: -1
`)
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"log.level", "log.format", "export.timezone", "max_concurrency"} {
		assert.True(t, strings.Contains(msg, want), "missing %s in %q", want, msg)
	}
}

func TestReadFileMissingDefault(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	assert.NoError(t, ReadFile(NewViper(), ""))
}

func TestReadFileMissingExplicit(t *testing.T) {
	err := ReadFile(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLocationEmpty(t *testing.T) {
	loc, err := (&MainConfig{}).Location()
	require.NoError(t, err)
	assert.Nil(t, loc)
}
