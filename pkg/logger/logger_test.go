package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscluster/telegram-bot/pkg/config"
)

func TestNew_SentryFanout(t *testing.T) {
	cfg := config.Config{AppEnv: "test"}
	cfg.Logger.Level = "debug"
	cfg.Logger.Format = "json"
	cfg.Sentry.Enabled = true

	log := New(cfg)
	require.NotNil(t, log)

	// The fanout handler must accept records even before sentry.Init ran.
	log.Error("fanout smoke", slog.String("component", "logger"))
}

func TestNew_FileOutput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bot.log")

	cfg := config.Config{AppEnv: "test"}
	cfg.Logger.Level = "info"
	cfg.Logger.Format = "json"
	cfg.Logger.File = file

	log := New(cfg)
	log.Info("file sink works")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink works")
	assert.Contains(t, string(data), `"env":"test"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("anything-else"))
}
