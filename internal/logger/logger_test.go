package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"verbose": slog.LevelWarn,
		"":        slog.LevelWarn,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in, slog.LevelWarn), "input %q", in)
	}
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("SPECTROTUNE_LOG_LEVEL", "debug")
	t.Setenv("SPECTROTUNE_LOG_FORMAT", "JSON")

	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	log.Debug("hidden")
	log.Info("visible", slog.String("service", "playback"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"visible"`)
	assert.Contains(t, out, `"service":"playback"`)
}
