// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string    // "text" or "json"
	Output io.Writer // defaults to os.Stderr
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps DEBUG, INFO, WARN/WARNING and ERROR (any case) to a slog level.
// Unknown values yield fallback.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return fallback
	}
}

// DefaultConfig returns the default logger configuration.
// SPECTROTUNE_LOG_LEVEL sets the level (default INFO) and
// SPECTROTUNE_LOG_FORMAT selects "text" (default) or "json".
func DefaultConfig() Config {
	format := "text"
	if strings.EqualFold(os.Getenv("SPECTROTUNE_LOG_FORMAT"), "json") {
		format = "json"
	}
	return Config{
		Level:  ParseLevel(os.Getenv("SPECTROTUNE_LOG_LEVEL"), slog.LevelInfo),
		Format: format,
	}
}
