// Package logger provides test helpers for structured logging.
package logger

import (
	"log/slog"
	"os"
)

// NewTestLogger creates a logger for tests.
// It logs at WARN to keep output quiet; set TEST_DEBUG to see debug traces.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return NewLogger(Config{Level: level, Format: "text", Output: os.Stdout})
}
