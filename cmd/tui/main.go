// Package main is the terminal entry point for Spectrotune.
//
// Logs go to SPECTROTUNE_LOG_FILE (default spectrotune.log) because the
// program owns the terminal.
//
// Build:
//
//	go build -o build/spectrotune-tui ./cmd/tui
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/tejashwikalptaru/spectrotune/internal/app"
	"github.com/tejashwikalptaru/spectrotune/internal/config"
)

const defaultLogFile = "spectrotune.log"

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logPath := os.Getenv("SPECTROTUNE_LOG_FILE")
	if logPath == "" {
		logPath = defaultLogFile
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	cfg := app.DefaultConfig()
	cfg.Config = settings
	cfg.Frontend = app.FrontendTUI
	cfg.Logger.Output = logFile

	application, err := app.NewApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
	}
}
