// Package main is the desktop entry point for Spectrotune.
//
// Spectrotune plays tracks from a JSON catalog and draws their spectrum live:
// - Event-driven communication between services and views
// - Dependency injection for testability
// - MVP pattern shared by the desktop and terminal front ends
//
// Settings come from the environment and an optional .env file
// (SPECTROTUNE_CATALOG, SPECTROTUNE_STYLE, SPECTROTUNE_AUDIO_BACKEND, ...).
//
// Build:
//
//	go build -o build/spectrotune ./cmd
//
// Run:
//
//	./build/spectrotune
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/tejashwikalptaru/spectrotune/internal/app"
	"github.com/tejashwikalptaru/spectrotune/internal/config"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cfg := app.DefaultConfig()
	cfg.Config = settings
	cfg.Frontend = app.FrontendFyne

	// Create the application with dependency injection
	application, err := app.NewApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}
