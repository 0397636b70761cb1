// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/audio/beep"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/catalog"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui"
	fyneui "github.com/tejashwikalptaru/spectrotune/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui/tui"
	"github.com/tejashwikalptaru/spectrotune/internal/config"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/logger"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
	"github.com/tejashwikalptaru/spectrotune/internal/service"
)

// Front ends.
const (
	FrontendFyne = "fyne"
	FrontendTUI  = "tui"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	config Config

	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus     ports.FilteringEventBus
	audioContext ports.AudioContext

	// Services
	playbackService      *service.PlaybackService
	visualizationService *service.VisualizationService
	catalogService       *service.CatalogService

	// UI
	presenter *ui.Presenter
	view      ports.UI
	renderer  ports.Renderer

	autoLoadSub  domain.SubscriptionID
	autoLoadOnce sync.Once
	shutdownOnce sync.Once
}

// Config holds application configuration.
type Config struct {
	// Runtime settings (audio, visualization, catalog)
	config.Config

	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// Frontend selects the view: FrontendFyne or FrontendTUI
	Frontend string

	// Logger configures logging; the TUI should log to a file
	Logger logger.Config

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App

	// TUIOptions are passed to the bubbletea program
	TUIOptions []tea.ProgramOption
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	return Config{
		Config:   config.Default(),
		AppID:    "com.spectrotune.app",
		AppName:  "Spectrotune",
		Frontend: FrontendFyne,
		Logger:   logger.DefaultConfig(),
	}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Frontend != FrontendFyne && cfg.Frontend != FrontendTUI {
		return nil, fmt.Errorf("invalid configuration: %w",
			domain.NewValidationError("Frontend", cfg.Frontend, "must be fyne or tui"))
	}

	app := &Application{config: cfg}

	// Step 1: Create logger
	app.logger = logger.NewLogger(cfg.Logger)
	app.logger.Info("initializing application",
		slog.String("app_id", cfg.AppID),
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("frontend", cfg.Frontend),
		slog.String("backend", cfg.Backend))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger)

	// Step 3: Create an audio context
	switch cfg.Backend {
	case config.BackendMock:
		app.audioContext = mock.NewContext(app.logger, mock.WithAutoComplete(), mock.WithSampleRate(cfg.SampleRate))
	default:
		app.audioContext = beep.NewContext(app.logger, beep.WithSampleRate(cfg.SampleRate))
	}

	// Step 4: Create services (with dependency injection)
	var err error
	app.playbackService, err = service.NewPlaybackService(app.logger, app.audioContext, app.eventBus, cfg.Playback())
	if err != nil {
		app.closeInfrastructure()
		return nil, fmt.Errorf("failed to create playback service: %w", err)
	}

	app.visualizationService, err = service.NewVisualizationService(app.logger, app.eventBus, cfg.Style)
	if err != nil {
		app.closeServices()
		return nil, fmt.Errorf("failed to create visualization service: %w", err)
	}

	trackCatalog := catalog.New(app.logger, cfg.CatalogLocation,
		catalog.WithWorkers(cfg.MetadataWorkers),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.CatalogTimeout}))
	app.catalogService = service.NewCatalogService(app.logger, trackCatalog, app.eventBus)

	// Step 5: Create UI
	var setPresenter func(*ui.Presenter)
	switch cfg.Frontend {
	case FrontendTUI:
		view := tui.NewView(app.logger, cfg.TUIOptions...)
		app.view, app.renderer, setPresenter = view, view, view.SetPresenter
	default:
		if cfg.TestFyneApp != nil {
			app.fyneApp = cfg.TestFyneApp
		} else {
			app.fyneApp = fyneapp.NewWithID(cfg.AppID)
		}
		window := fyneui.NewMainWindow(app.fyneApp, app.logger)
		app.view, app.renderer, setPresenter = window, window, window.SetPresenter
	}

	// Step 6: Create Presenter and wire with UI
	app.presenter = ui.NewPresenter(
		app.logger,
		app.playbackService,
		app.visualizationService,
		app.catalogService,
		app.eventBus,
		app.view,
	)
	setPresenter(app.presenter)
	app.visualizationService.Attach(app.renderer)

	// Step 7: Load the first track once the catalog arrives
	if cfg.AutoLoadFirst {
		app.autoLoadSub = app.eventBus.SubscribeFiltered(domain.EventCatalogLoaded, hasTracks, app.onCatalogLoaded)
	}

	return app, nil
}

func hasTracks(event domain.Event) bool {
	e, ok := event.(domain.CatalogLoadedEvent)
	return ok && len(e.Tracks) > 0
}

// onCatalogLoaded cues the first track of the first non-empty catalog,
// unless the user already picked something.
func (a *Application) onCatalogLoaded(event domain.Event) {
	e := event.(domain.CatalogLoadedEvent)
	a.autoLoadOnce.Do(func() {
		if _, loaded := a.presenter.CurrentTrack(); loaded {
			return
		}
		if err := a.presenter.OnTrackSelected(e.Tracks[0].ID); err != nil {
			a.logger.Warn("failed to load first track", slog.Any("error", err))
		}
	})
}

// Start kicks off background work that does not need the UI loop.
func (a *Application) Start() {
	a.logger.Info("loading catalog", slog.String("location", a.config.CatalogLocation))
	a.catalogService.LoadAsync(context.Background())
}

// Run starts the application.
// This is called from main.go after the application is created and blocks
// until the UI exits.
func (a *Application) Run() error {
	a.Start()
	a.logger.Info("Spectrotune started")
	return a.view.Run()
}

// Shutdown gracefully shuts down the application.
// This should be called via deferring in main.go. It's safe to call multiple times.
func (a *Application) Shutdown() error {
	var errs []error
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		if a.autoLoadSub != "" {
			a.eventBus.Unsubscribe(a.autoLoadSub)
		}

		// Shutdown UI and presenter
		if a.presenter != nil {
			a.presenter.Shutdown()
		}
		if a.visualizationService != nil && a.renderer != nil {
			a.visualizationService.Detach(a.renderer)
		}

		// Shutdown services (in reverse order of creation)
		errs = append(errs, a.closeServices()...)

		a.logger.Info("application shutdown complete")
	})
	return errors.Join(errs...)
}

// closeServices stops the services and the infrastructure below them.
func (a *Application) closeServices() []error {
	var errs []error
	if a.catalogService != nil {
		a.catalogService.Close()
	}
	if a.visualizationService != nil {
		a.visualizationService.Close()
	}
	if a.playbackService != nil {
		if err := a.playbackService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback service", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return append(errs, a.closeInfrastructure()...)
}

func (a *Application) closeInfrastructure() []error {
	var errs []error
	if a.audioContext != nil {
		if err := a.audioContext.Close(); err != nil {
			a.logger.Warn("failed to close audio context", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Quit asks the UI to exit; Run then returns.
func (a *Application) Quit() {
	a.view.Quit()
}

// GetServices returns the services (for testing).
func (a *Application) GetServices() (*service.PlaybackService, *service.VisualizationService, *service.CatalogService) {
	return a.playbackService, a.visualizationService, a.catalogService
}

// GetEventBus returns the event bus (for testing).
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetPresenter returns the presenter (for testing).
func (a *Application) GetPresenter() *ui.Presenter {
	return a.presenter
}

// GetFyneApp returns the Fyne application, nil for the terminal front end.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// DiscardLogs returns a logger config that drops everything, for tests and
// front ends that own the terminal.
func DiscardLogs() logger.Config {
	return logger.Config{Level: slog.LevelError, Output: io.Discard}
}
