// Package ui holds the toolkit-neutral presenter shared by the desktop and
// terminal front ends. Views implement ports.UI; the presenter maps domain
// events onto them and turns user commands into service calls.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
	"github.com/tejashwikalptaru/spectrotune/internal/service"
)

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to view updates
// - Translate UI commands to service method calls
//
// Thread-safety: handlers run on the publishing goroutine; views marshal the
// calls onto their own UI thread.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	playback      *service.PlaybackService
	visualization *service.VisualizationService
	catalog       *service.CatalogService

	bus  ports.EventBus
	view ports.UI

	// Presentation state
	mu            sync.Mutex
	currentTrack  *domain.Track
	duration      time.Duration
	subscriptions []domain.SubscriptionID
	shutdownOnce  sync.Once
}

// NewPresenter creates a new presenter, subscribes it to the bus and pushes
// the current service state into the view.
func NewPresenter(
	logger *slog.Logger,
	playback *service.PlaybackService,
	visualization *service.VisualizationService,
	catalog *service.CatalogService,
	bus ports.EventBus,
	view ports.UI,
) *Presenter {
	p := &Presenter{
		logger:        logger.With(slog.String("adapter", "presenter")),
		playback:      playback,
		visualization: visualization,
		catalog:       catalog,
		bus:           bus,
		view:          view,
	}

	p.subscribeToEvents()
	p.syncInitialState()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Playback events
		domain.EventTrackLoaded:    p.onTrackLoaded,
		domain.EventTrackStarted:   p.onTrackStarted,
		domain.EventTrackPaused:    p.onTrackPaused,
		domain.EventTrackStopped:   p.onTrackStopped,
		domain.EventTrackCompleted: p.onTrackCompleted,
		domain.EventTrackProgress:  p.onTrackProgress,
		domain.EventTrackError:     p.onTrackError,
		domain.EventVolumeChanged:  p.onVolumeChanged,

		// Visualization events
		domain.EventStyleChanged: p.onStyleChanged,

		// Catalog events
		domain.EventCatalogLoading: p.onCatalogLoading,
		domain.EventCatalogLoaded:  p.onCatalogLoaded,
		domain.EventCatalogError:   p.onCatalogError,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.bus.Subscribe(eventType, handler))
	}
}

// syncInitialState pushes the current service state into the view.
func (p *Presenter) syncInitialState() {
	state := p.playback.State()

	p.view.SetVolume(state.Volume)
	p.view.SetStyle(p.visualization.Style())

	if state.Track != nil {
		p.mu.Lock()
		track := *state.Track
		p.currentTrack = &track
		p.duration = state.Duration
		p.mu.Unlock()

		p.view.SetTrackInfo(track)
	}
	p.view.SetProgress(state.CurrentTime.Seconds(), state.Duration.Seconds())
	p.view.SetPlayState(state.IsPlaying())

	status, _ := p.catalog.Status()
	p.view.SetCatalogStatus(status)
	if status == domain.CatalogReady {
		p.view.SetTracks(p.catalog.Tracks())
	}
}

// Event handlers

func (p *Presenter) onTrackLoaded(event domain.Event) {
	e, ok := event.(domain.TrackLoadedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	track := e.Track
	p.currentTrack = &track
	p.duration = e.Duration
	p.mu.Unlock()

	p.view.SetTrackInfo(e.Track)
	p.view.SetProgress(0, e.Duration.Seconds())
}

func (p *Presenter) onTrackStarted(domain.Event) {
	p.view.SetPlayState(true)
}

func (p *Presenter) onTrackPaused(event domain.Event) {
	p.view.SetPlayState(false)

	if e, ok := event.(domain.TrackPausedEvent); ok {
		p.view.SetProgress(e.Position.Seconds(), p.currentDuration().Seconds())
	}
}

func (p *Presenter) onTrackStopped(domain.Event) {
	p.view.SetPlayState(false)
	p.view.SetProgress(0, p.currentDuration().Seconds())
}

func (p *Presenter) onTrackCompleted(domain.Event) {
	p.view.SetPlayState(false)
	p.view.SetProgress(0, p.currentDuration().Seconds())
}

func (p *Presenter) onTrackProgress(event domain.Event) {
	e, ok := event.(domain.TrackProgressEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	if e.Duration > 0 {
		p.duration = e.Duration
	}
	p.mu.Unlock()

	p.view.SetProgress(e.Position.Seconds(), e.Duration.Seconds())
}

func (p *Presenter) onTrackError(event domain.Event) {
	e, ok := event.(domain.TrackErrorEvent)
	if !ok {
		return
	}

	p.view.SetPlayState(false)

	title := "Playback Error"
	if errors.Is(e.Err, domain.ErrPlaybackRejected) {
		title = "Playback Blocked"
	}
	p.view.ShowError(title, fmt.Sprintf("%s: %v", e.Track.DisplayName(), e.Err))
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}

	p.view.SetVolume(e.Volume)
}

func (p *Presenter) onStyleChanged(event domain.Event) {
	e, ok := event.(domain.StyleChangedEvent)
	if !ok {
		return
	}

	p.view.SetStyle(e.Style)
}

func (p *Presenter) onCatalogLoading(domain.Event) {
	p.view.SetCatalogStatus(domain.CatalogLoading)
}

func (p *Presenter) onCatalogLoaded(event domain.Event) {
	e, ok := event.(domain.CatalogLoadedEvent)
	if !ok {
		return
	}

	p.view.SetTracks(e.Tracks)
	p.view.SetCatalogStatus(domain.CatalogReady)
}

func (p *Presenter) onCatalogError(event domain.Event) {
	e, ok := event.(domain.CatalogErrorEvent)
	if !ok {
		return
	}

	p.view.SetCatalogStatus(domain.CatalogFailed)
	p.view.ShowError("Catalog Error", e.Err.Error())
}

func (p *Presenter) currentDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// UI Command handlers (called by views)

// OnPlayClicked toggles between playing and paused.
func (p *Presenter) OnPlayClicked() {
	if p.playback.State().IsPlaying() {
		p.playback.Pause()
		return
	}

	if result := p.playback.Play(); result == service.PlayIgnored {
		p.view.ShowError("Nothing to play", "Select a track first")
	}
}

// OnStopClicked handles the stop button.
func (p *Presenter) OnStopClicked() {
	p.playback.Stop()
}

// OnSeekRequested seeks to position seconds.
func (p *Presenter) OnSeekRequested(position float64) {
	target := time.Duration(position * float64(time.Second))
	if err := p.playback.Seek(target); err != nil {
		p.logger.Debug("seek failed", slog.Any("error", err))
	}
}

// OnSeekRelative moves the playback position by delta.
func (p *Presenter) OnSeekRelative(delta time.Duration) {
	state := p.playback.State()
	if state.Track == nil {
		return
	}
	p.OnSeekRequested((state.CurrentTime + delta).Seconds())
}

// OnVolumeChanged sets the volume (0.0 to 1.0).
func (p *Presenter) OnVolumeChanged(volume float64) {
	if err := p.playback.SetVolume(volume); err != nil {
		p.logger.Error("volume change failed", slog.Any("error", err))
		p.view.ShowError("Volume Error", fmt.Sprintf("Failed to change volume: %v", err))
	}
}

// OnVolumeStep changes the volume by delta, clamped to 0..1.
func (p *Presenter) OnVolumeStep(delta float64) {
	p.OnVolumeChanged(min(max(p.playback.Volume()+delta, 0), 1))
}

// OnTrackSelected loads the catalog track with the given id.
func (p *Presenter) OnTrackSelected(id string) error {
	track, err := p.catalog.Track(id)
	if err != nil {
		return err
	}
	if err := p.playback.LoadTrack(track); err != nil {
		p.logger.Error("load track failed", slog.String("id", id), slog.Any("error", err))
		p.view.ShowError("Load Error", fmt.Sprintf("Failed to load %s: %v", track.DisplayName(), err))
		return err
	}
	return nil
}

// OnFileOpened loads a local media file that is not in the catalog.
func (p *Presenter) OnFileOpened(path string) error {
	track := domain.Track{
		ID:     path,
		Song:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Source: path,
	}
	if err := p.playback.LoadTrack(track); err != nil {
		p.view.ShowError("Load Error", fmt.Sprintf("Failed to open %s: %v", path, err))
		return err
	}
	return nil
}

// OnTrackStep selects the catalog track offset positions away from the current one.
// It wraps around at both ends and starts at the first track when none is loaded.
func (p *Presenter) OnTrackStep(offset int) error {
	tracks := p.catalog.Tracks()
	if len(tracks) == 0 {
		return domain.ErrTrackNotFound
	}

	next := 0
	p.mu.Lock()
	current := p.currentTrack
	p.mu.Unlock()
	if current != nil {
		for i, t := range tracks {
			if t.ID == current.ID {
				next = ((i+offset)%len(tracks) + len(tracks)) % len(tracks)
				break
			}
		}
	}
	return p.OnTrackSelected(tracks[next].ID)
}

// OnStyleSelected switches the visual style.
func (p *Presenter) OnStyleSelected(style string) {
	if err := p.visualization.SetStyle(style); err != nil {
		p.view.ShowError("Style Error", err.Error())
	}
}

// OnStyleStep cycles through the available styles.
func (p *Presenter) OnStyleStep(offset int) {
	styles := p.visualization.Styles()
	current := p.visualization.Style()
	for i, s := range styles {
		if s == current {
			p.OnStyleSelected(styles[((i+offset)%len(styles)+len(styles))%len(styles)])
			return
		}
	}
}

// OnReloadRequested reloads the catalog in the background.
func (p *Presenter) OnReloadRequested() {
	if status, _ := p.catalog.Status(); status == domain.CatalogLoading {
		return
	}
	p.catalog.ReloadAsync(context.Background())
}

// Styles returns the selectable visual styles.
func (p *Presenter) Styles() []string {
	return p.visualization.Styles()
}

// CurrentTrack returns the loaded track, if any.
func (p *Presenter) CurrentTrack() (domain.Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentTrack == nil {
		return domain.Track{}, false
	}
	return *p.currentTrack, true
}

// Shutdown unsubscribes the presenter from the bus.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		ids := p.subscriptions
		p.subscriptions = nil
		p.mu.Unlock()

		for _, id := range ids {
			p.bus.Unsubscribe(id)
		}
	})
}
