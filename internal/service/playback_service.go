// Package service provides the audio pipeline services of spectrotune.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// PlayResult describes what Play did with the request.
type PlayResult int

const (
	// PlayIgnored means no track is loaded; nothing happened.
	PlayIgnored PlayResult = iota

	// PlayRequested means a start was issued (or is already in flight) and
	// will be confirmed asynchronously.
	PlayRequested

	// PlayAlreadyActive means the track is already playing.
	PlayAlreadyActive
)

// String returns a human-readable representation of the result.
func (r PlayResult) String() string {
	switch r {
	case PlayIgnored:
		return "ignored"
	case PlayRequested:
		return "requested"
	case PlayAlreadyActive:
		return "already-active"
	default:
		return "unknown"
	}
}

// PlaybackConfig tunes the playback service.
type PlaybackConfig struct {
	FFTSize          int
	DefaultVolume    float64
	PollInterval     time.Duration
	ProgressInterval time.Duration
}

// DefaultPlaybackConfig returns the standard tuning.
func DefaultPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{
		FFTSize:          4096,
		DefaultVolume:    0.8,
		PollInterval:     DefaultPollInterval,
		ProgressInterval: 250 * time.Millisecond,
	}
}

// PlaybackService manages the audio graph and the transport state machine
// (Stopped, Playing, Paused).
//
// State changes to Playing only once the platform confirms playback started.
// Every asynchronous completion carries the load generation and source it was
// issued for and is dropped if either no longer matches.
//
// Thread-safety: all methods are safe for concurrent use. Events are published
// after the internal lock is released.
type PlaybackService struct {
	// Dependencies (injected)
	logger *slog.Logger
	ctx    ports.AudioContext
	bus    ports.EventBus

	// Owned pipeline
	graph    *AudioGraph
	sampler  *Sampler
	progress *periodicTask

	// State
	mu            sync.Mutex
	track         *domain.Track
	source        ports.MediaSource
	status        domain.PlaybackStatus
	volume        float64
	generation    uint64
	pendingPlay   bool // a start request is in flight
	explicitPause bool // the user paused; suppresses autoplay on the next load
	shutdown      bool
}

// NewPlaybackService builds the persistent audio graph on ctx and returns a
// stopped service with no track loaded.
func NewPlaybackService(logger *slog.Logger, ctx ports.AudioContext, bus ports.EventBus, cfg PlaybackConfig) (*PlaybackService, error) {
	graph, err := NewAudioGraph(ctx, cfg.FFTSize)
	if err != nil {
		return nil, domain.NewServiceError("PlaybackService", "new", "failed to build audio graph", err)
	}

	volume := clampVolume(cfg.DefaultVolume)
	if err := graph.SetGain(volume); err != nil {
		return nil, domain.NewServiceError("PlaybackService", "new", "failed to set gain", err)
	}

	s := &PlaybackService{
		logger: logger.With(slog.String("service", "playback")),
		ctx:    ctx,
		bus:    bus,
		graph:  graph,
		volume: volume,
	}

	left, right := graph.Analysers()
	s.sampler = NewSampler(logger, bus, left, right, cfg.PollInterval)

	interval := cfg.ProgressInterval
	if interval <= 0 {
		interval = DefaultPlaybackConfig().ProgressInterval
	}
	s.progress = newPeriodicTask(interval, s.reportProgress)

	s.logger.Debug("playback service initialized",
		slog.Int("fft_size", cfg.FFTSize),
		slog.Float64("volume", volume))
	return s, nil
}

// Sampler returns the frequency snapshot sampler driven by this service.
func (s *PlaybackService) Sampler() *Sampler { return s.sampler }

// Graph returns the owned audio graph.
func (s *PlaybackService) Graph() *AudioGraph { return s.graph }

// LoadTrack replaces the current source with one for track.
//
// The previous source is paused, rewound, disconnected and closed, and the
// sampler is stopped before the new source is created. Volume is re-applied
// after rewiring. Unless the user explicitly paused, playback is requested
// right away; failures of that request are logged and published, not returned.
func (s *PlaybackService) LoadTrack(track domain.Track) error {
	if track.Source == "" {
		return domain.NewValidationError("Source", track.Source, "track has no source")
	}

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return domain.ErrGraphClosed
	}

	s.logger.Debug("loading track", slog.String("source", track.Source))

	autoplay := !s.explicitPause
	s.stopTasksLocked()
	s.generation++
	s.pendingPlay = false
	s.status = domain.StatusStopped

	if old := s.source; old != nil {
		old.Pause()
		old.SetCurrentTime(0)
	}

	src, err := s.ctx.NewMediaSource(track.Source)
	if err == nil {
		if err = s.graph.ReplaceSource(src); err != nil {
			_ = src.Close()
		}
	}
	if err != nil {
		// Leave no half-wired graph behind.
		if detachErr := s.graph.ReplaceSource(nil); detachErr != nil && !errors.Is(detachErr, domain.ErrGraphClosed) {
			s.logger.Warn("failed to detach previous source", slog.Any("error", detachErr))
		}
		s.source = nil
		s.track = nil
		s.mu.Unlock()

		loadErr := domain.NewAudioGraphError("load", track.Source, err)
		s.logger.Warn("failed to load track", slog.Any("error", loadErr))
		s.bus.Publish(domain.NewTrackErrorEvent(track, loadErr))
		return loadErr
	}

	if err := s.graph.SetGain(s.volume); err != nil {
		s.logger.Warn("failed to re-apply gain", slog.Any("error", err))
	}

	gen := s.generation
	src.OnEnded(func() { s.handleEnded(gen, src) })
	src.OnError(func(err error) { s.handleMediaError(gen, src, err) })

	s.track = &track
	s.source = src
	duration := s.durationLocked()

	if autoplay {
		s.requestPlayLocked()
	}
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackLoadedEvent(track, duration))
	return nil
}

// Play starts or resumes the current track. If the output context is
// suspended it is resumed first. The state becomes Playing when the platform
// confirms the start; a rejection is logged and leaves the state unchanged.
func (s *PlaybackService) Play() PlayResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.source == nil || s.shutdown:
		s.logger.Debug("play ignored - no track loaded")
		return PlayIgnored
	case s.status == domain.StatusPlaying:
		return PlayAlreadyActive
	case s.pendingPlay:
		return PlayRequested
	}

	s.requestPlayLocked()
	return PlayRequested
}

// Pause halts playback and keeps the position. It also cancels a start still
// in flight and records the intent so the next LoadTrack does not autoplay.
func (s *PlaybackService) Pause() {
	s.mu.Lock()
	if s.source == nil {
		s.mu.Unlock()
		return
	}

	s.explicitPause = true
	s.pendingPlay = false
	s.source.Pause()

	if s.status != domain.StatusPlaying {
		s.mu.Unlock()
		return
	}

	s.status = domain.StatusPaused
	s.stopTasksLocked()
	event := domain.NewTrackPausedEvent(*s.track, s.source.CurrentTime())
	s.mu.Unlock()

	s.bus.Publish(event)
}

// Stop halts playback and rewinds to zero. Calling it when already stopped
// at position zero does nothing.
func (s *PlaybackService) Stop() {
	s.mu.Lock()

	wasPending := s.pendingPlay
	s.pendingPlay = false
	s.explicitPause = false

	if s.source == nil {
		s.mu.Unlock()
		return
	}
	if s.status == domain.StatusStopped && s.source.CurrentTime() == 0 && !wasPending {
		s.mu.Unlock()
		return
	}

	s.source.Pause()
	s.source.SetCurrentTime(0)
	s.status = domain.StatusStopped
	s.stopTasksLocked()

	events := []domain.Event{
		domain.NewTrackStoppedEvent(*s.track),
		domain.NewTrackProgressEvent(0, s.durationLocked()),
	}
	s.mu.Unlock()

	s.publish(events...)
}

// Seek moves the playback position, clamped to [0, duration]. It works in any
// state; a stopped track keeps the new position without resuming.
func (s *PlaybackService) Seek(position time.Duration) error {
	s.mu.Lock()
	if s.source == nil {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	duration := s.durationLocked()
	position = max(position, 0)
	if duration > 0 {
		position = min(position, duration)
	}
	s.source.SetCurrentTime(position)
	event := domain.NewTrackProgressEvent(s.source.CurrentTime(), duration)
	s.mu.Unlock()

	s.bus.Publish(event)
	return nil
}

// SetVolume clamps level to [0,1] and applies it to the gain stage immediately.
// The level persists across track changes.
func (s *PlaybackService) SetVolume(level float64) error {
	level = clampVolume(level)

	s.mu.Lock()
	if err := s.graph.SetGain(level); err != nil {
		s.mu.Unlock()
		return err
	}
	s.volume = level
	s.mu.Unlock()

	s.bus.Publish(domain.NewVolumeChangedEvent(level))
	return nil
}

// Volume returns the current gain level.
func (s *PlaybackService) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// State returns a snapshot of the transport state.
func (s *PlaybackService) State() domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := domain.PlaybackState{
		Status: s.status,
		Volume: s.volume,
	}
	if s.track != nil {
		t := *s.track
		state.Track = &t
	}
	if s.source != nil {
		state.CurrentTime = s.source.CurrentTime()
		state.Duration = s.durationLocked()
	}
	return state
}

// Shutdown stops the sampler and progress reporting, waits for their
// goroutines and tears the graph down. The audio context itself is owned by
// the caller. Safe to call more than once.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true
	s.generation++
	s.pendingPlay = false
	s.status = domain.StatusStopped
	s.stopTasksLocked()
	s.source = nil
	s.track = nil
	s.mu.Unlock()

	s.sampler.Close()
	s.progress.Wait()

	if err := s.graph.Teardown(); err != nil {
		return domain.NewServiceError("PlaybackService", "shutdown", "graph teardown failed", err)
	}
	s.logger.Debug("playback service shut down")
	return nil
}

// requestPlayLocked issues the asynchronous start chain. Caller must hold s.mu.
func (s *PlaybackService) requestPlayLocked() {
	s.pendingPlay = true
	s.explicitPause = false

	gen, src := s.generation, s.source
	start := func() {
		src.Play(func(err error) { s.completePlay(gen, src, err) })
	}

	if s.ctx.State() != ports.ContextSuspended {
		start()
		return
	}

	s.logger.Debug("resuming suspended audio context")
	s.ctx.Resume(func(err error) {
		if err != nil {
			s.completePlay(gen, src, fmt.Errorf("resume audio context: %w", err))
			return
		}
		s.mu.Lock()
		current := s.isCurrentLocked(gen, src) && s.pendingPlay
		s.mu.Unlock()
		if !current {
			s.logger.Debug("stale resume completion ignored")
			return
		}
		start()
	})
}

// completePlay applies the outcome of a start request.
func (s *PlaybackService) completePlay(gen uint64, src ports.MediaSource, err error) {
	s.mu.Lock()

	if !s.isCurrentLocked(gen, src) {
		s.mu.Unlock()
		s.logger.Debug("stale play completion ignored", slog.Uint64("generation", gen))
		return
	}

	if !s.pendingPlay {
		// Pause or Stop arrived while the start was in flight.
		if err == nil && s.status != domain.StatusPlaying {
			src.Pause()
		}
		s.mu.Unlock()
		return
	}
	s.pendingPlay = false

	if err != nil && isMediaFailure(err) {
		track := s.mediaFailedLocked(src)
		s.mu.Unlock()
		s.reportMediaError(track, err)
		return
	}
	if err != nil {
		track := *s.track
		s.mu.Unlock()

		playErr := domain.NewAudioGraphError("play", track.Source, errors.Join(domain.ErrPlaybackRejected, err))
		s.logger.Warn("playback rejected", slog.Any("error", playErr))
		s.bus.Publish(domain.NewTrackErrorEvent(track, playErr))
		return
	}

	s.status = domain.StatusPlaying
	s.startTasksLocked()
	event := domain.NewTrackStartedEvent(*s.track)
	s.mu.Unlock()

	s.bus.Publish(event)
}

// handleEnded runs when the media reaches its natural end.
func (s *PlaybackService) handleEnded(gen uint64, src ports.MediaSource) {
	s.mu.Lock()
	if !s.isCurrentLocked(gen, src) {
		s.mu.Unlock()
		return
	}

	s.status = domain.StatusStopped
	s.pendingPlay = false
	s.explicitPause = false
	s.stopTasksLocked()
	src.SetCurrentTime(0)
	event := domain.NewTrackCompletedEvent(*s.track)
	s.mu.Unlock()

	s.logger.Debug("track completed", slog.String("source", event.Track.Source))
	s.bus.Publish(event)
}

// handleMediaError runs when the media reports a decode or I/O failure.
func (s *PlaybackService) handleMediaError(gen uint64, src ports.MediaSource, err error) {
	s.mu.Lock()
	if !s.isCurrentLocked(gen, src) {
		s.mu.Unlock()
		return
	}

	track := s.mediaFailedLocked(src)
	s.mu.Unlock()
	s.reportMediaError(track, err)
}

// isMediaFailure tells a source that cannot be decoded or opened apart from a
// platform refusal to start.
func isMediaFailure(err error) bool {
	return errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrMediaUnavailable)
}

// mediaFailedLocked rewinds to Stopped after a media failure. Caller must hold s.mu.
func (s *PlaybackService) mediaFailedLocked(src ports.MediaSource) domain.Track {
	s.status = domain.StatusStopped
	s.pendingPlay = false
	s.stopTasksLocked()
	src.Pause()
	src.SetCurrentTime(0)
	return *s.track
}

func (s *PlaybackService) reportMediaError(track domain.Track, err error) {
	mediaErr := domain.NewAudioGraphError("media", track.Source, err)
	s.logger.Warn("media error", slog.Any("error", mediaErr))
	s.bus.Publish(domain.NewTrackErrorEvent(track, mediaErr))
}

// reportProgress publishes the position while playing. Runs on the progress task.
func (s *PlaybackService) reportProgress() {
	s.mu.Lock()
	if s.status != domain.StatusPlaying || s.source == nil {
		s.mu.Unlock()
		return
	}
	event := domain.NewTrackProgressEvent(s.source.CurrentTime(), s.durationLocked())
	s.mu.Unlock()

	s.bus.Publish(event)
}

func (s *PlaybackService) isCurrentLocked(gen uint64, src ports.MediaSource) bool {
	return !s.shutdown && gen == s.generation && src == s.source
}

func (s *PlaybackService) startTasksLocked() {
	s.sampler.Start()
	s.progress.Start()
}

func (s *PlaybackService) stopTasksLocked() {
	s.sampler.Stop()
	s.progress.Stop()
}

// durationLocked prefers the media-reported length and falls back to the catalog value.
func (s *PlaybackService) durationLocked() time.Duration {
	if s.source != nil {
		if d := s.source.Duration(); d > 0 {
			return d
		}
	}
	if s.track != nil {
		return s.track.Duration
	}
	return 0
}

func (s *PlaybackService) publish(events ...domain.Event) {
	for _, e := range events {
		s.bus.Publish(e)
	}
}

func clampVolume(v float64) float64 {
	return max(0, min(v, 1))
}
