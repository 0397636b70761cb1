package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// CatalogService loads the track catalog and exposes its status to the UI.
// All operations are thread-safe.
type CatalogService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	catalog ports.TrackCatalog
	bus     ports.EventBus

	// State
	mu     sync.RWMutex
	status domain.CatalogStatus
	tracks []domain.Track
	err    error
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCatalogService creates an idle catalog service.
func NewCatalogService(logger *slog.Logger, catalog ports.TrackCatalog, bus ports.EventBus) *CatalogService {
	return &CatalogService{
		logger:  logger.With(slog.String("service", "catalog")),
		catalog: catalog,
		bus:     bus,
	}
}

// Load fetches the catalog, blocking until done or ctx is canceled.
// Only one load runs at a time.
func (s *CatalogService) Load(ctx context.Context) ([]domain.Track, error) {
	s.mu.Lock()
	if s.status == domain.CatalogLoading {
		s.mu.Unlock()
		return nil, domain.NewServiceError("CatalogService", "Load", "load already in progress", nil)
	}
	ctx, cancel := context.WithCancel(ctx)
	s.status = domain.CatalogLoading
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.bus.Publish(domain.NewCatalogLoadingEvent(s.catalog.Location()))

	tracks, err := s.catalog.Tracks(ctx)

	s.mu.Lock()
	s.cancel = nil
	if err != nil {
		s.status = domain.CatalogFailed
		s.err = err
		s.mu.Unlock()

		if errors.Is(err, context.Canceled) {
			s.logger.Debug("catalog load canceled")
		} else {
			s.logger.Warn("catalog load failed", slog.Any("error", err))
		}
		s.bus.Publish(domain.NewCatalogErrorEvent(err))
		return nil, err
	}
	s.status = domain.CatalogReady
	s.tracks = tracks
	s.err = nil
	s.mu.Unlock()

	s.logger.Debug("catalog loaded", slog.Int("tracks", len(tracks)))
	s.bus.Publish(domain.NewCatalogLoadedEvent(tracks))
	return tracks, nil
}

// LoadAsync starts Load on a background goroutine. Results arrive as events.
func (s *CatalogService) LoadAsync(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.Load(ctx)
	}()
}

// ReloadAsync drops any cached catalog and starts LoadAsync.
func (s *CatalogService) ReloadAsync(ctx context.Context) {
	if c, ok := s.catalog.(ports.ReloadableCatalog); ok {
		c.Invalidate()
	}
	s.LoadAsync(ctx)
}

// Cancel aborts an in-flight load.
func (s *CatalogService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Close cancels any load and waits for background loads to finish.
func (s *CatalogService) Close() {
	s.Cancel()
	s.wg.Wait()
}

// Status returns the loading state and the last error, if any.
func (s *CatalogService) Status() (domain.CatalogStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.err
}

// Tracks returns the loaded tracks.
func (s *CatalogService) Tracks() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Track(nil), s.tracks...)
}

// Track looks a track up by id.
func (s *CatalogService) Track(id string) (domain.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Track{}, domain.ErrTrackNotFound
}
