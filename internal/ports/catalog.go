package ports

import (
	"context"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// TrackCatalog supplies the list of playable tracks.
// Implementations may fetch remotely; they must honor ctx cancellation.
type TrackCatalog interface {
	// Tracks returns the catalog records. Implementations may cache the result.
	Tracks(ctx context.Context) ([]domain.Track, error)

	// Location returns the path or URL the catalog is read from.
	Location() string
}

// ReloadableCatalog is a TrackCatalog whose cached result can be dropped.
type ReloadableCatalog interface {
	TrackCatalog

	// Invalidate makes the next Tracks call fetch again.
	Invalidate()
}
