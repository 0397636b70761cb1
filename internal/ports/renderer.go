package ports

import (
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// Renderer draws processed visualization frames.
//
// Renderers are stateless with respect to the pipeline: they own their geometry
// and redraw cadence and only consume the data in each Frame. Render may be
// called from any goroutine and must not block.
type Renderer interface {
	// Name identifies the renderer in logs.
	Name() string

	// Render stores the frame for the next redraw.
	Render(frame domain.Frame)

	// Reset clears any retained frame, e.g. after playback stops.
	Reset()
}
