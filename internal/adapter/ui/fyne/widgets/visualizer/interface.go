package visualizer

import (
	"strings"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// Kind represents the drawing family of a visualizer.
type Kind string

// Available visualizer kinds.
const (
	KindBars     Kind = "bars"
	KindDots     Kind = "dots"
	KindCircular Kind = "circular"
)

// MusicVisualizer defines the interface that all visualizers must implement.
// Every visualizer is a fyne widget and a frame renderer, so the main window
// can swap them while the visualization service keeps feeding frames.
type MusicVisualizer interface {
	fyne.CanvasObject
	ports.Renderer
}

// Factory creates a new visualizer of the specified kind.
func Factory(kind Kind) MusicVisualizer {
	switch kind {
	case KindDots:
		return NewDots()
	case KindCircular:
		return NewCircular()
	default:
		return NewBars()
	}
}

// KindForStyle picks the visualizer that draws a processing style.
// Dot styles get the LED grid, scape styles the radial view, the rest bars.
func KindForStyle(style string) Kind {
	switch {
	case strings.HasPrefix(style, "dots"):
		return KindDots
	case strings.HasPrefix(style, "scape"):
		return KindCircular
	default:
		return KindBars
	}
}

// KindInfo contains information about a visualizer kind.
type KindInfo struct {
	Kind Kind
	Name string
}

// GetKinds returns all available visualizer kinds with their display names.
func GetKinds() []KindInfo {
	return []KindInfo{
		{KindBars, "Spectrum Bars"},
		{KindDots, "LED Dots"},
		{KindCircular, "Circular"},
	}
}
