// Package visualizer provides spectrum visualization widgets for the spectrotune desktop UI.
package visualizer

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// BaseVisualizer provides common functionality for all visualizers.
// It is designed to be embedded in concrete visualizer implementations.
type BaseVisualizer struct {
	widget.BaseWidget

	Raster   *canvas.Raster
	Frame    domain.Frame
	HasFrame bool
	Mu       sync.RWMutex

	// Smoothed overall level, used for pulsing effects
	LevelAvg float64
}

// CreateRenderer implements fyne.Widget.
func (v *BaseVisualizer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.Raster)
}

// MinSize returns the minimum size of the visualizer.
func (v *BaseVisualizer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// Render stores the frame and schedules a redraw on the fyne thread.
func (v *BaseVisualizer) Render(frame domain.Frame) {
	v.Mu.Lock()
	v.Frame = frame
	v.HasFrame = true
	v.Mu.Unlock()

	v.refresh()
}

// Reset clears the stored frame.
func (v *BaseVisualizer) Reset() {
	v.Mu.Lock()
	v.Frame = domain.Frame{}
	v.HasFrame = false
	v.LevelAvg = 0
	v.Mu.Unlock()

	v.refresh()
}

// CurrentFrame returns the last rendered frame.
func (v *BaseVisualizer) CurrentFrame() (domain.Frame, bool) {
	v.Mu.RLock()
	defer v.Mu.RUnlock()
	return v.Frame, v.HasFrame
}

func (v *BaseVisualizer) refresh() {
	if v.Raster == nil {
		return
	}
	fyne.Do(v.Raster.Refresh)
}
