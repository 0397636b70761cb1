package visualizer

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2/canvas"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

const (
	ledSegments      = 16  // Number of LED segments per column
	ledGapRatio      = 0.2 // Gap as fraction of segment height
	ledPaddingTop    = 10
	ledPaddingLeft   = 10
	ledPaddingRight  = 10
	ledPaddingBottom = 10
	ledMinGap        = 1   // Minimum gap between columns
	ledCapFalloff    = 1.0 // Segments per update the cap falls
)

// Dots is a widget that displays the spectrum as columns of LED dots.
// Left channel columns come first, then right. The topmost lit dot of each
// column is tinted by its ratio so rising bins glow warm and falling ones cool.
type Dots struct {
	BaseVisualizer

	capPositions []float32 // Cap position (segment index) for each column
	showDimLEDs  bool      // Show unlit segments dimly

	// Layout cache
	lastWidth        int
	lastHeight       int
	lastColumns      int
	cachedBarWidth   int
	cachedActualGap  int
	cachedStartX     int
	cachedEffectiveW int
	cachedEffectiveH int
	cachedSegHeight  int
	cachedSegGap     int

	frames FrameReader
	draw   DrawingUtils
}

// NewDots creates a new LED dots visualizer widget.
func NewDots() *Dots {
	v := &Dots{showDimLEDs: true}

	v.Raster = canvas.NewRaster(v.render)
	v.ExtendBaseWidget(v)

	return v
}

// Name returns the visualizer kind.
func (v *Dots) Name() string { return string(KindDots) }

// Reset clears the visualizer state.
func (v *Dots) Reset() {
	v.Mu.Lock()
	v.capPositions = nil
	v.Mu.Unlock()

	v.BaseVisualizer.Reset()
}

// render draws the LED dots visualizer.
func (v *Dots) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.draw.FillBackground(img, color.Black)

	frame, ok := v.CurrentFrame()
	if !ok || w == 0 || h == 0 {
		return img
	}

	display := append(v.frames.Display(frame, domain.ChannelLeft), v.frames.Display(frame, domain.ChannelRight)...)
	ratios := append(v.frames.Ratio(frame, domain.ChannelLeft), v.frames.Ratio(frame, domain.ChannelRight)...)
	columns := len(display)
	if columns == 0 {
		return img
	}

	// Recalculate layout only if size or column count changed
	if v.lastWidth != w || v.lastHeight != h || v.lastColumns != columns {
		v.recalculateLayout(w, h, columns)
	}

	if v.cachedBarWidth == 0 || v.cachedSegHeight == 0 {
		return img
	}

	maxHeight := float64(v.cachedEffectiveH)
	barHeights := v.frames.Heights(display, maxHeight)

	v.Mu.Lock()
	if len(v.capPositions) != columns {
		v.capPositions = make([]float32, columns)
	}
	v.updateCapPositions(barHeights, v.capPositions, maxHeight)
	caps := append([]float32(nil), v.capPositions...)
	v.Mu.Unlock()

	v.drawColumns(img, barHeights, ratios, caps, h, maxHeight)

	return img
}

// recalculateLayout computes and caches size-dependent layout values.
func (v *Dots) recalculateLayout(w, h, columns int) {
	v.lastWidth = w
	v.lastHeight = h
	v.lastColumns = columns

	v.cachedEffectiveW = w - ledPaddingLeft - ledPaddingRight
	v.cachedEffectiveH = h - ledPaddingTop - ledPaddingBottom

	if v.cachedEffectiveW <= 0 || v.cachedEffectiveH <= 0 {
		v.cachedBarWidth = 0
		return
	}

	// Calculate segment dimensions
	totalSegHeight := v.cachedEffectiveH
	segWithGap := float64(totalSegHeight) / float64(ledSegments)
	v.cachedSegGap = max(int(segWithGap*ledGapRatio), 1)
	v.cachedSegHeight = max(int(segWithGap)-v.cachedSegGap, 2)

	// Calculate bar dimensions
	totalGapWidth := (columns - 1) * ledMinGap
	availableBarWidth := v.cachedEffectiveW - totalGapWidth

	v.cachedBarWidth = max(availableBarWidth/columns, 1)

	// Recalculate gap to distribute remaining space evenly
	v.cachedActualGap = ledMinGap
	if columns > 1 {
		remainingSpace := v.cachedEffectiveW - (v.cachedBarWidth * columns)
		v.cachedActualGap = max(remainingSpace/(columns-1), ledMinGap)
	}

	// Calculate starting X position
	usedWidth := columns*v.cachedBarWidth + (columns-1)*v.cachedActualGap
	v.cachedStartX = ledPaddingLeft + (v.cachedEffectiveW-usedWidth)/2
}

// updateCapPositions updates cap positions with falling animation.
func (v *Dots) updateCapPositions(barHeights []float32, caps []float32, maxHeight float64) {
	for i := 0; i < len(caps) && i < len(barHeights); i++ {
		// Convert height to segment position
		litSegments := float32(barHeights[i]) / float32(maxHeight) * float32(ledSegments)

		if litSegments > caps[i] {
			caps[i] = litSegments
		} else {
			caps[i] -= ledCapFalloff
			if caps[i] < 0 {
				caps[i] = 0
			}
		}
	}
}

// drawColumns renders all LED columns to the image.
func (v *Dots) drawColumns(img *image.RGBA, barHeights []float32, ratios []float64, caps []float32, h int, maxHeight float64) {
	totalBarWidth := v.cachedBarWidth + v.cachedActualGap
	segStep := v.cachedSegHeight + v.cachedSegGap

	for i := range barHeights {
		barX := v.cachedStartX + i*totalBarWidth

		litSegments := int(float64(barHeights[i]) / maxHeight * float64(ledSegments))
		capSegment := int(caps[i])

		for seg := range ledSegments {
			segY := h - ledPaddingBottom - (seg+1)*segStep

			switch {
			case seg == litSegments-1 && i < len(ratios):
				v.drawSegment(img, barX, segY, v.draw.GetRatioColor(ratios[i]))
			case seg < litSegments:
				v.drawSegment(img, barX, segY, v.getLEDColor(float64(seg)/float64(ledSegments)))
			case seg == capSegment && capSegment > 0:
				v.drawSegment(img, barX, segY, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			case v.showDimLEDs:
				v.drawSegment(img, barX, segY, color.RGBA{R: 30, G: 30, B: 30, A: 255})
			}
		}
	}
}

// drawSegment draws a single LED segment.
func (v *Dots) drawSegment(img *image.RGBA, x, y int, col color.RGBA) {
	bounds := img.Bounds()

	for dy := 0; dy < v.cachedSegHeight; dy++ {
		for dx := 0; dx < v.cachedBarWidth; dx++ {
			px := x + dx
			py := y + dy

			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, col)
			}
		}
	}
}

// getLEDColor returns the color for an LED segment based on its vertical position.
// 0-40%: Green, 40-75%: Yellow, 75-100%: Red
func (v *Dots) getLEDColor(ratio float64) color.RGBA {
	switch {
	case ratio < 0.4:
		// Green zone
		return color.RGBA{R: 0, G: 255, B: 0, A: 255}
	case ratio < 0.75:
		// Yellow zone - transition from green to yellow
		t := (ratio - 0.4) / 0.35
		return color.RGBA{R: uint8(255 * t), G: 255, B: 0, A: 255}
	default:
		// Red zone - transition from yellow to red
		t := (ratio - 0.75) / 0.25
		return color.RGBA{R: 255, G: uint8(255 * (1 - t)), B: 0, A: 255}
	}
}

// Verify interface implementation at compile time.
var _ MusicVisualizer = (*Dots)(nil)
