package visualizer

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2/canvas"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

const (
	circularInnerRadiusRatio = 0.15 // Inner circle ratio of min dimension
	circularMaxBarRatio      = 0.35 // Maximum bar length ratio of min dimension
	circularCapFalloff       = 2.0  // Pixels per frame the cap falls
)

// Circular is a widget that displays the spectrum in a circular pattern.
// Bars radiate outward from a central circle that pulses with the overall
// level. The left channel fills the right half clockwise from the top and the
// right channel mirrors it on the left half.
type Circular struct {
	BaseVisualizer

	capHeights []float32 // Falling cap animation heights (in radial distance)

	frames FrameReader
	draw   DrawingUtils
}

// NewCircular creates a new circular visualizer.
func NewCircular() *Circular {
	v := &Circular{}

	v.Raster = canvas.NewRaster(v.render)
	v.ExtendBaseWidget(v)

	return v
}

// Name returns the visualizer kind.
func (v *Circular) Name() string { return string(KindCircular) }

// Reset clears the visualizer state.
func (v *Circular) Reset() {
	v.Mu.Lock()
	v.capHeights = nil
	v.Mu.Unlock()

	v.BaseVisualizer.Reset()
}

// render draws the circular visualizer.
func (v *Circular) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.draw.FillBackground(img, color.Black)

	frame, ok := v.CurrentFrame()
	if !ok || w == 0 || h == 0 {
		return img
	}

	left := v.frames.Display(frame, domain.ChannelLeft)
	right := v.frames.Display(frame, domain.ChannelRight)
	perSide := max(len(left), len(right))
	if perSide == 0 {
		return img
	}

	// Calculate dimensions
	centerX := float64(w) / 2
	centerY := float64(h) / 2
	minDim := math.Min(float64(w), float64(h))
	innerRadius := minDim * circularInnerRadiusRatio
	maxBarLen := minDim * circularMaxBarRatio

	// Smoothed level for center pulse
	level := v.frames.Level(frame)
	v.Mu.Lock()
	v.LevelAvg = v.LevelAvg*0.7 + level*0.3
	pulseRadius := innerRadius + v.LevelAvg*innerRadius*0.3
	v.Mu.Unlock()

	// Right-half bars run clockwise, left-half bars counter-clockwise
	barHeights := append(v.frames.Heights(left, maxBarLen), v.frames.Heights(right, maxBarLen)...)
	numBars := len(barHeights)

	v.Mu.Lock()
	if len(v.capHeights) != numBars {
		v.capHeights = make([]float32, numBars)
	}
	v.updateCapHeights(barHeights, v.capHeights)
	caps := append([]float32(nil), v.capHeights...)
	v.Mu.Unlock()

	// Draw inner circle (pulsing with level)
	v.draw.DrawFilledCircle(img, int(centerX), int(centerY), pulseRadius, color.RGBA{R: 30, G: 30, B: 40, A: 255})
	v.draw.DrawCircle(img, int(centerX), int(centerY), pulseRadius, color.RGBA{R: 100, G: 100, B: 150, A: 255})

	angleStep := math.Pi / float64(perSide)

	for i := range numBars {
		var angle float64
		if i < len(left) {
			angle = float64(i)*angleStep - math.Pi/2 // Start from top
		} else {
			angle = -math.Pi/2 - float64(i-len(left))*angleStep
		}

		barLen := float64(barHeights[i])
		capLen := float64(caps[i])

		// Bar start and end points
		startX := centerX + math.Cos(angle)*innerRadius
		startY := centerY + math.Sin(angle)*innerRadius
		endX := centerX + math.Cos(angle)*(innerRadius+barLen)
		endY := centerY + math.Sin(angle)*(innerRadius+barLen)

		col := v.draw.GetGradientColor(barLen / maxBarLen)
		v.draw.DrawThickLine(img, startX, startY, endX, endY, 2, col)

		if capLen > 0 {
			capStartX := centerX + math.Cos(angle)*(innerRadius+capLen)
			capStartY := centerY + math.Sin(angle)*(innerRadius+capLen)
			capEndX := centerX + math.Cos(angle)*(innerRadius+capLen+3)
			capEndY := centerY + math.Sin(angle)*(innerRadius+capLen+3)
			v.draw.DrawThickLine(img, capStartX, capStartY, capEndX, capEndY, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	return img
}

// updateCapHeights updates cap positions with falling animation.
func (v *Circular) updateCapHeights(barHeights []float32, caps []float32) {
	for i := 0; i < len(caps) && i < len(barHeights); i++ {
		barH := barHeights[i]
		if barH > caps[i] {
			caps[i] = barH
		} else {
			caps[i] -= circularCapFalloff
			if caps[i] < 0 {
				caps[i] = 0
			}
		}
	}
}

// Verify interface implementation at compile time.
var _ MusicVisualizer = (*Circular)(nil)
