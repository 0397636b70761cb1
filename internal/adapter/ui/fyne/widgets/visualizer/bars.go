package visualizer

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2/canvas"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// Bars is a widget that displays the stereo spectrum as mirrored bars.
// The left channel grows upward from the center line and the right channel
// downward, each with a falling cap.
type Bars struct {
	BaseVisualizer

	capHeights [2][]float32 // Falling cap animation heights per channel

	// Visual configuration
	capHeight  int
	capFalloff float32 // Pixels per update the cap falls
	minGap     int     // Minimum gap between bars
	padding    int

	// Layout cache (recalculated only when size or bar count changes)
	lastWidth        int
	lastHeight       int
	lastBars         int
	cachedBarWidth   int
	cachedActualGap  int
	cachedStartX     int
	cachedEffectiveW int
	cachedHalfH      int

	frames FrameReader
	draw   DrawingUtils
}

// NewBars creates a new bars visualizer widget.
func NewBars() *Bars {
	v := &Bars{
		capHeight:  2,
		capFalloff: 2.0,
		minGap:     2,
		padding:    10,
	}

	v.Raster = canvas.NewRaster(v.render)
	v.ExtendBaseWidget(v)

	return v
}

// Name returns the visualizer kind.
func (v *Bars) Name() string { return string(KindBars) }

// Reset clears the visualizer state.
func (v *Bars) Reset() {
	v.Mu.Lock()
	v.capHeights = [2][]float32{}
	v.Mu.Unlock()

	v.BaseVisualizer.Reset()
}

// render is the raster generator function that draws the visualizer.
func (v *Bars) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.draw.FillBackground(img, color.Black)

	frame, ok := v.CurrentFrame()
	if !ok || w == 0 || h == 0 {
		return img
	}

	left := v.frames.Display(frame, domain.ChannelLeft)
	right := v.frames.Display(frame, domain.ChannelRight)
	numBars := max(len(left), len(right))
	if numBars == 0 {
		return img
	}

	if v.lastWidth != w || v.lastHeight != h || v.lastBars != numBars {
		v.recalculateLayout(w, h, numBars)
	}
	if v.cachedBarWidth == 0 {
		return img
	}

	maxH := float64(v.cachedHalfH)
	heights := [2][]float32{v.frames.Heights(left, maxH), v.frames.Heights(right, maxH)}

	v.Mu.Lock()
	for ch := range heights {
		if len(v.capHeights[ch]) != numBars {
			v.capHeights[ch] = make([]float32, numBars)
		}
		v.updateCapHeights(heights[ch], v.capHeights[ch])
	}
	caps := [2][]float32{append([]float32(nil), v.capHeights[0]...), append([]float32(nil), v.capHeights[1]...)}
	v.Mu.Unlock()

	centerY := h / 2
	v.drawBars(img, heights[0], caps[0], centerY, -1)
	v.drawBars(img, heights[1], caps[1], centerY, 1)

	return img
}

// recalculateLayout computes and caches size-dependent layout values.
func (v *Bars) recalculateLayout(w, h, numBars int) {
	v.lastWidth = w
	v.lastHeight = h
	v.lastBars = numBars

	v.cachedEffectiveW = w - 2*v.padding
	v.cachedHalfH = h/2 - v.padding

	if v.cachedEffectiveW <= 0 || v.cachedHalfH <= 0 {
		v.cachedBarWidth = 0
		return
	}

	// Calculate bar dimensions dynamically based on available space
	totalGapWidth := (numBars - 1) * v.minGap
	availableBarWidth := v.cachedEffectiveW - totalGapWidth

	v.cachedBarWidth = max(availableBarWidth/numBars, 1)

	// Recalculate gap to distribute remaining space evenly
	v.cachedActualGap = v.minGap
	if numBars > 1 {
		remainingSpace := v.cachedEffectiveW - (v.cachedBarWidth * numBars)
		v.cachedActualGap = max(remainingSpace/(numBars-1), 0)
	}

	usedWidth := numBars*v.cachedBarWidth + (numBars-1)*v.cachedActualGap
	v.cachedStartX = v.padding + max((v.cachedEffectiveW-usedWidth)/2, 0)
}

// updateCapHeights updates cap positions with falling animation.
func (v *Bars) updateCapHeights(barHeights []float32, caps []float32) {
	for i := 0; i < len(caps) && i < len(barHeights); i++ {
		barH := barHeights[i]
		if barH > caps[i] {
			caps[i] = barH
		} else {
			caps[i] = max(caps[i]-v.capFalloff, 0)
		}
	}
}

// drawBars renders one channel's bars. dir is -1 for upward, 1 for downward.
func (v *Bars) drawBars(img *image.RGBA, barHeights []float32, caps []float32, centerY, dir int) {
	totalBarWidth := v.cachedBarWidth + v.cachedActualGap
	bounds := img.Bounds()

	for i, bh := range barHeights {
		barX := v.cachedStartX + i*totalBarWidth
		barH := int(bh)

		for y := 0; y < barH; y++ {
			screenY := centerY + dir*y
			col := v.draw.GetGradientColor(float64(y) / float64(v.cachedHalfH))
			for x := barX; x < barX+v.cachedBarWidth && x < bounds.Max.X-v.padding; x++ {
				img.Set(x, screenY, col)
			}
		}

		capY := int(caps[i])
		if capY <= 0 || capY >= v.cachedHalfH {
			continue
		}
		for cy := 0; cy < v.capHeight; cy++ {
			screenY := centerY + dir*(capY+cy)
			for x := barX; x < barX+v.cachedBarWidth && x < bounds.Max.X-v.padding; x++ {
				img.Set(x, screenY, color.White)
			}
		}
	}
}

// Verify interface implementation at compile time.
var _ MusicVisualizer = (*Bars)(nil)
