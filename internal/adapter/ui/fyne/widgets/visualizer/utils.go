package visualizer

import (
	"image"
	"image/color"
	"math"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// FrameReader extracts drawable series from a processed frame.
type FrameReader struct{}

// Display returns the display values of every band of a channel, in band order.
func (FrameReader) Display(frame domain.Frame, ch domain.Channel) []float64 {
	var out []float64
	for _, b := range frame.Channels[ch] {
		out = append(out, b.Display...)
	}
	return out
}

// Ratio returns the ratio values of every band of a channel, in band order.
func (FrameReader) Ratio(frame domain.Frame, ch domain.Channel) []float64 {
	var out []float64
	for _, b := range frame.Channels[ch] {
		out = append(out, b.Ratio...)
	}
	return out
}

// Level returns the mean display value of both channels scaled to 0..1.
func (r FrameReader) Level(frame domain.Frame) float64 {
	var sum float64
	var n int
	for _, ch := range []domain.Channel{domain.ChannelLeft, domain.ChannelRight} {
		for _, v := range r.Display(frame, ch) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) / 100
}

// Heights scales 0..100 display values to pixel heights within maxHeight.
func (FrameReader) Heights(display []float64, maxHeight float64) []float32 {
	heights := make([]float32, len(display))
	for i, v := range display {
		y := v / 100 * maxHeight
		heights[i] = float32(math.Max(0, math.Min(y, maxHeight)))
	}
	return heights
}

// DrawingUtils provides common drawing operations.
type DrawingUtils struct{}

// FillBackground fills the image with a solid color.
func (DrawingUtils) FillBackground(img *image.RGBA, col color.Color) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, col)
		}
	}
}

// DrawThickLine draws a line with the specified thickness.
func (DrawingUtils) DrawThickLine(img *image.RGBA, x1, y1, x2, y2 float64, thickness int, col color.RGBA) {
	bounds := img.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)

	if length == 0 {
		return
	}

	// Perpendicular unit vector for thickness
	perpX := -dy / length
	perpY := dx / length

	steps := int(length) + 1

	for t := -thickness / 2; t <= thickness/2; t++ {
		offsetX := float64(t) * perpX
		offsetY := float64(t) * perpY

		for i := 0; i <= steps; i++ {
			progress := float64(i) / float64(steps)
			px := int(x1 + dx*progress + offsetX)
			py := int(y1 + dy*progress + offsetY)

			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, col)
			}
		}
	}
}

// DrawCircle draws a circle outline.
func (DrawingUtils) DrawCircle(img *image.RGBA, cx, cy int, radius float64, col color.RGBA) {
	bounds := img.Bounds()

	steps := int(2 * math.Pi * radius)
	if steps < 36 {
		steps = 36
	}

	for i := 0; i < steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		px := int(float64(cx) + math.Cos(angle)*radius)
		py := int(float64(cy) + math.Sin(angle)*radius)

		if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
			img.Set(px, py, col)
		}
	}
}

// DrawFilledCircle draws a filled circle.
func (DrawingUtils) DrawFilledCircle(img *image.RGBA, cx, cy int, radius float64, col color.RGBA) {
	bounds := img.Bounds()
	r := int(radius)

	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				px, py := cx+dx, cy+dy
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					img.Set(px, py, col)
				}
			}
		}
	}
}

// GetGradientColor returns a color from a red-yellow-green gradient based on position (0.0 to 1.0).
func (DrawingUtils) GetGradientColor(pos float64) color.RGBA {
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}

	var r, g uint8

	if pos < 0.5 {
		r = 255
		g = uint8(pos * 2 * 255)
	} else {
		r = uint8((1 - (pos-0.5)*2) * 255)
		g = 255
	}

	return color.RGBA{R: r, G: g, B: 0, A: 255}
}

// GetRatioColor tints a value by its trend: rising ratios (>1) shift toward
// warm colors, falling ratios (<1) toward cool ones.
func (DrawingUtils) GetRatioColor(ratio float64) color.RGBA {
	hue := 0.55 - (ratio-1)*0.6
	hue = math.Max(0, math.Min(hue, 0.66))
	r, g, b := HSLToRGB(hue, 0.9, 0.55)
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

// HSLToRGB converts HSL to RGB (h, s, l in 0-1 range).
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r = hueToRGB(p, q, h+1.0/3.0)
	g = hueToRGB(p, q, h)
	b = hueToRGB(p, q, h-1.0/3.0)

	return r, g, b
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 0.5 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
