package visualizer

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

func testFrame(level float64, bars int) domain.Frame {
	display := make([]float64, bars)
	ratio := make([]float64, bars)
	for i := range display {
		display[i] = level
		ratio[i] = 1
	}
	series := []domain.BandSeries{{Band: "full", Display: display, Ratio: ratio}}
	return domain.Frame{
		Style:    "bars",
		Sequence: 1,
		Channels: map[domain.Channel][]domain.BandSeries{
			domain.ChannelLeft:  series,
			domain.ChannelRight: series,
		},
	}
}

// litPixels counts pixels brighter than the dim LED color.
func litPixels(img image.Image) int {
	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if max(r, g, bl)>>8 > 40 {
				lit++
			}
		}
	}
	return lit
}

func TestFactory(t *testing.T) {
	test.NewTempApp(t)

	for _, info := range GetKinds() {
		v := Factory(info.Kind)
		assert.Equal(t, string(info.Kind), v.Name())
	}
	assert.Equal(t, string(KindBars), Factory("unknown").Name())
}

func TestKindForStyle(t *testing.T) {
	assert.Equal(t, KindBars, KindForStyle("bars"))
	assert.Equal(t, KindBars, KindForStyle("lines"))
	assert.Equal(t, KindDots, KindForStyle("dots"))
	assert.Equal(t, KindDots, KindForStyle("dots-zoom"))
	assert.Equal(t, KindCircular, KindForStyle("scape"))
	assert.Equal(t, KindCircular, KindForStyle("scape-mono"))
}

func TestVisualizers_DrawFrames(t *testing.T) {
	test.NewTempApp(t)

	renders := map[Kind]func(MusicVisualizer) func(int, int) image.Image{
		KindBars:     func(v MusicVisualizer) func(int, int) image.Image { return v.(*Bars).render },
		KindDots:     func(v MusicVisualizer) func(int, int) image.Image { return v.(*Dots).render },
		KindCircular: func(v MusicVisualizer) func(int, int) image.Image { return v.(*Circular).render },
	}

	for kind, renderOf := range renders {
		t.Run(string(kind), func(t *testing.T) {
			v := Factory(kind)
			render := renderOf(v)

			assert.Zero(t, litPixels(render(200, 120)), "no frame draws background only")

			v.Render(testFrame(80, 16))
			lit := litPixels(render(200, 120))
			assert.Positive(t, lit)

			v.Render(testFrame(0, 16))
			quiet := litPixels(render(200, 120))
			assert.Less(t, quiet, lit)

			v.Reset()
			_, ok := v.(interface {
				CurrentFrame() (domain.Frame, bool)
			}).CurrentFrame()
			assert.False(t, ok)
			assert.Zero(t, litPixels(render(200, 120)))
		})
	}
}

func TestVisualizers_ZeroSize(t *testing.T) {
	test.NewTempApp(t)

	v := NewBars()
	v.Render(testFrame(50, 8))
	img := v.render(0, 0)
	assert.Equal(t, 0, img.Bounds().Dx())
}

func TestFrameReader(t *testing.T) {
	var r FrameReader
	frame := domain.Frame{Channels: map[domain.Channel][]domain.BandSeries{
		domain.ChannelLeft: {
			{Band: "low", Display: []float64{10, 20}, Ratio: []float64{1, 1.5}},
			{Band: "mid", Display: []float64{30}, Ratio: []float64{0.5}},
		},
		domain.ChannelRight: {
			{Band: "low", Display: []float64{50, 50}, Ratio: []float64{1, 1}},
			{Band: "mid", Display: []float64{50}, Ratio: []float64{1}},
		},
	}}

	assert.Equal(t, []float64{10, 20, 30}, r.Display(frame, domain.ChannelLeft))
	assert.Equal(t, []float64{1, 1.5, 0.5}, r.Ratio(frame, domain.ChannelLeft))
	assert.InDelta(t, 210.0/6/100, r.Level(frame), 1e-9)
	assert.Zero(t, r.Level(domain.Frame{}))

	heights := r.Heights([]float64{0, 50, 100, 150}, 40)
	require.Len(t, heights, 4)
	assert.Equal(t, []float32{0, 20, 40, 40}, heights)
}

func TestDrawingUtils_RatioColor(t *testing.T) {
	var d DrawingUtils
	rising := d.GetRatioColor(1.8)
	falling := d.GetRatioColor(0.2)
	assert.Greater(t, rising.R, falling.R)
	assert.Greater(t, falling.B, rising.B)
	assert.Equal(t, uint8(255), d.GetRatioColor(1).A)
	assert.NotEqual(t, color.RGBA{}, d.GetRatioColor(1))
}
