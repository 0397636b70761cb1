package series

import (
	"fmt"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// Default tuning shared by every style.
const (
	DefaultInterpolationFactor = 0.05
	DefaultRatioSmoothing      = 0.05
	DefaultRatioMin            = 0.2
	DefaultRatioMax            = 1.8
	DefaultMinHistory          = 5
)

// Band selects a contiguous range of (smoothed) bins and the number of bars it is reduced to.
type Band struct {
	Name         string
	Start        int // first bin, inclusive
	End          int // last bin, exclusive
	Bars         int
	ReverseLeft  bool
	ReverseRight bool
}

// Config tunes a Processor for one visual style.
type Config struct {
	Style string

	// SmoothingWindow is the moving-average window applied to raw bins; 1 disables it.
	SmoothingWindow int

	Bands []Band

	// HistorySize bounds the per-band rolling history.
	HistorySize int

	// InterpolationFactor blends the latest history entry toward the current frame.
	InterpolationFactor float64

	// RatioSmoothing is the spatial smoothing factor applied across the ratio series.
	RatioSmoothing float64

	RatioMin float64
	RatioMax float64

	// MinHistory is the number of stored frames required before ratios leave 1.0.
	MinHistory int

	// ReferenceLookback picks the frame ratios are measured against:
	// 0 means the oldest retained frame, n > 0 means n frames before the current one.
	ReferenceLookback int
}

// withDefaults fills zero-valued tuning fields.
func (c Config) withDefaults() Config {
	if c.SmoothingWindow == 0 {
		c.SmoothingWindow = 1
	}
	if c.InterpolationFactor == 0 {
		c.InterpolationFactor = DefaultInterpolationFactor
	}
	if c.RatioSmoothing == 0 {
		c.RatioSmoothing = DefaultRatioSmoothing
	}
	if c.RatioMin == 0 && c.RatioMax == 0 {
		c.RatioMin, c.RatioMax = DefaultRatioMin, DefaultRatioMax
	}
	if c.MinHistory == 0 {
		c.MinHistory = min(DefaultMinHistory, c.HistorySize)
	}
	return c
}

// Validate reports the first invalid field as a *domain.ValidationError.
func (c Config) Validate() error {
	switch {
	case c.SmoothingWindow < 1:
		return domain.NewValidationError("SmoothingWindow", c.SmoothingWindow, "must be at least 1")
	case len(c.Bands) == 0:
		return domain.NewValidationError("Bands", len(c.Bands), "at least one band is required")
	case c.HistorySize < 1:
		return domain.NewValidationError("HistorySize", c.HistorySize, "must be at least 1")
	case c.InterpolationFactor <= 0 || c.InterpolationFactor > 1:
		return domain.NewValidationError("InterpolationFactor", c.InterpolationFactor, "must be in (0, 1]")
	case c.RatioSmoothing <= 0 || c.RatioSmoothing > 1:
		return domain.NewValidationError("RatioSmoothing", c.RatioSmoothing, "must be in (0, 1]")
	case c.RatioMin <= 0 || c.RatioMin > 1 || c.RatioMax < 1:
		return domain.NewValidationError("RatioMin/RatioMax", [2]float64{c.RatioMin, c.RatioMax}, "range must contain 1 with a positive lower bound")
	case c.MinHistory < 1 || c.MinHistory > c.HistorySize:
		return domain.NewValidationError("MinHistory", c.MinHistory, "must be between 1 and HistorySize")
	case c.ReferenceLookback < 0 || c.ReferenceLookback > c.HistorySize:
		return domain.NewValidationError("ReferenceLookback", c.ReferenceLookback, "must be between 0 and HistorySize")
	}
	for i, b := range c.Bands {
		if b.Start < 0 || b.End <= b.Start || b.Bars < 1 {
			return domain.NewValidationError(fmt.Sprintf("Bands[%d]", i), b, "needs 0 <= Start < End and Bars >= 1")
		}
	}
	return nil
}

// Processor converts snapshots into display and ratio series, keeping one
// history per channel and band. It is not safe for concurrent use.
type Processor struct {
	cfg       Config
	histories map[domain.Channel][]*History
	sequence  uint64
}

// NewProcessor validates cfg (after filling defaults) and creates a processor.
func NewProcessor(cfg Config) (*Processor, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Processor{
		cfg:       cfg,
		histories: make(map[domain.Channel][]*History, 2),
	}
	for _, ch := range []domain.Channel{domain.ChannelLeft, domain.ChannelRight} {
		hs := make([]*History, len(cfg.Bands))
		for i := range hs {
			hs[i] = NewHistory(cfg.HistorySize)
		}
		p.histories[ch] = hs
	}
	return p, nil
}

// Config returns the effective configuration.
func (p *Processor) Config() Config { return p.cfg }

// Process runs one snapshot through the pipeline and returns the renderer frame.
func (p *Processor) Process(snapshot domain.FrequencySnapshot) domain.Frame {
	p.sequence++
	return domain.Frame{
		Style:    p.cfg.Style,
		Sequence: p.sequence,
		Channels: map[domain.Channel][]domain.BandSeries{
			domain.ChannelLeft:  p.processChannel(domain.ChannelLeft, snapshot.Left),
			domain.ChannelRight: p.processChannel(domain.ChannelRight, snapshot.Right),
		},
	}
}

// Reset clears every history, e.g. when the track changes.
func (p *Processor) Reset() {
	for _, hs := range p.histories {
		for _, h := range hs {
			h.Reset()
		}
	}
}

func (p *Processor) processChannel(ch domain.Channel, bins []byte) []domain.BandSeries {
	smoothed := MovingAverage(FromBytes(bins), p.cfg.SmoothingWindow)

	out := make([]domain.BandSeries, len(p.cfg.Bands))
	for i, band := range p.cfg.Bands {
		current := Normalize(Resize(Window(smoothed, band.Start, band.End), band.Bars))
		if (ch == domain.ChannelLeft && band.ReverseLeft) || (ch == domain.ChannelRight && band.ReverseRight) {
			current = Reverse(current)
		}

		h := p.histories[ch][i]
		display, ratio := p.derive(h, current)
		h.Push(current)

		out[i] = domain.BandSeries{Band: band.Name, Display: display, Ratio: ratio}
	}
	return out
}

// derive computes the display and ratio series against the history as it
// stood before current is appended.
func (p *Processor) derive(h *History, current []float64) (display, ratio []float64) {
	display = clone(current)
	if prev, ok := h.Latest(); ok {
		display = Interpolate(prev, current, p.cfg.InterpolationFactor)
	}

	ref, ok := p.reference(h)
	if !ok || len(ref) != len(display) {
		return display, Fill(len(display), 1)
	}

	ratio = make([]float64, len(display))
	for i, v := range display {
		ratio[i] = p.ratio(v, ref[i])
	}
	return display, Smooth(ratio, p.cfg.RatioSmoothing)
}

func (p *Processor) reference(h *History) ([]float64, bool) {
	if h.Len() < p.cfg.MinHistory {
		return nil, false
	}
	if p.cfg.ReferenceLookback > 0 {
		if ref, ok := h.At(p.cfg.ReferenceLookback - 1); ok {
			return ref, true
		}
	}
	return h.Oldest()
}

// ratio divides v by ref, clamped. A zero reference yields the neutral 1.0
// for silence and the upper bound for any signal rising out of silence.
func (p *Processor) ratio(v, ref float64) float64 {
	if ref == 0 {
		if v == 0 {
			return 1
		}
		return p.cfg.RatioMax
	}
	return Clamp(v/ref, p.cfg.RatioMin, p.cfg.RatioMax)
}
