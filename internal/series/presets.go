package series

import (
	"fmt"
	"slices"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// Style names.
const (
	StyleBars        = "bars"
	StyleDots        = "dots"
	StyleDotsZoom    = "dots-zoom"
	StyleScape       = "scape"
	StyleScapeStereo = "scape-stereo"
	StyleScapeMono   = "scape-mono"
	StyleLines       = "lines"
)

// Band names used by the presets.
const (
	BandFull = "full"
	BandLow  = "low"
	BandMid  = "mid"
	BandHigh = "high"
)

var presets = map[string]Config{
	StyleBars: {
		SmoothingWindow: 1,
		Bands:           []Band{{Name: BandFull, Start: 0, End: 32, Bars: 32}},
		HistorySize:     10,
	},
	StyleDots: {
		SmoothingWindow: 5,
		Bands: []Band{
			{Name: BandLow, Start: 50, End: 200, Bars: 150},
			{Name: BandMid, Start: 200, End: 1200, Bars: 150},
		},
		HistorySize: 21,
	},
	StyleDotsZoom: {
		SmoothingWindow: 50,
		Bands: []Band{
			{Name: BandLow, Start: 50, End: 200, Bars: 50},
			{Name: BandMid, Start: 150, End: 600, Bars: 50},
			{Name: BandHigh, Start: 500, End: 1600, Bars: 50},
		},
		HistorySize: 21,
	},
	StyleScape: {
		SmoothingWindow: 60,
		Bands:           []Band{{Name: BandFull, Start: 10, End: 1850, Bars: 150, ReverseRight: true}},
		HistorySize:     81,
	},
	StyleScapeStereo: {
		SmoothingWindow: 40,
		Bands:           []Band{{Name: BandFull, Start: 10, End: 1700, Bars: 130}},
		HistorySize:     40,
	},
	StyleScapeMono: {
		SmoothingWindow: 100,
		Bands:           []Band{{Name: BandFull, Start: 0, End: 1800, Bars: 140}},
		HistorySize:     200,
		// the mono scape compares against a short echo rather than the whole window
		ReferenceLookback: 9,
	},
	StyleLines: {
		SmoothingWindow: 1,
		Bands:           []Band{{Name: BandFull, Start: 50, End: 1400, Bars: 30}},
		HistorySize:     5,
	},
}

// PresetNames returns the known style names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset returns the processor configuration for a named style.
func Preset(name string) (Config, error) {
	cfg, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", domain.ErrInvalidStyle, name)
	}
	cfg.Style = name
	cfg.Bands = slices.Clone(cfg.Bands)
	return cfg.withDefaults(), nil
}
