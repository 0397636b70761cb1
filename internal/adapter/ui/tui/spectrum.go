package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Unicode block elements for cell fill (9 levels including space)
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Spectrum renders 0..100 display series as rows of colored block characters.
type Spectrum struct {
	Rows      int
	LowStyle  lipgloss.Style
	MidStyle  lipgloss.Style
	HighStyle lipgloss.Style
}

// NewSpectrum creates a spectrum renderer with the given row count.
func NewSpectrum(rows int) Spectrum {
	return Spectrum{
		Rows:      max(rows, 1),
		LowStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		MidStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		HighStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Columns resamples a display series to width levels in 0..1.
// Wider targets repeat samples, narrower ones average them.
func (s Spectrum) Columns(display []float64, width int) []float64 {
	if width <= 0 {
		return nil
	}
	levels := make([]float64, width)
	n := len(display)
	if n == 0 {
		return levels
	}
	for c := range width {
		lo := c * n / width
		hi := (c + 1) * n / width
		if hi <= lo {
			hi = lo + 1
		}
		var sum float64
		for _, v := range display[lo:hi] {
			sum += v
		}
		levels[c] = max(0, min(1, sum/float64(hi-lo)/100))
	}
	return levels
}

// Render draws the series in width columns. Inverted output hangs from the
// top row, which is used to mirror the right channel under the left.
func (s Spectrum) Render(display []float64, width int, inverted bool) string {
	levels := s.Columns(display, width)
	if len(levels) == 0 {
		return ""
	}

	lines := make([]string, s.Rows)
	for r := range s.Rows {
		// Distance of this row from the baseline
		depth := s.Rows - 1 - r
		if inverted {
			depth = r
		}

		var sb strings.Builder
		for _, level := range levels {
			fill := level*float64(s.Rows) - float64(depth)
			sb.WriteString(s.styleFor(level).Render(cell(fill, inverted)))
		}
		lines[r] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func (s Spectrum) styleFor(level float64) lipgloss.Style {
	switch {
	case level > 0.75:
		return s.HighStyle
	case level > 0.45:
		return s.MidStyle
	default:
		return s.LowStyle
	}
}

// cell picks the glyph for a cell filled to fill (0..1, clamped).
func cell(fill float64, inverted bool) string {
	switch {
	case fill >= 1:
		return barBlocks[len(barBlocks)-1]
	case fill <= 0:
		return barBlocks[0]
	case inverted:
		// Partial blocks are bottom-anchored, so hanging bars round to half cells.
		if fill >= 0.5 {
			return "▀"
		}
		return barBlocks[0]
	default:
		return barBlocks[int(fill*float64(len(barBlocks)-1))]
	}
}
