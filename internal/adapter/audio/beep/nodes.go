package beep

import (
	"errors"
	"fmt"
	"sync"

	"github.com/faiface/beep"

	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

var (
	errForeignNode    = errors.New("node belongs to another context")
	errUnsupportedDst = errors.New("unsupported connection")
)

// destination is the graph's terminal node; the output driver pulls from it.
type destination struct {
	ctx *Context

	mu    sync.Mutex
	input *Gain
}

func (d *destination) Connect(ports.AudioNode, int) error {
	return fmt.Errorf("destination has no outputs: %w", errUnsupportedDst)
}

func (d *destination) Disconnect() {}

// Stream fills samples from the connected gain, or silence. It never ends.
func (d *destination) Stream(samples [][2]float64) (int, bool) {
	d.mu.Lock()
	in := d.input
	d.mu.Unlock()

	if in == nil {
		clear(samples)
	} else {
		in.stream(samples)
	}
	return len(samples), true
}

func (d *destination) Err() error { return nil }

func (d *destination) attach(g *Gain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.input = g
}

func (d *destination) detach(g *Gain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.input == g {
		d.input = nil
	}
}

// Gain scales the connected source linearly and feeds splitters and the destination.
type Gain struct {
	ctx *Context

	mu    sync.Mutex
	value float64
	input *MediaSource
	taps  []*Splitter
}

// SetGain sets the multiplier.
func (g *Gain) SetGain(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = value
}

// Gain returns the multiplier.
func (g *Gain) Gain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Connect routes the gain to a splitter or the destination.
func (g *Gain) Connect(dst ports.AudioNode, output int) error {
	if output != 0 {
		return fmt.Errorf("gain has no output %d", output)
	}
	switch d := dst.(type) {
	case *Splitter:
		if d.ctx != g.ctx {
			return errForeignNode
		}
		g.mu.Lock()
		g.taps = append(g.taps, d)
		g.mu.Unlock()
	case *destination:
		if d.ctx != g.ctx {
			return errForeignNode
		}
		d.attach(g)
	default:
		return fmt.Errorf("gain to %T: %w", dst, errUnsupportedDst)
	}
	return nil
}

// Disconnect removes every outgoing connection.
func (g *Gain) Disconnect() {
	g.mu.Lock()
	g.taps = nil
	g.mu.Unlock()
	g.ctx.dest.detach(g)
}

func (g *Gain) attach(s *MediaSource) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.input != nil && g.input != s {
		return errors.New("gain already has a connected source")
	}
	g.input = s
	return nil
}

func (g *Gain) detach(s *MediaSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.input == s {
		g.input = nil
	}
}

// stream pulls from the source, applies the gain and feeds the taps.
func (g *Gain) stream(samples [][2]float64) {
	g.mu.Lock()
	src, value := g.input, g.value
	taps := append([]*Splitter(nil), g.taps...)
	g.mu.Unlock()

	if src == nil {
		clear(samples)
	} else {
		src.stream(samples)
	}
	if value != 1 {
		for i := range samples {
			samples[i][0] *= value
			samples[i][1] *= value
		}
	}
	for _, t := range taps {
		t.consume(samples)
	}
}

// Splitter fans stereo samples out to per-channel analysers.
type Splitter struct {
	ctx      *Context
	channels int

	mu      sync.Mutex
	outputs [2][]*Analyser
	scratch []float64
}

// Connect routes channel output to an analyser.
func (s *Splitter) Connect(dst ports.AudioNode, output int) error {
	if output < 0 || output >= s.channels {
		return fmt.Errorf("splitter has no output %d", output)
	}
	a, ok := dst.(*Analyser)
	if !ok {
		return fmt.Errorf("splitter to %T: %w", dst, errUnsupportedDst)
	}
	if a.ctx != s.ctx {
		return errForeignNode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[output] = append(s.outputs[output], a)
	return nil
}

// Disconnect removes every outgoing connection.
func (s *Splitter) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = [2][]*Analyser{}
}

func (s *Splitter) consume(samples [][2]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cap(s.scratch) < len(samples) {
		s.scratch = make([]float64, len(samples))
	}
	buf := s.scratch[:len(samples)]
	for ch, analysers := range s.outputs {
		if len(analysers) == 0 {
			continue
		}
		for i := range samples {
			buf[i] = samples[i][ch]
		}
		for _, a := range analysers {
			a.write(buf)
		}
	}
}

var (
	_ beep.Streamer  = (*destination)(nil)
	_ ports.GainNode = (*Gain)(nil)
)
