package service

import (
	"errors"
	"sync"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// Transform size bounds accepted by NewAudioGraph.
const (
	MinFFTSize = 32
	MaxFFTSize = 32768
)

// ValidFFTSize reports whether n is a power of two within [MinFFTSize, MaxFFTSize].
func ValidFFTSize(n int) bool {
	return n >= MinFFTSize && n <= MaxFFTSize && n&(n-1) == 0
}

// AudioGraph owns the persistent signal path:
//
//	source -> gain -> splitter -> {analyser L, analyser R}
//	          gain -> destination
//
// The gain, splitter and analysers are built once. Only the source is
// replaced on track change, and at most one source is connected at a time.
type AudioGraph struct {
	ctx     ports.AudioContext
	fftSize int

	gain        ports.GainNode
	splitter    ports.AudioNode
	left, right ports.AnalyserNode

	mu     sync.Mutex
	source ports.MediaSource
	closed bool
}

// NewAudioGraph builds the persistent nodes on ctx.
func NewAudioGraph(ctx ports.AudioContext, fftSize int) (*AudioGraph, error) {
	if !ValidFFTSize(fftSize) {
		return nil, domain.NewAudioGraphError("build", "", domain.ErrInvalidTransformSize)
	}

	g := &AudioGraph{ctx: ctx, fftSize: fftSize}

	var err error
	if g.gain, err = ctx.NewGain(); err != nil {
		return nil, domain.NewAudioGraphError("gain", "", err)
	}
	if g.splitter, err = ctx.NewChannelSplitter(2); err != nil {
		return nil, domain.NewAudioGraphError("splitter", "", err)
	}
	if g.left, err = ctx.NewAnalyser(fftSize); err != nil {
		return nil, domain.NewAudioGraphError("analyser", "", err)
	}
	if g.right, err = ctx.NewAnalyser(fftSize); err != nil {
		return nil, domain.NewAudioGraphError("analyser", "", err)
	}

	err = errors.Join(
		g.gain.Connect(g.splitter, 0),
		g.splitter.Connect(g.left, 0),
		g.splitter.Connect(g.right, 1),
		g.gain.Connect(ctx.Destination(), 0),
	)
	if err != nil {
		g.disconnectAll()
		return nil, domain.NewAudioGraphError("connect", "", err)
	}
	return g, nil
}

// FFTSize returns the analyser transform size.
func (g *AudioGraph) FFTSize() int { return g.fftSize }

// Analysers returns the left and right analysis nodes.
func (g *AudioGraph) Analysers() (left, right ports.AnalyserNode) {
	return g.left, g.right
}

// Source returns the connected source, or nil.
func (g *AudioGraph) Source() ports.MediaSource {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.source
}

// ReplaceSource disconnects and closes the current source, then connects src
// into the gain stage. A nil src only detaches. If connecting src fails, the
// graph is left without a source and src is not closed.
func (g *AudioGraph) ReplaceSource(src ports.MediaSource) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return domain.ErrGraphClosed
	}

	var closeErr error
	if old := g.source; old != nil {
		old.Disconnect()
		closeErr = old.Close()
		g.source = nil
	}

	if src == nil {
		return closeErr
	}
	if err := src.Connect(g.gain, 0); err != nil {
		return domain.NewAudioGraphError("connect", "", err)
	}
	g.source = src
	return closeErr
}

// SetGain applies the volume multiplier.
func (g *AudioGraph) SetGain(value float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return domain.ErrGraphClosed
	}
	g.gain.SetGain(value)
	return nil
}

// Gain returns the current multiplier.
func (g *AudioGraph) Gain() float64 {
	return g.gain.Gain()
}

// Teardown disconnects every node and closes the source. Safe to call repeatedly.
func (g *AudioGraph) Teardown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true

	var err error
	if g.source != nil {
		g.source.Disconnect()
		err = g.source.Close()
		g.source = nil
	}
	g.disconnectAll()
	return err
}

func (g *AudioGraph) disconnectAll() {
	for _, n := range []ports.AudioNode{g.gain, g.splitter, g.left, g.right} {
		if n != nil {
			n.Disconnect()
		}
	}
}
