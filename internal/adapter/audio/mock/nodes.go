package mock

import (
	"fmt"
	"time"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

type connection struct {
	dst    ports.AudioNode
	output int
}

// Node is a generic mock graph vertex (destination, splitter).
type Node struct {
	ctx     *Context
	kind    string
	outputs int
	conns   []connection
	input   int // splitter output feeding an analyser, -1 if none
}

// Connect records an edge from this node to dst.
func (n *Node) Connect(dst ports.AudioNode, output int) error {
	target := nodeOf(dst)
	if target == nil || target.ctx != n.ctx {
		return errForeignNode
	}

	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	if n.ctx.state == ports.ContextClosed {
		return domain.ErrContextClosed
	}
	if output < 0 || output >= n.outputs {
		return fmt.Errorf("%s has no output %d", n.kind, output)
	}
	n.conns = append(n.conns, connection{dst: dst, output: output})
	if target.kind == "analyser" && n.kind == "splitter" {
		target.input = output
	}
	return nil
}

// Disconnect removes every outgoing edge.
func (n *Node) Disconnect() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	for _, c := range n.conns {
		if t := nodeOf(c.dst); t != nil && t.kind == "analyser" {
			t.input = -1
		}
	}
	n.conns = nil
}

// Kind returns the node type name.
func (n *Node) Kind() string { return n.kind }

// Outputs returns the destinations this node feeds, in connection order.
func (n *Node) Outputs() []ports.AudioNode {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	out := make([]ports.AudioNode, len(n.conns))
	for i, c := range n.conns {
		out[i] = c.dst
	}
	return out
}

// Connected reports whether the node has any outgoing edge.
func (n *Node) Connected() bool {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return len(n.conns) > 0
}

func nodeOf(an ports.AudioNode) *Node {
	switch v := an.(type) {
	case *Node:
		return v
	case *Gain:
		return &v.Node
	case *Analyser:
		return &v.Node
	case *MediaSource:
		return &v.Node
	default:
		return nil
	}
}

// Gain is a mock gain node.
type Gain struct {
	Node
	value float64
}

// SetGain stores the multiplier.
func (g *Gain) SetGain(value float64) {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	g.value = value
}

// Gain returns the stored multiplier.
func (g *Gain) Gain() float64 {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	return g.value
}

// Analyser is a mock analyser that reports the context's scripted signal for
// the channel it is wired to, and silence when nothing is playing.
type Analyser struct {
	Node
	fftSize int
	reads   int
}

// FFTSize returns the transform size.
func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount returns FFTSize/2.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// ByteFrequencyData copies the scripted magnitudes into dst.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()

	a.reads++
	n := min(len(dst), a.FrequencyBinCount())
	clear(dst[:n])
	if a.input < 0 || a.input > 1 || !a.ctx.audibleLocked() {
		return
	}
	copy(dst[:n], a.ctx.signal[a.input])
}

// Reads returns how many times ByteFrequencyData was called.
func (a *Analyser) Reads() int {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()
	return a.reads
}

// MediaSource is a mock per-track source.
type MediaSource struct {
	Node
	uri      string
	duration time.Duration
	position time.Duration
	paused   bool
	closed   bool
	plays    int
	onEnded  func()
	onError  func(error)
}

// URI returns the locator the source was created for.
func (s *MediaSource) URI() string { return s.uri }

// Play schedules playback start. The failure switch is sampled at call time.
func (s *MediaSource) Play(done func(error)) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()

	fail := s.ctx.failPlay
	s.ctx.dispatchLocked(func() {
		s.ctx.mu.Lock()
		var err error
		switch {
		case s.closed:
			err = domain.ErrContextClosed
		case fail != nil:
			err = fail
		default:
			s.paused = false
			s.plays++
		}
		s.ctx.mu.Unlock()
		done(err)
	})
}

// Pause halts the source and keeps its position.
func (s *MediaSource) Pause() {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.paused = true
}

// Paused reports whether the source is halted.
func (s *MediaSource) Paused() bool {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.paused
}

// CurrentTime returns the position.
func (s *MediaSource) CurrentTime() time.Duration {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.position
}

// SetCurrentTime moves the position, clamped to [0, duration].
func (s *MediaSource) SetCurrentTime(position time.Duration) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.position = max(0, min(position, s.duration))
}

// Duration returns the media length.
func (s *MediaSource) Duration() time.Duration {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.duration
}

// OnEnded registers the end-of-media observer.
func (s *MediaSource) OnEnded(fn func()) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.onEnded = fn
}

// OnError registers the media error observer.
func (s *MediaSource) OnError(fn func(error)) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.onError = fn
}

// Close releases the source; observers are dropped.
func (s *MediaSource) Close() error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.closed = true
	s.paused = true
	s.onEnded = nil
	s.onError = nil
	return nil
}

// Closed reports whether Close was called.
func (s *MediaSource) Closed() bool {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.closed
}

// PlayCount returns how many Play requests succeeded.
func (s *MediaSource) PlayCount() int {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.plays
}

// Advance simulates playback progress while the source is playing.
func (s *MediaSource) Advance(d time.Duration) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if !s.paused && !s.closed {
		s.position = min(s.position+d, s.duration)
	}
}

// Finish simulates the media reaching its natural end and fires the ended observer.
func (s *MediaSource) Finish() {
	s.ctx.mu.Lock()
	if s.closed {
		s.ctx.mu.Unlock()
		return
	}
	s.position = s.duration
	s.paused = true
	fn := s.onEnded
	s.ctx.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Fail simulates a decode or network error and fires the error observer.
func (s *MediaSource) Fail(err error) {
	s.ctx.mu.Lock()
	if s.closed {
		s.ctx.mu.Unlock()
		return
	}
	s.paused = true
	fn := s.onError
	s.ctx.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}

var (
	_ ports.GainNode     = (*Gain)(nil)
	_ ports.AnalyserNode = (*Analyser)(nil)
	_ ports.MediaSource  = (*MediaSource)(nil)
)
