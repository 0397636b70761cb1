// Package mock provides an in-memory implementation of the AudioContext port.
// It records graph topology and simulates asynchronous platform completions so
// services can be tested deterministically without an audio device.
package mock

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// DefaultDuration is the media length reported for sources without an explicit duration.
const DefaultDuration = 3 * time.Minute

// Option configures a Context.
type Option func(*Context)

// WithSuspended starts the context in the suspended state, as a platform does before a user gesture.
func WithSuspended() Option {
	return func(c *Context) { c.state = ports.ContextSuspended }
}

// WithAutoComplete runs asynchronous completions on their own goroutine
// instead of queueing them for RunPending.
func WithAutoComplete() Option {
	return func(c *Context) { c.autoComplete = true }
}

// WithSampleRate sets the reported sample rate.
func WithSampleRate(rate int) Option {
	return func(c *Context) { c.sampleRate = rate }
}

// Context is a mock AudioContext.
//
// Thread-safety: This implementation is thread-safe. Observers and completions
// are always invoked without the internal lock held.
type Context struct {
	logger *slog.Logger

	mu           sync.Mutex
	state        ports.ContextState
	sampleRate   int
	autoComplete bool
	pending      []func()
	inflight     sync.WaitGroup

	destination *Node
	sources     []*MediaSource
	analysers   []*Analyser
	gains       []*Gain

	// scripted analyser output per channel
	signal [2][]byte

	durations map[string]time.Duration

	// Behavior configuration (for testing error scenarios)
	failResume error
	failPlay   error
	failSource error
}

// NewContext creates a running mock context.
func NewContext(logger *slog.Logger, opts ...Option) *Context {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Context{
		logger:     logger.With(slog.String("adapter", "mock-audio")),
		state:      ports.ContextRunning,
		sampleRate: 44100,
		durations:  make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.destination = &Node{ctx: c, kind: "destination"}
	return c
}

// SetFailResume makes subsequent Resume calls reject with err (nil to succeed).
func (c *Context) SetFailResume(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failResume = err
}

// SetFailPlay makes subsequent MediaSource.Play calls reject with err (nil to succeed).
func (c *Context) SetFailPlay(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failPlay = err
}

// SetFailSource makes NewMediaSource fail with err (nil to succeed).
func (c *Context) SetFailSource(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSource = err
}

// SetDuration sets the media length reported for sources created for uri.
func (c *Context) SetDuration(uri string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.durations[uri] = d
}

// SetSignal scripts the magnitudes analysers report while a source is playing.
func (c *Context) SetSignal(left, right []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signal[0] = append([]byte(nil), left...)
	c.signal[1] = append([]byte(nil), right...)
}

// State returns the current output state.
func (c *Context) State() ports.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SampleRate returns the configured sample rate.
func (c *Context) SampleRate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sampleRate
}

// Resume schedules the transition to running.
func (c *Context) Resume(done func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fail := c.failResume
	c.dispatchLocked(func() {
		c.mu.Lock()
		var err error
		switch {
		case c.state == ports.ContextClosed:
			err = domain.ErrContextClosed
		case fail != nil:
			err = fail
		default:
			c.state = ports.ContextRunning
		}
		c.mu.Unlock()
		done(err)
	})
}

// Close marks the context closed and closes every source it created.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.state == ports.ContextClosed {
		c.mu.Unlock()
		return domain.ErrContextClosed
	}
	c.state = ports.ContextClosed
	sources := append([]*MediaSource(nil), c.sources...)
	c.mu.Unlock()

	for _, s := range sources {
		_ = s.Close()
	}
	c.inflight.Wait()
	return nil
}

// Destination returns the terminal output node.
func (c *Context) Destination() ports.AudioNode {
	return c.destination
}

// NewGain creates a gain node with gain 1.0.
func (c *Context) NewGain() (ports.GainNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ports.ContextClosed {
		return nil, domain.ErrContextClosed
	}
	g := &Gain{Node: Node{ctx: c, kind: "gain", outputs: 1}, value: 1}
	c.gains = append(c.gains, g)
	return g, nil
}

// NewChannelSplitter creates a splitter with one output per channel.
func (c *Context) NewChannelSplitter(channels int) (ports.AudioNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ports.ContextClosed {
		return nil, domain.ErrContextClosed
	}
	if channels < 1 {
		return nil, fmt.Errorf("splitter needs at least one channel, got %d", channels)
	}
	return &Node{ctx: c, kind: "splitter", outputs: channels}, nil
}

// NewAnalyser creates an analyser sink.
func (c *Context) NewAnalyser(fftSize int) (ports.AnalyserNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ports.ContextClosed {
		return nil, domain.ErrContextClosed
	}
	a := &Analyser{Node: Node{ctx: c, kind: "analyser", input: -1}, fftSize: fftSize}
	c.analysers = append(c.analysers, a)
	return a, nil
}

// NewMediaSource creates a paused source positioned at zero.
func (c *Context) NewMediaSource(uri string) (ports.MediaSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ports.ContextClosed {
		return nil, domain.ErrContextClosed
	}
	if c.failSource != nil {
		return nil, c.failSource
	}

	d, ok := c.durations[uri]
	if !ok {
		d = DefaultDuration
	}
	s := &MediaSource{
		Node:     Node{ctx: c, kind: "source", outputs: 1},
		uri:      uri,
		duration: d,
		paused:   true,
	}
	c.sources = append(c.sources, s)
	return s, nil
}

// RunPending runs queued completions, including any they enqueue, and
// returns how many ran.
func (c *Context) RunPending() int {
	ran := 0
	for {
		c.mu.Lock()
		queue := c.pending
		c.pending = nil
		c.mu.Unlock()

		if len(queue) == 0 {
			return ran
		}
		for _, fn := range queue {
			fn()
			ran++
		}
	}
}

// PendingCount returns the number of queued completions.
func (c *Context) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Sources returns every source created so far, oldest first.
func (c *Context) Sources() []*MediaSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*MediaSource(nil), c.sources...)
}

// LastSource returns the most recently created source, or nil.
func (c *Context) LastSource() *MediaSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sources) == 0 {
		return nil
	}
	return c.sources[len(c.sources)-1]
}

// ConnectedSources counts sources that still have an outgoing connection.
func (c *Context) ConnectedSources() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sources {
		if len(s.conns) > 0 {
			n++
		}
	}
	return n
}

// Gains returns every gain node created so far.
func (c *Context) Gains() []*Gain {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Gain(nil), c.gains...)
}

// Analysers returns every analyser created so far.
func (c *Context) Analysers() []*Analyser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Analyser(nil), c.analysers...)
}

// dispatchLocked queues or launches fn. Caller must hold c.mu.
func (c *Context) dispatchLocked(fn func()) {
	if !c.autoComplete {
		c.pending = append(c.pending, fn)
		return
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn()
	}()
}

// audibleLocked reports whether any connected source is playing. Caller must hold c.mu.
func (c *Context) audibleLocked() bool {
	if c.state != ports.ContextRunning {
		return false
	}
	for _, s := range c.sources {
		if !s.closed && !s.paused && len(s.conns) > 0 {
			return true
		}
	}
	return false
}

var errForeignNode = errors.New("node belongs to another context")

var _ ports.AudioContext = (*Context)(nil)
