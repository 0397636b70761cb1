// Package beep provides a real AudioContext on top of faiface/beep.
//
// The graph is pull-based: the output driver pulls from the destination,
// which pulls from the connected gain node, which pulls from its media source
// and forwards every buffer to the splitters tapping it. Analysers keep a ring
// buffer of the most recent samples and run the transform on demand.
package beep

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// DefaultSampleRate is the output rate used when none is configured.
const DefaultSampleRate = 44100

// Option configures a Context.
type Option func(*Context)

// WithDriver replaces the speaker output driver.
func WithDriver(d OutputDriver) Option {
	return func(c *Context) { c.driver = d }
}

// WithSampleRate sets the output rate. Sources at other rates are resampled.
func WithSampleRate(rate int) Option {
	return func(c *Context) {
		if rate > 0 {
			c.rate = beep.SampleRate(rate)
		}
	}
}

// WithBufferDuration sets the output buffer length.
func WithBufferDuration(d time.Duration) Option {
	return func(c *Context) {
		if d > 0 {
			c.buffer = d
		}
	}
}

// WithHTTPClient sets the client used to fetch http(s) sources.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Context) { c.client = client }
}

// Context is an AudioContext backed by beep. It starts suspended; Resume
// claims the output device.
//
// Thread-safety: This implementation is thread-safe. Completions and media
// observers run on goroutines owned by the context and are joined by Close.
type Context struct {
	logger *slog.Logger
	driver OutputDriver
	rate   beep.SampleRate
	buffer time.Duration
	client *http.Client

	mu      sync.Mutex
	state   ports.ContextState
	sources []*MediaSource

	resumeMu sync.Mutex // serializes device start-up
	started  bool

	dest *destination
	wg   sync.WaitGroup
}

// NewContext creates a suspended context.
func NewContext(logger *slog.Logger, opts ...Option) *Context {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Context{
		logger: logger.With(slog.String("adapter", "beep-audio")),
		driver: SpeakerDriver{},
		rate:   DefaultSampleRate,
		buffer: 100 * time.Millisecond,
		client: &http.Client{Timeout: time.Minute},
		state:  ports.ContextSuspended,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.dest = &destination{ctx: c}
	return c
}

// State returns the current output state.
func (c *Context) State() ports.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SampleRate returns the output rate.
func (c *Context) SampleRate() int { return int(c.rate) }

// Resume starts the output device on a background goroutine.
func (c *Context) Resume(done func(error)) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case ports.ContextClosed:
		c.async(func() { done(domain.ErrContextClosed) })
	case ports.ContextRunning:
		c.async(func() { done(nil) })
	default:
		c.async(func() { done(c.start()) })
	}
}

func (c *Context) start() error {
	c.resumeMu.Lock()
	defer c.resumeMu.Unlock()

	if !c.started {
		if err := c.driver.Init(c.rate, c.rate.N(c.buffer)); err != nil {
			c.logger.Warn("failed to initialize output", slog.Any("error", err))
			return fmt.Errorf("init output: %w", err)
		}
		c.driver.Play(c.dest)
		c.started = true
		c.logger.Debug("output started", slog.Int("sample_rate", int(c.rate)))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ports.ContextClosed {
		return domain.ErrContextClosed
	}
	c.state = ports.ContextRunning
	return nil
}

// Close stops the output, closes every source and waits for context goroutines.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.state == ports.ContextClosed {
		c.mu.Unlock()
		return domain.ErrContextClosed
	}
	c.state = ports.ContextClosed
	sources := c.sources
	c.sources = nil
	c.mu.Unlock()

	var errs []error
	for _, s := range sources {
		errs = append(errs, s.Close())
	}

	c.resumeMu.Lock()
	if c.started {
		c.driver.Close()
	}
	c.resumeMu.Unlock()

	c.wg.Wait()
	c.logger.Debug("audio context closed")
	return errors.Join(errs...)
}

// Destination returns the output node.
func (c *Context) Destination() ports.AudioNode { return c.dest }

// NewGain creates a gain node with unity gain.
func (c *Context) NewGain() (ports.GainNode, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return &Gain{ctx: c, value: 1}, nil
}

// NewChannelSplitter creates a splitter with one output per channel. Beep
// streams are stereo, so at most two channels are supported.
func (c *Context) NewChannelSplitter(channels int) (ports.AudioNode, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("splitter supports 1 or 2 channels, got %d", channels)
	}
	return &Splitter{ctx: c, channels: channels}, nil
}

// NewAnalyser creates an analyser with the given transform size.
func (c *Context) NewAnalyser(fftSize int) (ports.AnalyserNode, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return newAnalyser(c, fftSize)
}

// NewMediaSource starts decoding uri in the background and returns a paused source.
func (c *Context) NewMediaSource(uri string) (ports.MediaSource, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if _, err := formatOf(uri); err != nil {
		return nil, err
	}

	s := newMediaSource(c, uri)

	c.mu.Lock()
	if c.state == ports.ContextClosed {
		c.mu.Unlock()
		return nil, domain.ErrContextClosed
	}
	c.sources = append(c.sources, s)
	c.mu.Unlock()

	c.async(s.load)
	return s, nil
}

// forget drops a closed source from the bookkeeping list.
func (c *Context) forget(s *MediaSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.sources {
		if existing == s {
			c.sources = append(c.sources[:i:i], c.sources[i+1:]...)
			return
		}
	}
}

func (c *Context) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ports.ContextClosed {
		return domain.ErrContextClosed
	}
	return nil
}

// async runs fn on a goroutine joined by Close.
func (c *Context) async(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

var _ ports.AudioContext = (*Context)(nil)
