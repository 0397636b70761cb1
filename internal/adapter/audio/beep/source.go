package beep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// resampleQuality is passed to beep.Resample when the media rate differs from the output rate.
const resampleQuality = 4

// MediaSource decodes one media file and streams it into a gain node.
// Decoding starts on creation; Play before decoding finishes waits for it.
type MediaSource struct {
	ctx *Context
	uri string

	ready  chan struct{} // closed when decoding finished, successfully or not
	done   chan struct{} // closed by Close
	cancel context.CancelFunc

	mu          sync.Mutex
	seeker      beep.StreamSeekCloser
	out         beep.Streamer // seeker, resampled to the output rate if needed
	format      beep.Format
	decodeErr   error
	playing     bool
	ended       bool
	closed      bool
	pendingSeek time.Duration
	gain        *Gain
	onEnded     func()
	onError     func(error)
}

func newMediaSource(c *Context, uri string) *MediaSource {
	return &MediaSource{
		ctx:   c,
		uri:   uri,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// load opens and decodes the media. Runs on a context goroutine.
func (s *MediaSource) load() {
	defer close(s.ready)

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	seeker, format, err := s.decode(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if seeker != nil {
			_ = seeker.Close()
		}
		return
	}
	if err != nil {
		s.decodeErr = err
		notify := s.onError
		s.mu.Unlock()

		s.ctx.logger.Warn("failed to decode media", slog.String("source", s.uri), slog.Any("error", err))
		if notify != nil {
			notify(err)
		}
		return
	}

	s.seeker = seeker
	s.format = format
	if s.pendingSeek > 0 {
		if err := seeker.Seek(min(format.SampleRate.N(s.pendingSeek), seeker.Len())); err != nil {
			s.ctx.logger.Debug("initial seek failed", slog.Any("error", err))
		}
	}
	s.rebuildLocked()
	s.mu.Unlock()

	s.ctx.logger.Debug("media decoded",
		slog.String("source", s.uri),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Duration("duration", format.SampleRate.D(seeker.Len())))
}

func (s *MediaSource) decode(ctx context.Context) (beep.StreamSeekCloser, beep.Format, error) {
	ext, err := formatOf(s.uri)
	if err != nil {
		return nil, beep.Format{}, err
	}
	rc, err := s.ctx.open(ctx, s.uri)
	if err != nil {
		return nil, beep.Format{}, errors.Join(domain.ErrMediaUnavailable, fmt.Errorf("open media: %w", err))
	}
	seeker, format, err := decode(rc, ext)
	if err != nil {
		_ = rc.Close()
		return nil, beep.Format{}, errors.Join(domain.ErrUnsupportedFormat, err)
	}
	return seeker, format, nil
}

// rebuildLocked recreates the output-rate stream after a seek. Caller must hold s.mu.
func (s *MediaSource) rebuildLocked() {
	if s.format.SampleRate == s.ctx.rate {
		s.out = s.seeker
		return
	}
	s.out = beep.Resample(resampleQuality, s.format.SampleRate, s.ctx.rate, s.seeker)
}

// Connect routes the source into a gain node.
func (s *MediaSource) Connect(dst ports.AudioNode, output int) error {
	if output != 0 {
		return fmt.Errorf("media source has no output %d", output)
	}
	g, ok := dst.(*Gain)
	if !ok {
		return fmt.Errorf("media source to %T: %w", dst, errUnsupportedDst)
	}
	if g.ctx != s.ctx {
		return errForeignNode
	}
	if err := g.attach(s); err != nil {
		return err
	}
	s.mu.Lock()
	s.gain = g
	s.mu.Unlock()
	return nil
}

// Disconnect detaches the source from its gain node.
func (s *MediaSource) Disconnect() {
	s.mu.Lock()
	g := s.gain
	s.gain = nil
	s.mu.Unlock()
	if g != nil {
		g.detach(s)
	}
}

// Play starts output once decoding has finished. A source that reached its
// end restarts from zero.
func (s *MediaSource) Play(done func(error)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.ctx.async(func() { done(domain.ErrContextClosed) })
		return
	}
	s.mu.Unlock()

	s.ctx.async(func() {
		select {
		case <-s.ready:
		case <-s.done:
		}

		s.mu.Lock()
		var err error
		switch {
		case s.closed:
			err = domain.ErrContextClosed
		case s.decodeErr != nil:
			err = s.decodeErr
		default:
			if s.ended {
				s.seekLocked(0)
			}
			s.playing = true
		}
		s.mu.Unlock()
		done(err)
	})
}

// Pause halts output and keeps the position.
func (s *MediaSource) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

// Paused reports whether output is halted.
func (s *MediaSource) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.playing
}

// CurrentTime returns the playback position.
func (s *MediaSource) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeker == nil {
		return s.pendingSeek
	}
	return s.format.SampleRate.D(s.seeker.Position())
}

// SetCurrentTime seeks, clamped to [0, Duration]. Before decoding finishes the
// position is applied once the media is ready.
func (s *MediaSource) SetCurrentTime(position time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(max(position, 0))
}

func (s *MediaSource) seekLocked(position time.Duration) {
	if s.seeker == nil {
		s.pendingSeek = position
		return
	}
	n := min(s.format.SampleRate.N(position), s.seeker.Len())
	if err := s.seeker.Seek(n); err != nil {
		s.ctx.logger.Debug("seek failed", slog.String("source", s.uri), slog.Any("error", err))
		return
	}
	s.ended = false
	s.rebuildLocked()
}

// Duration returns the media length, or zero until decoding finishes.
func (s *MediaSource) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeker == nil {
		return 0
	}
	return s.format.SampleRate.D(s.seeker.Len())
}

// OnEnded registers the end-of-media observer.
func (s *MediaSource) OnEnded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = fn
}

// OnError registers the media error observer.
func (s *MediaSource) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

// Close stops decoding and output and releases the media.
func (s *MediaSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.playing = false
	s.onEnded = nil
	s.onError = nil
	close(s.done)
	if s.cancel != nil {
		s.cancel()
	}
	seeker := s.seeker
	s.seeker, s.out = nil, nil
	s.mu.Unlock()

	s.Disconnect()
	s.ctx.forget(s)
	if seeker != nil {
		return seeker.Close()
	}
	return nil
}

// stream fills samples from the media, or silence while paused. Reaching the
// end or a stream error pauses the source and notifies the observer.
func (s *MediaSource) stream(samples [][2]float64) {
	s.mu.Lock()
	if !s.playing || s.out == nil {
		s.mu.Unlock()
		clear(samples)
		return
	}

	n, ok := s.out.Stream(samples)
	clear(samples[n:])
	if ok && n == len(samples) {
		s.mu.Unlock()
		return
	}

	s.playing = false
	var notify func()
	if err := s.seeker.Err(); err != nil {
		if fn := s.onError; fn != nil {
			notify = func() { fn(err) }
		}
	} else {
		s.ended = true
		notify = s.onEnded
	}
	s.mu.Unlock()

	// never call back on the output goroutine
	if notify != nil {
		s.ctx.async(notify)
	}
}

var _ ports.MediaSource = (*MediaSource)(nil)
