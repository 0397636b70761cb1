package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// DefaultPollInterval is the sampler cadence used when none is configured.
const DefaultPollInterval = 50 * time.Millisecond

// Sampler polls the left and right analysers at a fixed interval while active
// and publishes each reading as a FrequencySnapshotEvent.
//
// The playback service activates it on every transition into Playing and
// deactivates it on every transition out. Once Stop returns, Tick produces
// nothing until the next Start.
type Sampler struct {
	logger      *slog.Logger
	bus         ports.EventBus
	left, right ports.AnalyserNode
	task        *periodicTask

	mu       sync.Mutex
	active   bool
	epoch    uint64
	sequence uint64
	latest   domain.FrequencySnapshot
	hasData  bool
}

// NewSampler creates an inactive sampler.
func NewSampler(logger *slog.Logger, bus ports.EventBus, left, right ports.AnalyserNode, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s := &Sampler{
		logger: logger.With(slog.String("service", "sampler")),
		bus:    bus,
		left:   left,
		right:  right,
	}
	s.task = newPeriodicTask(interval, func() { s.Tick() })
	return s
}

// Start opens the gate and starts the timer.
func (s *Sampler) Start() {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	if s.task.Start() {
		s.logger.Debug("sampler started")
	}
}

// Stop closes the gate and stops the timer. A Tick already reading when Stop
// is called finishes first; no later Tick produces a snapshot. Snapshots
// taken before Stop report themselves as no longer current.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if s.active {
		s.epoch++
	}
	s.active = false
	s.mu.Unlock()

	if s.task.Stop() {
		s.logger.Debug("sampler stopped")
	}
}

// Close stops the sampler and waits for its timer goroutine to exit.
func (s *Sampler) Close() {
	s.Stop()
	s.task.Wait()
}

// Active reports whether the gate is open.
func (s *Sampler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Tick reads both analysers and publishes the snapshot. It is a no-op while
// inactive and reports whether a snapshot was produced.
func (s *Sampler) Tick() bool {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return false
	}

	left := make([]byte, s.left.FrequencyBinCount())
	right := make([]byte, s.right.FrequencyBinCount())
	s.left.ByteFrequencyData(left)
	s.right.ByteFrequencyData(right)

	s.sequence++
	snap := domain.FrequencySnapshot{
		Left:      left,
		Right:     right,
		Sequence:  s.sequence,
		Epoch:     s.epoch,
		Timestamp: time.Now(),
	}
	s.latest = snap
	s.hasData = true
	s.mu.Unlock()

	s.bus.Publish(domain.NewSampledSnapshotEvent(snap, s.Current))
	return true
}

// Current reports whether epoch is the running sampling session.
func (s *Sampler) Current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && epoch == s.epoch
}

// Latest returns the most recent snapshot, if any was produced.
func (s *Sampler) Latest() (domain.FrequencySnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasData
}
