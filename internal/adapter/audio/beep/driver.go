package beep

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// OutputDriver pushes the graph's destination to an audio device.
type OutputDriver interface {
	// Init claims the device at rate with a buffer of bufferSize samples.
	Init(rate beep.SampleRate, bufferSize int) error

	// Play starts pulling from s. It is called once, after a successful Init.
	Play(s beep.Streamer)

	// Close stops pulling.
	Close()
}

// SpeakerDriver drives the default output device through beep's speaker package.
type SpeakerDriver struct{}

// Init initializes the speaker.
func (SpeakerDriver) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

// Play hands s to the speaker mixer.
func (SpeakerDriver) Play(s beep.Streamer) {
	speaker.Play(s)
}

// Close removes every streamer from the speaker.
func (SpeakerDriver) Close() {
	speaker.Clear()
}

// NullDriver consumes the destination without a device. With a positive
// interval it pulls one buffer per interval on its own goroutine, so playback
// advances in real time; otherwise samples move only through Pull.
type NullDriver struct {
	interval time.Duration

	mu         sync.Mutex
	streamer   beep.Streamer
	bufferSize int
	stop       chan struct{}
	wg         sync.WaitGroup
}

// NewNullDriver creates a device-less driver.
func NewNullDriver(interval time.Duration) *NullDriver {
	return &NullDriver{interval: interval}
}

// Init records the buffer size.
func (d *NullDriver) Init(_ beep.SampleRate, bufferSize int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bufferSize = bufferSize
	return nil
}

// Play starts the pull loop when an interval is configured.
func (d *NullDriver) Play(s beep.Streamer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.streamer = s
	if d.interval <= 0 || d.stop != nil {
		return
	}
	d.stop = make(chan struct{})
	d.wg.Add(1)
	go d.run(d.stop)
}

// Pull streams n samples from the destination and returns them.
func (d *NullDriver) Pull(n int) [][2]float64 {
	d.mu.Lock()
	s := d.streamer
	d.mu.Unlock()

	samples := make([][2]float64, n)
	if s != nil {
		s.Stream(samples)
	}
	return samples
}

// Close stops the pull loop and waits for it.
func (d *NullDriver) Close() {
	d.mu.Lock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *NullDriver) run(stop <-chan struct{}) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.mu.Lock()
			n := d.bufferSize
			d.mu.Unlock()
			if n > 0 {
				d.Pull(n)
			}
		}
	}
}

var (
	_ OutputDriver = SpeakerDriver{}
	_ OutputDriver = (*NullDriver)(nil)
)
