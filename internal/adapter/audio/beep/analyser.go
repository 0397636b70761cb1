package beep

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// Analyser defaults, matching common browser analyser settings.
const (
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// Analyser keeps the last FFTSize samples of one channel and converts them to
// byte magnitudes on request: Blackman window, real FFT, time smoothing, then
// decibels mapped linearly from [MinDB, MaxDB] to [0, 255].
type Analyser struct {
	ctx  *Context
	size int

	smoothing    float64
	minDB, maxDB float64

	mu     sync.Mutex
	ring   []float64
	pos    int
	coeffs []float64
	frame  []float64
	prev   []float64
}

func newAnalyser(c *Context, fftSize int) (*Analyser, error) {
	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d is not a power of two", fftSize)
	}
	return &Analyser{
		ctx:       c,
		size:      fftSize,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
		ring:      make([]float64, fftSize),
		coeffs:    window.Blackman(fftSize),
		frame:     make([]float64, fftSize),
		prev:      make([]float64, fftSize/2),
	}, nil
}

// Connect always fails: analysers are sinks.
func (a *Analyser) Connect(dst ports.AudioNode, _ int) error {
	return fmt.Errorf("analyser to %T: %w", dst, errUnsupportedDst)
}

// Disconnect is a no-op.
func (a *Analyser) Disconnect() {}

// FFTSize returns the transform size.
func (a *Analyser) FFTSize() int { return a.size }

// FrequencyBinCount returns FFTSize/2.
func (a *Analyser) FrequencyBinCount() int { return a.size / 2 }

// ByteFrequencyData writes the current magnitudes into dst.
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.size {
		a.frame[i] = a.ring[(a.pos+i)%a.size] * a.coeffs[i]
	}
	spectrum := fft.FFTReal(a.frame)

	scale := 255 / (a.maxDB - a.minDB)
	n := min(len(dst), len(a.prev))
	for k := range a.prev {
		mag := cmplx.Abs(spectrum[k]) / float64(a.size)
		a.prev[k] = a.smoothing*a.prev[k] + (1-a.smoothing)*mag
		if k >= n {
			continue
		}
		if a.prev[k] == 0 {
			dst[k] = 0
			continue
		}
		db := 20 * math.Log10(a.prev[k])
		dst[k] = byte(max(0, min(255, (db-a.minDB)*scale)))
	}
}

// write appends channel samples to the ring buffer.
func (a *Analyser) write(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(samples) >= a.size {
		copy(a.ring, samples[len(samples)-a.size:])
		a.pos = 0
		return
	}
	for _, v := range samples {
		a.ring[a.pos] = v
		a.pos = (a.pos + 1) % a.size
	}
}

var _ ports.AnalyserNode = (*Analyser)(nil)
