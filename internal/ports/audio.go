// Package ports define interfaces for dependency inversion.
// These interfaces allow the pipeline to remain independent of the audio backend and UI toolkit.
package ports

import (
	"time"
)

// ContextState is the lifecycle state of an AudioContext.
type ContextState int

const (
	// ContextSuspended means output is halted until Resume completes (e.g. no audio device claimed yet)
	ContextSuspended ContextState = iota

	// ContextRunning means the destination is pulling audio
	ContextRunning

	// ContextClosed means the context has been released and can no longer create nodes
	ContextClosed
)

// String returns a human-readable representation of the context state.
func (s ContextState) String() string {
	switch s {
	case ContextSuspended:
		return "suspended"
	case ContextRunning:
		return "running"
	case ContextClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// AudioContext is the platform audio output and node factory.
// One context is created per session, injected into the graph manager and closed once on teardown.
//
// Implementations must be thread-safe. Asynchronous completions (Resume, MediaSource.Play)
// may be invoked on any goroutine, but never while the caller's method is still on the stack.
type AudioContext interface {
	// Lifecycle methods

	// State returns the current output state.
	State() ContextState

	// Resume asks the platform to start output. done is called exactly once
	// with nil on success or the rejection error.
	Resume(done func(error))

	// Close releases the output device. Further node creation fails.
	Close() error

	// SampleRate returns the output sample rate in Hz.
	SampleRate() int

	// Node factories

	// Destination returns the terminal output node.
	Destination() AudioNode

	// NewGain creates a gain (volume) stage with gain 1.0.
	NewGain() (GainNode, error)

	// NewChannelSplitter creates a node whose outputs are the individual input channels.
	// Output index 0 is left, 1 is right.
	NewChannelSplitter(channels int) (AudioNode, error)

	// NewAnalyser creates a spectral analysis node with the given transform size.
	NewAnalyser(fftSize int) (AnalyserNode, error)

	// NewMediaSource creates a source node for the given locator (file path or URL).
	// Loading may continue asynchronously; failures after return arrive on OnError.
	NewMediaSource(source string) (MediaSource, error)
}

// AudioNode is a vertex of the signal graph.
type AudioNode interface {
	// Connect routes the node's output to dst. For splitters, output selects the channel;
	// other nodes only have output 0.
	//
	// Returns an error if either node belongs to a closed context or the output is out of range.
	Connect(dst AudioNode, output int) error

	// Disconnect removes every outgoing connection of this node.
	Disconnect()
}

// GainNode scales its input by a scalar.
type GainNode interface {
	AudioNode

	// SetGain sets the multiplier (0.0 silent to 1.0 unity).
	SetGain(value float64)

	// Gain returns the current multiplier.
	Gain() float64
}

// AnalyserNode exposes the current magnitude-per-bin snapshot of its input.
// Analysers are sinks: they never forward audio.
type AnalyserNode interface {
	AudioNode

	// FFTSize returns the transform size (a power of two).
	FFTSize() int

	// FrequencyBinCount returns FFTSize()/2.
	FrequencyBinCount() int

	// ByteFrequencyData copies the latest magnitudes, quantized to [0,255], into dst.
	// At most min(len(dst), FrequencyBinCount()) bytes are written.
	ByteFrequencyData(dst []byte)
}

// MediaSource is a per-track source node bound to one media locator.
type MediaSource interface {
	AudioNode

	// Play starts or resumes the media. done is called exactly once with nil when
	// playback has started or with the rejection error.
	Play(done func(error))

	// Pause halts the media and keeps the position.
	Pause()

	// Paused reports whether the media is currently halted.
	Paused() bool

	// CurrentTime returns the playback position.
	CurrentTime() time.Duration

	// SetCurrentTime moves the playback position. Values are clamped to [0, Duration].
	SetCurrentTime(position time.Duration)

	// Duration returns the media length, or 0 while unknown.
	Duration() time.Duration

	// OnEnded registers the natural end-of-media observer, replacing any previous one.
	OnEnded(fn func())

	// OnError registers the media error observer, replacing any previous one.
	OnError(fn func(error))

	// Close releases decoder resources. A closed source never fires observers.
	Close() error
}
