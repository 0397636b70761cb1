package mock

import (
	"errors"
	"testing"
	"time"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
	"github.com/tejashwikalptaru/spectrotune/internal/testutil"
)

// TestResumeIsDeferred tests that Resume completes only when pending work runs.
func TestResumeIsDeferred(t *testing.T) {
	ctx := NewContext(nil, WithSuspended())

	var result error = errors.New("not called")
	ctx.Resume(func(err error) { result = err })

	if ctx.State() != ports.ContextSuspended {
		t.Fatalf("Expected suspended before completion, got %s", ctx.State())
	}
	if ran := ctx.RunPending(); ran != 1 {
		t.Errorf("Expected 1 completion, got %d", ran)
	}
	if result != nil {
		t.Errorf("Expected successful resume, got %v", result)
	}
	if ctx.State() != ports.ContextRunning {
		t.Errorf("Expected running after resume, got %s", ctx.State())
	}
}

// TestPlayFailureSampledAtCallTime tests the play failure switch.
func TestPlayFailureSampledAtCallTime(t *testing.T) {
	ctx := NewContext(nil)
	src, err := ctx.NewMediaSource("a.mp3")
	if err != nil {
		t.Fatalf("NewMediaSource failed: %v", err)
	}

	rejected := errors.New("autoplay blocked")
	ctx.SetFailPlay(rejected)

	var got error
	src.Play(func(err error) { got = err })
	ctx.SetFailPlay(nil)
	ctx.RunPending()

	if !errors.Is(got, rejected) {
		t.Errorf("Expected rejection, got %v", got)
	}
	if !src.Paused() {
		t.Error("Rejected source should stay paused")
	}
}

// TestSourcePositionClamping tests SetCurrentTime bounds.
func TestSourcePositionClamping(t *testing.T) {
	ctx := NewContext(nil)
	ctx.SetDuration("short.wav", 10*time.Second)
	src, _ := ctx.NewMediaSource("short.wav")

	src.SetCurrentTime(15 * time.Second)
	if src.CurrentTime() != 10*time.Second {
		t.Errorf("Expected clamp to 10s, got %v", src.CurrentTime())
	}
	src.SetCurrentTime(-time.Second)
	if src.CurrentTime() != 0 {
		t.Errorf("Expected clamp to 0, got %v", src.CurrentTime())
	}
}

// TestAnalyserFollowsTopology tests that analysers only report signal when wired and audible.
func TestAnalyserFollowsTopology(t *testing.T) {
	ctx := NewContext(nil)
	ctx.SetSignal([]byte{10, 20}, []byte{30, 40})

	gain, _ := ctx.NewGain()
	splitter, _ := ctx.NewChannelSplitter(2)
	right, _ := ctx.NewAnalyser(4)
	src, _ := ctx.NewMediaSource("a.mp3")

	if err := gain.Connect(splitter, 0); err != nil {
		t.Fatalf("connect gain: %v", err)
	}
	if err := splitter.Connect(right, 1); err != nil {
		t.Fatalf("connect splitter: %v", err)
	}
	if err := src.Connect(gain, 0); err != nil {
		t.Fatalf("connect source: %v", err)
	}

	buf := make([]byte, 2)
	right.ByteFrequencyData(buf)
	if buf[0] != 0 || buf[1] != 0 {
		t.Errorf("Paused source should be silent, got %v", buf)
	}

	src.Play(func(error) {})
	ctx.RunPending()
	right.ByteFrequencyData(buf)
	if buf[0] != 30 || buf[1] != 40 {
		t.Errorf("Expected right channel [30 40], got %v", buf)
	}

	src.Disconnect()
	right.ByteFrequencyData(buf)
	if buf[0] != 0 {
		t.Errorf("Disconnected source should be silent, got %v", buf)
	}
	if ctx.ConnectedSources() != 0 {
		t.Errorf("Expected no connected sources, got %d", ctx.ConnectedSources())
	}
}

// TestConnectValidation tests output range and foreign-node checks.
func TestConnectValidation(t *testing.T) {
	ctx := NewContext(nil)
	other := NewContext(nil)

	splitter, _ := ctx.NewChannelSplitter(2)
	a, _ := ctx.NewAnalyser(32)
	foreign, _ := other.NewAnalyser(32)

	if err := splitter.Connect(a, 2); err == nil {
		t.Error("Expected error for missing splitter output")
	}
	if err := splitter.Connect(foreign, 0); err == nil {
		t.Error("Expected error for node of another context")
	}
}

// TestFinishAndClose tests observers and their removal on Close.
func TestFinishAndClose(t *testing.T) {
	ctx := NewContext(nil)
	_, err := ctx.NewMediaSource("a.mp3")
	if err != nil {
		t.Fatalf("NewMediaSource failed: %v", err)
	}
	src := ctx.LastSource()

	var ended int
	src.OnEnded(func() { ended++ })
	src.Finish()
	if ended != 1 {
		t.Errorf("Expected ended once, got %d", ended)
	}

	_ = src.Close()
	src.Finish()
	if ended != 1 {
		t.Errorf("Closed source must not fire observers, got %d", ended)
	}

	if err := ctx.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if _, err := ctx.NewGain(); !errors.Is(err, domain.ErrContextClosed) {
		t.Errorf("Expected ErrContextClosed, got %v", err)
	}
}

// TestAutoComplete tests goroutine-dispatched completions and their cleanup.
func TestAutoComplete(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	ctx := NewContext(nil, WithAutoComplete(), WithSuspended())
	done := make(chan error, 1)
	ctx.Resume(func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Unexpected resume error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Resume never completed")
	}
	_ = ctx.Close()
}
