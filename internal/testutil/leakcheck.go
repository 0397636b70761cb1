// Package testutil provides testing utilities for the spectrotune packages.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks should be deferred at the start of tests that spawn goroutines
// (sampler ticks, progress reporting, audio output drivers).
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, opts...)
}

// IgnoreFyneGoroutines returns goleak options to ignore known Fyne framework goroutines.
// Use this when testing components that use Fyne.
func IgnoreFyneGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("fyne.io/fyne/v2/internal/driver/glfw.(*gLDriver).runGL.func1"),
		goleak.IgnoreTopFunction("fyne.io/fyne/v2/internal/animation.(*Runner).runAnimations"),
		goleak.IgnoreAnyFunction("fyne.io/fyne/v2"),
	}
}

// IgnoreSpeakerGoroutines returns goleak options for the beep speaker and oto player loops,
// which live for the whole process once initialized.
func IgnoreSpeakerGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("github.com/faiface/beep/speaker"),
		goleak.IgnoreAnyFunction("github.com/hajimehoshi/oto"),
	}
}
