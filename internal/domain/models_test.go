package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrack_DisplayName(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  string
	}{
		{"both", Track{Artist: "Nina", Song: "Sinnerman", Source: "a.mp3"}, "Nina - Sinnerman"},
		{"song only", Track{Song: "Sinnerman", Source: "a.mp3"}, "Sinnerman"},
		{"artist only", Track{Artist: "Nina", Source: "a.mp3"}, "Nina"},
		{"source fallback", Track{Source: "a.mp3"}, "a.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.track.DisplayName())
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", FormatDuration(0))
	assert.Equal(t, "00:00", FormatDuration(-time.Second))
	assert.Equal(t, "03:07", FormatDuration(3*time.Minute+7*time.Second+900*time.Millisecond))
	assert.Equal(t, "59:59", FormatDuration(time.Hour-time.Second))
	assert.Equal(t, "1:02:03", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "playing", StatusPlaying.String())
	assert.Equal(t, "paused", StatusPaused.String())
	assert.Equal(t, "stopped", StatusStopped.String())
	assert.Equal(t, "ready", CatalogReady.String())
	assert.Equal(t, "right", ChannelRight.String())
	assert.Equal(t, "left", ChannelLeft.String())
}

func TestFrame_Band(t *testing.T) {
	frame := Frame{Channels: map[Channel][]BandSeries{
		ChannelLeft: {{Band: "low", Display: []float64{1}}, {Band: "mid", Display: []float64{2}}},
	}}

	b, ok := frame.Band(ChannelLeft, "mid")
	assert.True(t, ok)
	assert.Equal(t, []float64{2}, b.Display)

	_, ok = frame.Band(ChannelRight, "mid")
	assert.False(t, ok)
}

func TestErrorsUnwrap(t *testing.T) {
	graphErr := NewAudioGraphError("play", "a.mp3", ErrPlaybackRejected)
	assert.ErrorIs(t, graphErr, ErrPlaybackRejected)
	assert.Contains(t, graphErr.Error(), "a.mp3")

	svcErr := NewServiceError("PlaybackService", "new", "failed", graphErr)
	var target *AudioGraphError
	assert.True(t, errors.As(svcErr, &target))

	catErr := NewCatalogError("fetch", "http://x/tracks.json", ErrCatalogUnavailable)
	assert.ErrorIs(t, catErr, ErrCatalogUnavailable)

	valErr := NewValidationError("FFTSize", 100, "must be a power of two")
	assert.Contains(t, valErr.Error(), "FFTSize")
}
