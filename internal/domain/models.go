// Package domain contains core models and logic with no external dependencies.
// This package defines the fundamental entities of the spectrotune player.
package domain

import (
	"fmt"
	"time"
)

// Track represents a single playable item from the catalog.
// Display metadata is owned by the catalog; playback only needs Source.
type Track struct {
	// ID is a unique identifier for the track
	ID string

	// Artist is the performing artist name
	Artist string

	// Song is the song title
	Song string

	// Source is the locator of the media (file path or http(s) URL)
	Source string

	// Duration is the catalog-declared length of the track
	Duration time.Duration
}

// DisplayName returns "Artist - Song", falling back to whichever part is present.
func (t Track) DisplayName() string {
	switch {
	case t.Artist != "" && t.Song != "":
		return t.Artist + " - " + t.Song
	case t.Song != "":
		return t.Song
	case t.Artist != "":
		return t.Artist
	default:
		return t.Source
	}
}

// FormatDuration renders d as mm:ss, or h:mm:ss from one hour up.
// Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	total := int(max(d, 0) / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	// StatusStopped indicates playback is stopped (position reset to zero)
	StatusStopped PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused and keeps its position
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState is the read-only view of the transport exposed to UIs.
type PlaybackState struct {
	// Track is the current track (nil if none)
	Track *Track

	// Status is the current playback status
	Status PlaybackStatus

	// CurrentTime is the playback position within the track
	CurrentTime time.Duration

	// Duration is the length reported by the media (falls back to the catalog value)
	Duration time.Duration

	// Volume is the gain level (0.0 to 1.0)
	Volume float64
}

// IsPlaying reports whether the status is Playing.
func (s PlaybackState) IsPlaying() bool { return s.Status == StatusPlaying }

// IsPaused reports whether the status is Paused.
func (s PlaybackState) IsPaused() bool { return s.Status == StatusPaused }

// Channel identifies one side of the stereo split.
type Channel int

const (
	ChannelLeft Channel = iota
	ChannelRight
)

// String returns "left" or "right".
func (c Channel) String() string {
	if c == ChannelRight {
		return "right"
	}
	return "left"
}

// FrequencySnapshot is one sample of byte-range magnitudes per channel.
// Both slices have FFTSize/2 elements. Epoch identifies the sampling session
// that produced it; it changes every time the sampler stops.
type FrequencySnapshot struct {
	Left      []byte
	Right     []byte
	Sequence  uint64
	Epoch     uint64
	Timestamp time.Time
}

// IsEmpty reports whether the snapshot carries no bins.
func (s FrequencySnapshot) IsEmpty() bool {
	return len(s.Left) == 0 && len(s.Right) == 0
}

// BandSeries is the renderer-facing data of one channel sub-band.
// Display values lie in [0,100]; Ratio values lie in the processor's clamp range.
type BandSeries struct {
	Band    string
	Display []float64
	Ratio   []float64
}

// Frame is the complete data handed to a renderer for one visualization frame.
type Frame struct {
	Style    string
	Sequence uint64
	Channels map[Channel][]BandSeries
}

// Band returns the series for the given channel and band name.
func (f Frame) Band(ch Channel, name string) (BandSeries, bool) {
	for _, b := range f.Channels[ch] {
		if b.Band == name {
			return b, true
		}
	}
	return BandSeries{}, false
}

// CatalogStatus describes the loading state of the track catalog.
type CatalogStatus int

const (
	CatalogIdle CatalogStatus = iota
	CatalogLoading
	CatalogReady
	CatalogFailed
)

// String returns a human-readable representation of the catalog status.
func (s CatalogStatus) String() string {
	switch s {
	case CatalogIdle:
		return "idle"
	case CatalogLoading:
		return "loading"
	case CatalogReady:
		return "ready"
	case CatalogFailed:
		return "failed"
	default:
		return "unknown"
	}
}
