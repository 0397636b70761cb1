// Package domain defines events for the event-driven architecture.
// Events decouple the audio pipeline from the UI hosts that observe it.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackLoaded    EventType = "track.loaded"
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackCompleted EventType = "track.completed"
	EventTrackProgress  EventType = "track.progress"
	EventTrackError     EventType = "track.error"

	// Volume events
	EventVolumeChanged EventType = "volume.changed"

	// Visualization events
	EventFrequencySnapshot EventType = "spectrum.snapshot"
	EventFrameReady        EventType = "spectrum.frame"
	EventStyleChanged      EventType = "spectrum.style"

	// Catalog events
	EventCatalogLoading EventType = "catalog.loading"
	EventCatalogLoaded  EventType = "catalog.loaded"
	EventCatalogError   EventType = "catalog.error"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackLoadedEvent is published when a track's source has been wired into the graph.
type TrackLoadedEvent struct {
	baseEvent
	Track    Track
	Duration time.Duration
}

// Type returns the event type.
func (e TrackLoadedEvent) Type() EventType {
	return EventTrackLoaded
}

// NewTrackLoadedEvent creates a new TrackLoadedEvent.
func NewTrackLoadedEvent(track Track, duration time.Duration) TrackLoadedEvent {
	return TrackLoadedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Duration:  duration,
	}
}

// TrackStartedEvent is published once the platform confirms playback started.
type TrackStartedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    Track
	Position time.Duration
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType {
	return EventTrackPaused
}

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track Track, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Position:  position,
	}
}

// TrackStoppedEvent is published when playback is stopped by the user.
type TrackStoppedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType {
	return EventTrackStopped
}

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(track Track) TrackStoppedEvent {
	return TrackStoppedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackCompletedEvent is published when the media reaches its natural end.
type TrackCompletedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType {
	return EventTrackCompleted
}

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(track Track) TrackCompletedEvent {
	return TrackCompletedEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
	}
}

// TrackProgressEvent is published periodically during playback and after a seek.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType {
	return EventTrackProgress
}

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// TrackErrorEvent is published when loading or starting a track fails.
type TrackErrorEvent struct {
	baseEvent
	Track Track
	Err   error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType {
	return EventTrackError
}

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track Track, err error) TrackErrorEvent {
	return TrackErrorEvent{
		baseEvent: newBaseEvent(),
		Track:     track,
		Err:       err,
	}
}

// VolumeChangedEvent is published when the gain level changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// FrequencySnapshotEvent carries a freshly sampled snapshot.
type FrequencySnapshotEvent struct {
	baseEvent
	Snapshot FrequencySnapshot
	live     func(epoch uint64) bool
}

// Current reports whether the sampling session that produced the snapshot is
// still running. Delivery is synchronous, so a slow subscriber can see the
// event after playback moved on; such snapshots must not be processed.
func (e FrequencySnapshotEvent) Current() bool {
	return e.live == nil || e.live(e.Snapshot.Epoch)
}

// Type returns the event type.
func (e FrequencySnapshotEvent) Type() EventType {
	return EventFrequencySnapshot
}

// NewFrequencySnapshotEvent creates a new FrequencySnapshotEvent.
func NewFrequencySnapshotEvent(snapshot FrequencySnapshot) FrequencySnapshotEvent {
	return FrequencySnapshotEvent{
		baseEvent: newBaseEvent(),
		Snapshot:  snapshot,
	}
}

// NewSampledSnapshotEvent creates a FrequencySnapshotEvent whose Current
// method consults live with the snapshot's epoch.
func NewSampledSnapshotEvent(snapshot FrequencySnapshot, live func(epoch uint64) bool) FrequencySnapshotEvent {
	e := NewFrequencySnapshotEvent(snapshot)
	e.live = live
	return e
}

// FrameReadyEvent carries a processed frame for renderers.
type FrameReadyEvent struct {
	baseEvent
	Frame Frame
}

// Type returns the event type.
func (e FrameReadyEvent) Type() EventType {
	return EventFrameReady
}

// NewFrameReadyEvent creates a new FrameReadyEvent.
func NewFrameReadyEvent(frame Frame) FrameReadyEvent {
	return FrameReadyEvent{
		baseEvent: newBaseEvent(),
		Frame:     frame,
	}
}

// StyleChangedEvent is published when the active visual style changes.
type StyleChangedEvent struct {
	baseEvent
	Style string
}

// Type returns the event type.
func (e StyleChangedEvent) Type() EventType {
	return EventStyleChanged
}

// NewStyleChangedEvent creates a new StyleChangedEvent.
func NewStyleChangedEvent(style string) StyleChangedEvent {
	return StyleChangedEvent{
		baseEvent: newBaseEvent(),
		Style:     style,
	}
}

// CatalogLoadingEvent is published when a catalog load begins.
type CatalogLoadingEvent struct {
	baseEvent
	Location string
}

// Type returns the event type.
func (e CatalogLoadingEvent) Type() EventType {
	return EventCatalogLoading
}

// NewCatalogLoadingEvent creates a new CatalogLoadingEvent.
func NewCatalogLoadingEvent(location string) CatalogLoadingEvent {
	return CatalogLoadingEvent{
		baseEvent: newBaseEvent(),
		Location:  location,
	}
}

// CatalogLoadedEvent is published when the catalog is ready.
type CatalogLoadedEvent struct {
	baseEvent
	Tracks []Track
}

// Type returns the event type.
func (e CatalogLoadedEvent) Type() EventType {
	return EventCatalogLoaded
}

// NewCatalogLoadedEvent creates a new CatalogLoadedEvent.
func NewCatalogLoadedEvent(tracks []Track) CatalogLoadedEvent {
	return CatalogLoadedEvent{
		baseEvent: newBaseEvent(),
		Tracks:    tracks,
	}
}

// CatalogErrorEvent is published when the catalog fails to load.
type CatalogErrorEvent struct {
	baseEvent
	Err error
}

// Type returns the event type.
func (e CatalogErrorEvent) Type() EventType {
	return EventCatalogError
}

// NewCatalogErrorEvent creates a new CatalogErrorEvent.
func NewCatalogErrorEvent(err error) CatalogErrorEvent {
	return CatalogErrorEvent{
		baseEvent: newBaseEvent(),
		Err:       err,
	}
}
