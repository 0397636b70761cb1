// Package domain defines domain-specific errors.
// These errors represent pipeline failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrNoTrackLoaded is returned when playback is attempted with no track loaded.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrInvalidTrack is returned when a track has no source locator.
	ErrInvalidTrack = errors.New("invalid track")

	// ErrInvalidTransformSize is returned when an analyser size is not a power of two in range.
	ErrInvalidTransformSize = errors.New("transform size must be a power of two between 32 and 32768")

	// ErrGraphClosed is returned when the audio graph is used after teardown.
	ErrGraphClosed = errors.New("audio graph closed")

	// ErrContextClosed is returned when the audio output context is used after Close.
	ErrContextClosed = errors.New("audio context closed")

	// ErrPlaybackRejected is returned by the platform when media refuses to start.
	ErrPlaybackRejected = errors.New("playback rejected")

	// ErrUnsupportedFormat is returned when a media format cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrMediaUnavailable is returned when media cannot be opened or fetched.
	ErrMediaUnavailable = errors.New("media unavailable")

	// ErrCatalogUnavailable is returned when the track catalog cannot be read.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrInvalidStyle is returned when an unknown visual style is requested.
	ErrInvalidStyle = errors.New("unknown visual style")

	// ErrTrackNotFound is returned when a track id is not in the catalog.
	ErrTrackNotFound = errors.New("track not found")
)

// AudioGraphError represents an error raised while building or rewiring the audio graph.
type AudioGraphError struct {
	Op     string // Operation that failed (e.g., "connect", "load", "analyser")
	Source string // Media locator (if applicable)
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *AudioGraphError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("audio graph %s failed for '%s': %v", e.Op, e.Source, e.Err)
	}
	return fmt.Sprintf("audio graph %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *AudioGraphError) Unwrap() error {
	return e.Err
}

// NewAudioGraphError creates a new AudioGraphError.
func NewAudioGraphError(op, source string, err error) *AudioGraphError {
	return &AudioGraphError{
		Op:     op,
		Source: source,
		Err:    err,
	}
}

// CatalogError represents an error while reading the track catalog.
type CatalogError struct {
	Op       string // Operation that failed (e.g., "fetch", "decode")
	Location string // Catalog path or URL
	Err      error  // Underlying error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s failed for '%s': %v", e.Op, e.Location, e.Err)
}

// Unwrap returns the underlying error.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// NewCatalogError creates a new CatalogError.
func NewCatalogError(op, location string, err error) *CatalogError {
	return &CatalogError{
		Op:       op,
		Location: location,
		Err:      err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlaybackService", "CatalogService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
