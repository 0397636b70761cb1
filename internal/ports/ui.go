// Package ports define the UI interface for view abstraction.
// This interface allows the presenter to update the UI without depending on a toolkit directly.
package ports

import (
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// UI is the interface for the user interface layer.
// Presenters receive events from the event bus and call these methods
// to update the view. Hosts (fyne window, terminal model) implement it.
//
// Thread-safety: implementations marshal calls onto their own UI thread.
type UI interface {
	// Display update methods

	// SetTrackInfo updates the displayed track information.
	SetTrackInfo(track domain.Track)

	// SetProgress updates the position display and seek bar.
	// current and total are in seconds.
	SetProgress(current, total float64)

	// SetPlayState updates the play/pause affordance.
	// playing: true if currently playing, false if paused or stopped
	SetPlayState(playing bool)

	// SetVolume updates the volume slider (0.0 to 1.0).
	SetVolume(volume float64)

	// SetTracks replaces the displayed catalog.
	SetTracks(tracks []domain.Track)

	// SetCatalogStatus reflects the catalog loading state.
	SetCatalogStatus(status domain.CatalogStatus)

	// SetStyle highlights the active visual style.
	SetStyle(style string)

	// ShowError displays an error to the user.
	ShowError(title, message string)

	// Lifecycle methods

	// Run starts the UI event loop. Blocks until the application quits.
	Run() error

	// Quit closes the application.
	Quit()
}
