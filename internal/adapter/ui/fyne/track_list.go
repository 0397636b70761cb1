package fyne

import (
	"fmt"
	"strings"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/spectrotune/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

// TrackList is the catalog panel of the main window. It shows the tracks
// with a search filter and reports double-tapped tracks by id.
//
// All methods must run on the fyne thread.
type TrackList struct {
	list        *widget.List
	searchEntry *widget.Entry
	header      *widget.Label
	content     fyneapp.CanvasObject

	// Data state
	data           []domain.Track // Filtered view (shown in the list)
	mainCollection []domain.Track // Full catalog
	currentID      string

	onSelected func(id string)
}

// NewTrackList creates the panel. onSelected receives the id of a double-tapped track.
func NewTrackList(onSelected func(id string)) *TrackList {
	l := &TrackList{onSelected: onSelected}
	l.buildUI()
	return l
}

// buildUI constructs the panel layout.
func (l *TrackList) buildUI() {
	l.header = widget.NewLabel("Tracks")
	l.header.TextStyle = fyneapp.TextStyle{Bold: true}

	l.searchEntry = widget.NewEntry()
	l.searchEntry.SetPlaceHolder("Search...")
	l.searchEntry.OnChanged = func(query string) {
		l.searchCollection(query)
	}

	l.list = widget.NewList(
		func() int {
			return len(l.data)
		},
		func() fyneapp.CanvasObject {
			return widgets.NewDoubleTapLabel(l.onCellDoubleTapped)
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			l.updateCell(i, obj)
		},
	)

	l.content = container.NewBorder(
		container.NewVBox(l.header, l.searchEntry),
		nil,
		nil,
		nil,
		l.list,
	)
}

// Content returns the panel's canvas object.
func (l *TrackList) Content() fyneapp.CanvasObject {
	return l.content
}

// updateCell updates a list cell with track information.
func (l *TrackList) updateCell(i widget.ListItemID, obj fyneapp.CanvasObject) {
	label, ok := obj.(*widgets.DoubleTapLabel)
	if !ok || i < 0 || i >= len(l.data) {
		return
	}

	track := l.data[i]
	text := track.DisplayName()
	if track.Duration > 0 {
		text = fmt.Sprintf("%s  [%s]", text, domain.FormatDuration(track.Duration))
	}
	label.Bind(track.ID, text)
}

// onCellDoubleTapped handles double-tap events on list cells.
func (l *TrackList) onCellDoubleTapped(trackID string) {
	if l.onSelected != nil {
		l.onSelected(trackID)
	}
}

// SetTracks replaces the catalog shown, keeping the current search filter.
func (l *TrackList) SetTracks(tracks []domain.Track) {
	l.mainCollection = tracks
	l.searchCollection(l.searchEntry.Text)
}

// SetCurrent highlights the track with the given id if it is visible.
func (l *TrackList) SetCurrent(id string) {
	l.currentID = id
	l.syncSelection()
}

// Len returns the number of visible tracks.
func (l *TrackList) Len() int {
	return len(l.data)
}

// searchCollection filters the catalog based on the search query.
func (l *TrackList) searchCollection(query string) {
	query = strings.ToLower(strings.TrimSpace(query))

	if query == "" {
		l.data = l.mainCollection
	} else {
		filtered := make([]domain.Track, 0)
		for _, track := range l.mainCollection {
			if matchesSearch(track, query) {
				filtered = append(filtered, track)
			}
		}
		l.data = filtered
	}

	l.header.SetText(fmt.Sprintf("Tracks (%d)", len(l.data)))
	l.list.Refresh()
	l.syncSelection()
}

// syncSelection selects the current track in the filtered view, or nothing
// if it is filtered out.
func (l *TrackList) syncSelection() {
	for i, track := range l.data {
		if track.ID == l.currentID {
			l.list.Select(i)
			return
		}
	}
	l.list.UnselectAll()
}

// matchesSearch checks if a track matches a lower-cased query.
func matchesSearch(track domain.Track, query string) bool {
	for _, field := range []string{track.Artist, track.Song, track.Source} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
