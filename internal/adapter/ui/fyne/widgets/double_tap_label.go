package widgets

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// DoubleTapLabel is a list cell label that reports the track it shows when
// double-tapped. List cells are recycled, so the track id is rebound on
// every update.
type DoubleTapLabel struct {
	widget.Label
	trackID      string
	doubleTapped func(trackID string)
}

// NewDoubleTapLabel creates a label that passes its bound track id to doubleTapped.
func NewDoubleTapLabel(doubleTapped func(trackID string)) *DoubleTapLabel {
	label := &DoubleTapLabel{doubleTapped: doubleTapped}
	label.ExtendBaseWidget(label)
	return label
}

// Bind shows text and associates the label with trackID.
func (l *DoubleTapLabel) Bind(trackID, text string) {
	l.trackID = trackID
	l.SetText(text)
}

// TrackID returns the bound track id.
func (l *DoubleTapLabel) TrackID() string {
	return l.trackID
}

// DoubleTapped implements fyne.DoubleTappable.
func (l *DoubleTapLabel) DoubleTapped(*fyneapp.PointEvent) {
	if l.doubleTapped != nil && l.trackID != "" {
		l.doubleTapped(l.trackID)
	}
}

var _ fyneapp.DoubleTappable = (*DoubleTapLabel)(nil)
