// Package widgets provides custom Fyne widgets for the spectrotune desktop UI.
package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// TappableStack wraps the visualizer area. A primary tap steps to the next
// style and a secondary tap opens the style menu at the pointer.
type TappableStack struct {
	widget.BaseWidget

	content        fyne.CanvasObject
	onTap          func()
	onSecondaryTap func(*fyne.PointEvent)
}

// NewTappableStack creates a tappable stack around content. Either callback may be nil.
func NewTappableStack(content fyne.CanvasObject, onTap func(), onSecondaryTap func(*fyne.PointEvent)) *TappableStack {
	t := &TappableStack{
		content:        content,
		onTap:          onTap,
		onSecondaryTap: onSecondaryTap,
	}
	t.ExtendBaseWidget(t)
	return t
}

// CreateRenderer implements fyne.Widget.
func (t *TappableStack) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

// Tapped implements fyne.Tappable.
func (t *TappableStack) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap()
	}
}

// TappedSecondary implements fyne.SecondaryTappable.
func (t *TappableStack) TappedSecondary(pe *fyne.PointEvent) {
	if t.onSecondaryTap != nil {
		t.onSecondaryTap(pe)
	}
}

var (
	_ fyne.Tappable          = (*TappableStack)(nil)
	_ fyne.SecondaryTappable = (*TappableStack)(nil)
)
