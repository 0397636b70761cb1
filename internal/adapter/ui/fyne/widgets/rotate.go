package widgets

// Rotator produces a marquee of text that is wider than its label.
// Each Rotate call moves the first rune to the end.
type Rotator struct {
	text  string
	runes []rune
	width int
}

// NewRotator creates a rotator for text shown in width runes.
func NewRotator(text string, width int) *Rotator {
	return &Rotator{text: text, runes: []rune("    " + text), width: width}
}

// Rotate advances the marquee by one rune and returns the visible text.
// Text that already fits is returned unchanged.
func (r *Rotator) Rotate() string {
	if len([]rune(r.text)) <= r.width {
		return r.text
	}
	r.runes = append(r.runes[1:], r.runes[0])
	return string(r.runes)
}
