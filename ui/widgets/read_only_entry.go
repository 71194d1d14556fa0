package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// ReadOnlyEntry is a monospace multi-line entry whose text can be selected
// and copied but not edited. Typed changes are reverted.
type ReadOnlyEntry struct {
	widget.Entry

	content string
}

// NewReadOnlyEntry creates an empty read-only text area.
func NewReadOnlyEntry() *ReadOnlyEntry {
	e := &ReadOnlyEntry{}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.TextStyle = fyne.TextStyle{Monospace: true}
	e.OnChanged = e.revert
	e.ExtendBaseWidget(e)
	return e
}

// SetText replaces the displayed text.
func (e *ReadOnlyEntry) SetText(text string) {
	e.content = text
	e.Entry.SetText(text)
}

// Content returns the text last set, regardless of pending edits.
func (e *ReadOnlyEntry) Content() string {
	return e.content
}

func (e *ReadOnlyEntry) revert(text string) {
	if text != e.content {
		e.Entry.SetText(e.content)
	}
}
