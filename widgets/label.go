package widgets

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/elevation/elevation"
	"github.com/odvcencio/elevation/state"
)

// Label shows one state key as text. It re-reads the key whenever it
// changes while the label is attached.
type Label struct {
	Component
	view      *elevation.View[string]
	style     tcell.Style
	alignment Alignment
}

// NewLabel binds a label to key. format turns the value into text; nil uses
// fmt's %v and shows missing keys as "".
func NewLabel(e *elevation.Elevation, key string, format func(value any) string) *Label {
	if format == nil {
		format = func(value any) string {
			if value == nil {
				return ""
			}
			return fmt.Sprint(value)
		}
	}
	label := &Label{
		Component: NewComponent("label:" + key),
		style:     tcell.StyleDefault,
		alignment: AlignLeft,
	}
	label.view = elevation.Elevated(e, label.Instance, func(s state.State) string {
		return format(s[key])
	}, state.Keys(key))
	return label
}

// Text returns the current label text.
func (l *Label) Text() string {
	return l.view.Get()
}

// SetStyle sets the label style.
func (l *Label) SetStyle(style tcell.Style) {
	l.style = style
}

// SetAlignment sets text alignment.
func (l *Label) SetAlignment(align Alignment) {
	l.alignment = align
}

// Width returns the display width of the current text.
func (l *Label) Width() int {
	return runewidth.StringWidth(l.Text())
}

// Draw clears the first row of bounds and draws the text into it.
func (l *Label) Draw(c Canvas, bounds Rect) {
	if c == nil || bounds.Empty() {
		return
	}
	row := bounds.Row(0)
	fillRect(c, row, ' ', l.style)
	text := truncateString(l.Text(), row.Width)
	x := row.X + alignOffset(l.alignment, runewidth.StringWidth(text), row.Width)
	drawString(c, x, row.Y, text, l.style)
}
