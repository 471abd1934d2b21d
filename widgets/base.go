// Package widgets provides small terminal widgets bound to a shared store.
package widgets

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Canvas is the drawing surface widgets render to. tcell.Screen satisfies it.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

var _ Canvas = tcell.Screen(nil)

// Rect is a cell rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rectangle has no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Row returns the one-cell-high row at offset dy, clipped to r.
func (r Rect) Row(dy int) Rect {
	if dy < 0 || dy >= r.Height {
		return Rect{}
	}
	return Rect{X: r.X, Y: r.Y + dy, Width: r.Width, Height: 1}
}

// Alignment controls horizontal text placement.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// drawString draws s at x, y honoring wide runes and returns the cells used.
func drawString(c Canvas, x, y int, s string, style tcell.Style) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		c.SetContent(x+used, y, r, nil, style)
		used += w
	}
	return used
}

// fillRect fills a rectangle with a character.
func fillRect(c Canvas, bounds Rect, ch rune, style tcell.Style) {
	for y := bounds.Y; y < bounds.Y+bounds.Height; y++ {
		for x := bounds.X; x < bounds.X+bounds.Width; x++ {
			c.SetContent(x, y, ch, nil, style)
		}
	}
}

// truncateString truncates a string to fit within maxWidth.
// Adds "..." if truncated.
func truncateString(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// alignOffset returns the x offset of text of width w inside width total.
func alignOffset(align Alignment, w, total int) int {
	switch align {
	case AlignCenter:
		return (total - w) / 2
	case AlignRight:
		return total - w
	default:
		return 0
	}
}
