package widgets

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/elevation/elevation"
	"github.com/odvcencio/elevation/runtime"
	"github.com/odvcencio/elevation/state"
)

type testCanvas struct {
	width, height int
	cells         map[[2]int]rune
	styles        map[[2]int]tcell.Style
}

func newTestCanvas(w, h int) *testCanvas {
	return &testCanvas{width: w, height: h, cells: map[[2]int]rune{}, styles: map[[2]int]tcell.Style{}}
}

func (c *testCanvas) SetContent(x, y int, primary rune, _ []rune, style tcell.Style) {
	c.cells[[2]int{x, y}] = primary
	c.styles[[2]int{x, y}] = style
}

func (c *testCanvas) Size() (int, int) {
	return c.width, c.height
}

func (c *testCanvas) row(y int) string {
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		r, ok := c.cells[[2]int{x, y}]
		if !ok {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestLabel_LifecycleQueue(t *testing.T) {
	e := elevation.New(state.State{"status": "start"})
	queue := state.NewQueue()
	label := NewLabel(e, "status", nil)
	label.Subscriptions().SetScheduler(queue)

	runtime.MountTree(label)
	if label.Text() != "start" {
		t.Fatalf("expected initial text start, got %q", label.Text())
	}

	e.Elevate()(state.State{"status": "next"})
	if label.Text() != "start" {
		t.Fatalf("expected text to update after flush, got %q", label.Text())
	}
	if flushed := queue.Flush(); flushed != 1 {
		t.Fatalf("expected 1 queued callback, got %d", flushed)
	}
	if label.Text() != "next" {
		t.Fatalf("expected updated text next, got %q", label.Text())
	}

	e.Elevate()(state.State{"status": "pending"})
	runtime.UnmountTree(label)
	queue.Flush()
	e.Elevate()(state.State{"status": "final"})
	if flushed := queue.Flush(); flushed != 0 {
		t.Fatalf("expected no queued callbacks after unmount, got %d", flushed)
	}
	if label.Text() != "next" {
		t.Fatalf("expected text to remain next after unmount, got %q", label.Text())
	}
}

func TestLabel_Draw(t *testing.T) {
	e := elevation.New(state.State{"title": "hello", "count": 3})
	title := NewLabel(e, "title", nil)
	count := NewLabel(e, "count", func(v any) string { return "count: " + strings.Repeat("#", v.(int)) })
	missing := NewLabel(e, "missing", nil)
	stack := NewStack(title, count, missing)
	runtime.MountTree(stack)
	defer runtime.UnmountTree(stack)

	canvas := newTestCanvas(10, 3)
	stack.Draw(canvas, Rect{Width: 10, Height: 3})
	if got := canvas.row(0); got != "hello     " {
		t.Fatalf("unexpected row 0 %q", got)
	}
	if got := canvas.row(1); got != "count: ###" {
		t.Fatalf("unexpected row 1 %q", got)
	}
	if got := canvas.row(2); got != "          " {
		t.Fatalf("unexpected row 2 %q", got)
	}

	e.Elevate()(state.State{"title": "a much longer title"})
	title.SetAlignment(AlignRight)
	stack.Draw(canvas, Rect{Width: 10, Height: 3})
	if got := canvas.row(0); got != "a much ..." {
		t.Fatalf("expected truncated title, got %q", got)
	}

	e.Elevate()(state.State{"title": "hi"})
	stack.Draw(canvas, Rect{Width: 10, Height: 3})
	if got := canvas.row(0); got != "        hi" {
		t.Fatalf("expected right aligned title, got %q", got)
	}

	title.SetAlignment(AlignCenter)
	bold := tcell.StyleDefault.Bold(true)
	title.SetStyle(bold)
	title.Draw(canvas, Rect{Width: 10, Height: 1})
	if got := canvas.row(0); got != "    hi    " {
		t.Fatalf("expected centered title, got %q", got)
	}
	if canvas.styles[[2]int{4, 0}] != bold {
		t.Fatalf("expected label style applied")
	}
}

func TestLabel_WideRunes(t *testing.T) {
	e := elevation.New(state.State{"name": "日本語"})
	label := NewLabel(e, "name", nil)
	if label.Width() != 6 {
		t.Fatalf("expected width 6, got %d", label.Width())
	}
	canvas := newTestCanvas(6, 1)
	label.Draw(canvas, Rect{Width: 6, Height: 1})
	if canvas.cells[[2]int{2, 0}] != '本' {
		t.Fatalf("expected second rune at column 2, got %q", canvas.cells[[2]int{2, 0}])
	}
}

func TestStack_ChildNodes(t *testing.T) {
	e := elevation.New(nil)
	a := NewLabel(e, "a", nil)
	b := NewLabel(e, "b", nil)
	stack := NewStack(a, nil, b)
	if len(stack.ChildNodes()) != 2 {
		t.Fatalf("expected nil children skipped, got %d", len(stack.ChildNodes()))
	}
	runtime.MountTree(stack)
	if a.Phase() != runtime.Attached || b.Phase() != runtime.Attached {
		t.Fatalf("expected children attached with the stack")
	}
	runtime.UnmountTree(stack)
	if a.Phase() != runtime.Detached {
		t.Fatalf("expected children detached with the stack")
	}
}
