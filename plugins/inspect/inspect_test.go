package inspect

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/elevation/elevation"
	"github.com/odvcencio/elevation/state"
)

func newInspected(t *testing.T, cfg Config) (*elevation.Elevation, *Inspector) {
	t.Helper()
	e := elevation.New(state.State{"count": 0}, elevation.Config{
		Plugins: []elevation.Named{{Name: "inspect", Plugin: New(cfg)}},
	})
	ins, ok := elevation.PluginAs[*Inspector](e, "inspect")
	if !ok {
		t.Fatalf("expected inspect plugin")
	}
	return e, ins
}

func TestInspector_RecordsWrites(t *testing.T) {
	e, ins := newInspected(t, Config{})
	set := e.Elevate()

	set(state.State{"count": 1})
	set(state.State{"count": 1})
	e.Store().SetState(state.State{"name": "seed"}, false)
	set(state.FuncE(func(state.State) (state.State, error) { return nil, errors.New("boom") }))

	entries := ins.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	kinds := []state.EventKind{state.EventCommit, state.EventNoop, state.EventCommit, state.EventError}
	for idx, kind := range kinds {
		if entries[idx].Kind != kind {
			t.Fatalf("entry %d: expected %s, got %s", idx, kind, entries[idx].Kind)
		}
	}
	if !entries[2].Silent || entries[2].Changed[0] != "name" {
		t.Fatalf("expected silent seed entry, got %+v", entries[2])
	}
	if !strings.Contains(entries[3].Err, "boom") {
		t.Fatalf("expected error text, got %q", entries[3].Err)
	}
	if entries[0].ID == entries[1].ID {
		t.Fatalf("expected unique entry ids")
	}

	ins.Close()
	set(state.State{"count": 2})
	if len(ins.Entries()) != 4 {
		t.Fatalf("expected no recording after close")
	}
}

func TestInspector_Limit(t *testing.T) {
	e, ins := newInspected(t, Config{Limit: 2})
	for n := 1; n <= 5; n++ {
		e.Elevate()(state.State{"count": n})
	}
	entries := ins.Entries()
	if len(entries) != 2 || entries[1].Version != 5 {
		t.Fatalf("expected last 2 entries, got %+v", entries)
	}
	if ins.Dropped() != 3 {
		t.Fatalf("expected 3 dropped, got %d", ins.Dropped())
	}
}

func TestInspector_Snapshot(t *testing.T) {
	e, ins := newInspected(t, Config{})
	e.Elevate()(state.State{"name": "ada"})

	snapshot, err := ins.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	want := "{\n  \"count\": 0,\n  \"name\": \"ada\"\n}"
	if snapshot != want {
		t.Fatalf("expected %q, got %q", want, snapshot)
	}

	e.Elevate()(state.State{"bad": func() {}})
	if _, err := ins.Snapshot(); err == nil {
		t.Fatalf("expected encoding error for func value")
	}
}

func TestInspector_Highlight(t *testing.T) {
	_, ins := newInspected(t, Config{})

	var plain bytes.Buffer
	if err := ins.Highlight(&plain, "noop"); err != nil {
		t.Fatalf("highlight failed: %v", err)
	}
	if !strings.Contains(plain.String(), `"count": 0`) {
		t.Fatalf("expected plain json, got %q", plain.String())
	}

	var colored bytes.Buffer
	if err := ins.Highlight(&colored, "terminal256"); err != nil {
		t.Fatalf("highlight failed: %v", err)
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", colored.String())
	}
}

func TestInspector_Table(t *testing.T) {
	e, ins := newInspected(t, Config{})
	e.Elevate()(state.State{"a_very_long_key_name_for_the_table": 1, "b": 2, "c": 3})

	table := ins.Table(40)
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", table)
	}
	if !strings.HasPrefix(lines[0], "version | kind") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > 40 {
			t.Fatalf("expected rows within 40 cells, got %d: %q", w, line)
		}
	}
	if !strings.Contains(lines[1], "…") {
		t.Fatalf("expected truncated changed column, got %q", lines[1])
	}
}

func TestInspector_MarkdownAndHTML(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e, ins := newInspected(t, Config{Now: func() time.Time { return fixed }})
	e.Elevate()(state.State{"count": 1})

	report, err := ins.Markdown()
	if err != nil {
		t.Fatalf("markdown failed: %v", err)
	}
	if !strings.Contains(report, "```json") || !strings.Contains(report, "| commit |") {
		t.Fatalf("unexpected report %q", report)
	}
	entry := ins.Entries()[0]
	if entry.ID.Time() != uint64(fixed.UnixMilli()) {
		t.Fatalf("expected id timestamp from clock, got %d", entry.ID.Time())
	}

	var html bytes.Buffer
	if err := ins.HTML(&html); err != nil {
		t.Fatalf("html failed: %v", err)
	}
	out := html.String()
	if !strings.Contains(out, "<h1>State</h1>") || !strings.Contains(out, "<table>") {
		t.Fatalf("expected rendered headings and table, got %q", out)
	}
}
