package inspect

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Highlight writes the current state as JSON highlighted for formatter,
// for example "terminal256", "html" or "noop".
func (i *Inspector) Highlight(w io.Writer, formatter string) error {
	snapshot, err := i.Snapshot()
	if err != nil {
		return err
	}
	if err := quick.Highlight(w, snapshot, "json", formatter, i.config.Style); err != nil {
		return fmt.Errorf("inspect: highlight: %w", err)
	}
	return nil
}

var tableColumns = []string{"version", "kind", "changed", "error"}

// Table renders the history as fixed-width rows no wider than width cells.
// The changed and error columns share the space left after the fixed ones.
func (i *Inspector) Table(width int) string {
	entries := i.Entries()
	fixed := []int{7, 6}
	rest := width - fixed[0] - fixed[1] - 3*(len(tableColumns)-1)
	if rest < 2 {
		rest = 2
	}
	widths := []int{fixed[0], fixed[1], rest - rest/3, rest / 3}

	var b strings.Builder
	writeRow(&b, widths, tableColumns)
	for _, entry := range entries {
		writeRow(&b, widths, []string{
			strconv.FormatUint(entry.Version, 10),
			entryKind(entry),
			strings.Join(entry.Changed, ","),
			entry.Err,
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, widths []int, cells []string) {
	for idx, cell := range cells {
		if idx > 0 {
			b.WriteString(" | ")
		}
		cell = runewidth.Truncate(cell, widths[idx], "…")
		if idx == len(cells)-1 {
			b.WriteString(strings.TrimRight(runewidth.FillRight(cell, widths[idx]), " "))
			continue
		}
		b.WriteString(runewidth.FillRight(cell, widths[idx]))
	}
	b.WriteByte('\n')
}

func entryKind(entry Entry) string {
	if entry.Silent && entry.Err == "" {
		return entry.Kind.String() + "*"
	}
	return entry.Kind.String()
}

// Markdown renders a report with the current state and the history.
func (i *Inspector) Markdown() (string, error) {
	snapshot, err := i.Snapshot()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("# State\n\n```json\n")
	b.WriteString(snapshot)
	b.WriteString("\n```\n\n# History\n\n")
	b.WriteString("| id | version | kind | changed | duration | error |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, entry := range i.Entries() {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s |\n",
			entry.ID,
			entry.Version,
			entryKind(entry),
			escapeCell(strings.Join(entry.Changed, ", ")),
			entry.Duration,
			escapeCell(entry.Err),
		)
	}
	if dropped := i.Dropped(); dropped > 0 {
		fmt.Fprintf(&b, "\n%d older entries dropped.\n", dropped)
	}
	return b.String(), nil
}

// HTML renders the markdown report as HTML.
func (i *Inspector) HTML(w io.Writer) error {
	report, err := i.Markdown()
	if err != nil {
		return err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(report), &buf); err != nil {
		return fmt.Errorf("inspect: render html: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
