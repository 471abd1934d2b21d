// Package inspect records store activity for debugging.
//
// An Inspector observes one store, keeps a bounded history of writes and
// renders the current state and the history as highlighted JSON, a
// terminal table, markdown or HTML.
package inspect

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/elevation/elevation"
	"github.com/odvcencio/elevation/state"
)

// Config configures the inspector.
type Config struct {
	// Limit is the number of entries kept (default: 256).
	Limit int

	// Style is the chroma style used by Highlight (default: "monokai").
	Style string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Entry is one recorded write.
type Entry struct {
	ID       ulid.ULID
	Time     time.Time
	Kind     state.EventKind
	Version  uint64
	Changed  []string
	Silent   bool
	Err      string
	Duration time.Duration
}

// Inspector records the writes of one store.
type Inspector struct {
	config Config
	store  *state.Store
	remove func()

	mu      sync.Mutex
	entries []Entry
	dropped int
}

var _ state.Observer = (*Inspector)(nil)

// New returns a plugin that attaches an *Inspector to the store.
func New(cfg Config) elevation.Plugin {
	return elevation.PluginFunc(func(store *state.Store, _ *elevation.Elevation) any {
		return Attach(store, cfg)
	})
}

// Attach creates an inspector observing store.
func Attach(store *state.Store, cfg Config) *Inspector {
	if cfg.Limit <= 0 {
		cfg.Limit = 256
	}
	if cfg.Style == "" {
		cfg.Style = "monokai"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	i := &Inspector{config: cfg, store: store}
	i.remove = store.Observe(i)
	return i
}

// Close stops recording.
func (i *Inspector) Close() {
	if i.remove != nil {
		i.remove()
	}
}

// ObserveStore records commits, no-ops and failures.
func (i *Inspector) ObserveStore(ev state.Event) {
	if ev.Kind == state.EventNotify {
		return
	}
	now := i.config.Now()
	entry := Entry{
		ID:       ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()),
		Time:     now,
		Kind:     ev.Kind,
		Version:  ev.Version,
		Changed:  append([]string(nil), ev.Changed...),
		Silent:   ev.Silent,
		Duration: ev.Duration,
	}
	if ev.Err != nil {
		entry.Err = ev.Err.Error()
	}

	i.mu.Lock()
	i.entries = append(i.entries, entry)
	if over := len(i.entries) - i.config.Limit; over > 0 {
		i.entries = append([]Entry(nil), i.entries[over:]...)
		i.dropped += over
	}
	i.mu.Unlock()
}

// Entries returns the recorded entries, oldest first.
func (i *Inspector) Entries() []Entry {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Entry(nil), i.entries...)
}

// Dropped returns how many entries were discarded to stay within Limit.
func (i *Inspector) Dropped() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dropped
}

// Snapshot returns the current state as indented JSON.
func (i *Inspector) Snapshot() (string, error) {
	raw, err := json.MarshalIndent(i.store.State(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("inspect: encode state: %w", err)
	}
	return string(raw), nil
}
