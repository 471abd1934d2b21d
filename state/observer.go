package state

import "time"

// EventKind classifies a store event.
type EventKind int

const (
	// EventCommit is a write that changed at least one key.
	EventCommit EventKind = iota
	// EventNoop is a write that changed nothing and was discarded.
	EventNoop
	// EventError is a write whose action failed.
	EventError
	// EventNotify is the end of one emission. Emissions with no
	// subscriptions produce no event.
	EventNotify
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventCommit:
		return "commit"
	case EventNoop:
		return "noop"
	case EventError:
		return "error"
	case EventNotify:
		return "notify"
	default:
		return "unknown"
	}
}

// Event describes one store write or emission.
type Event struct {
	Kind        EventKind
	Version     uint64
	Changed     []string
	Silent      bool
	Delivered   int
	Subscribers int
	Err         error
	Prev        State
	Next        State
	Duration    time.Duration
}

// Observer receives store events synchronously.
// Observers must not write to the store they observe.
type Observer interface {
	ObserveStore(ev Event)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(Event)

// ObserveStore calls f.
func (f ObserverFunc) ObserveStore(ev Event) {
	if f != nil {
		f(ev)
	}
}
