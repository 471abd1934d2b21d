package state

import "reflect"

// Listener receives the full state after a matching change.
type Listener interface {
	OnState(next State)
}

type funcListener struct {
	fn func(State)
}

func (l *funcListener) OnState(next State) {
	if l.fn != nil {
		l.fn(next)
	}
}

// NewListener wraps fn in a listener handle. The handle, not fn, is the
// subscription identity: subscribing the same handle twice registers once.
func NewListener(fn func(State)) Listener {
	return &funcListener{fn: fn}
}

func sameListener(a, b Listener) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Subscribable registers listeners for keyed change notifications.
type Subscribable interface {
	Subscribe(interest Interest, l Listener) func()
}

// Readable exposes a read-only view.
type Readable[T any] interface {
	Get() T
}

// Writable exposes a view that can be written back to its store.
type Writable[T any] interface {
	Readable[T]
	Set(value T) error
	Update(fn func(T) T) error
}
