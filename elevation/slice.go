package elevation

import (
	"github.com/odvcencio/elevation/runtime"
	"github.com/odvcencio/elevation/state"
)

// Slot is a read/write binding scoped to one key, used like local state
// that lives in the shared store.
type Slot[T any] struct {
	key  state.Key[T]
	view *View[T]
	set  ElevateFunc
}

var _ state.Writable[int] = (*Slot[int])(nil)

// ElevateState binds key for inst. The slot re-reads the key whenever it
// changes while inst is attached.
func ElevateState[T any](e *Elevation, inst *runtime.Instance, key state.Key[T]) *Slot[T] {
	return &Slot[T]{
		key:  key,
		view: Elevated(e, inst, key.Get, state.Keys(key.Name())),
		set:  e.Elevate(),
	}
}

// Key returns the bound key.
func (s *Slot[T]) Key() state.Key[T] {
	return s.key
}

// Get returns the current value of the key.
func (s *Slot[T]) Get() T {
	return s.view.Get()
}

// Set writes value to the key.
func (s *Slot[T]) Set(value T) error {
	_, err := s.set(s.key.Set(value))
	return err
}

// Update writes fn applied to the key's current value in the store.
func (s *Slot[T]) Update(fn func(prev T) T) error {
	if fn == nil {
		return nil
	}
	_, err := s.set(state.Func(func(current state.State) state.State {
		return s.key.Set(fn(s.key.Get(current)))
	}))
	return err
}
