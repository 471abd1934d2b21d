package state

// State is the string-keyed mapping owned by a Store.
// Snapshots handed out by the store are shared; treat them as read-only.
type State map[string]any

// Keys returns the keys of the state in lexical order.
func (s State) Keys() []string {
	return sortedKeys(s)
}

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for key, value := range s {
		out[key] = value
	}
	return out
}

// Merge returns a new state holding every key of s overlaid with partial.
// Neither input is modified.
func (s State) Merge(partial State) State {
	out := make(State, len(s)+len(partial))
	for key, value := range s {
		out[key] = value
	}
	for key, value := range partial {
		out[key] = value
	}
	return out
}

// Key is a typed accessor for one top-level key.
type Key[T any] string

// Name returns the key string.
func (k Key[T]) Name() string {
	return string(k)
}

// Lookup returns the value stored under k and whether it holds a T.
func (k Key[T]) Lookup(s State) (T, bool) {
	value, ok := s[string(k)].(T)
	return value, ok
}

// Get returns the value stored under k, or the zero value.
func (k Key[T]) Get(s State) T {
	value, _ := k.Lookup(s)
	return value
}

// Set builds a one-key partial state.
func (k Key[T]) Set(value T) State {
	return State{string(k): value}
}
