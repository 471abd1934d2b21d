package state

// Action is a request to mutate a Store.
//
// A State is merged into the current state as given. Func and FuncE derive a
// partial state from the current one; the store always merges the result, so
// functions may return only the keys they change and must not modify their
// input.
type Action interface {
	apply(current State) (State, error)
}

func (s State) apply(State) (State, error) {
	return s, nil
}

// Func derives a partial state from the current state. When another write
// commits between reading and committing, the store calls the function again
// on the newer state, so side effects inside it can happen more than once.
type Func func(current State) State

func (f Func) apply(current State) (State, error) {
	if f == nil {
		return nil, nil
	}
	return f(current), nil
}

// FuncE is a Func that can fail. A non-nil error aborts the write. Like
// Func, it may run more than once per write.
type FuncE func(current State) (State, error)

func (f FuncE) apply(current State) (State, error) {
	if f == nil {
		return nil, nil
	}
	return f(current)
}
