package elevation

import (
	"github.com/odvcencio/elevation/runtime"
	"github.com/odvcencio/elevation/state"
)

// OnAttach writes action every time inst attaches.
func (e *Elevation) OnAttach(inst *runtime.Instance, action state.Action) {
	inst.OnAttach(func() {
		e.write(inst, action)
	})
}

// OnUpdate writes the mapping returned by build when inst attaches and again
// on every update pass in which the mapping's keys or values differ from the
// last write. Values are compared with state.Same.
func (e *Elevation) OnUpdate(inst *runtime.Instance, build func() state.State) {
	if build == nil {
		return
	}
	var last state.State
	e.OnUpdateDeps(inst, func() []any {
		last = build()
		return flatten(last)
	}, state.Func(func(state.State) state.State {
		return last
	}))
}

// OnUpdateDeps writes action when inst attaches and again on every update
// pass in which deps returns a list that differs from the previous one.
// Lists differ when their lengths differ or any element is not state.Same.
func (e *Elevation) OnUpdateDeps(inst *runtime.Instance, deps func() []any, action state.Action) {
	if deps == nil {
		deps = func() []any { return nil }
	}
	var prev []any
	inst.OnAttach(func() {
		prev = deps()
		e.write(inst, action)
	})
	inst.OnUpdate(func() {
		next := deps()
		if !DepsChanged(prev, next) {
			return
		}
		prev = next
		e.write(inst, action)
	})
}

// DepsChanged reports whether two dependency lists differ.
func DepsChanged(prev, next []any) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if !state.Same(prev[i], next[i]) {
			return true
		}
	}
	return false
}

// OnDetach writes action when inst detaches. The write happens once per
// attach cycle, including when a parent is removed or the host stops.
func (e *Elevation) OnDetach(inst *runtime.Instance, action state.Action) {
	inst.OnDetach(func() {
		e.write(inst, action)
	})
}

// InitialState seeds the store with initial without notifying anyone. It
// runs the first time inst calls it for this Elevation and does nothing
// afterwards, across detach and re-attach. Other instances keep their own
// guard.
func (e *Elevation) InitialState(inst *runtime.Instance, initial state.State) bool {
	return inst.Once(e.seed, func() {
		if len(initial) == 0 {
			return
		}
		if _, err := e.store.SetState(initial, false); err != nil {
			e.onError(inst, err)
		}
	})
}

func flatten(s state.State) []any {
	keys := s.Keys()
	out := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		out = append(out, key, s[key])
	}
	return out
}
