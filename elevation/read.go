package elevation

import (
	"sync"

	"github.com/odvcencio/elevation/runtime"
	"github.com/odvcencio/elevation/state"
)

// View is a read binding: a projection of the store kept current while its
// instance is attached.
type View[R any] struct {
	e        *Elevation
	inst     *runtime.Instance
	project  func(state.State) R
	listener state.Listener

	mu       sync.Mutex
	interest state.Interest
	snapshot state.State
	value    R
	version  int
	unsub    func()
}

// Elevated creates a read binding for inst. The projection runs against the
// current state immediately and again against the latest full state on every
// notification matching interest. The view subscribes when inst attaches and
// unsubscribes when it detaches; each notification invalidates inst.
func Elevated[R any](e *Elevation, inst *runtime.Instance, project func(state.State) R, interest state.Interest) *View[R] {
	v := &View[R]{
		e:        e,
		inst:     inst,
		project:  project,
		interest: interest,
	}
	v.listener = state.NewListener(v.onState)
	v.refresh(e.store.State(), false)
	inst.OnAttach(v.attach)
	inst.OnDetach(v.detach)
	return v
}

// Get returns the current projection.
func (v *View[R]) Get() R {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// State returns the full state the projection was computed from.
func (v *View[R]) State() state.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

// Version returns how many notifications the view has received.
func (v *View[R]) Version() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Interest returns the interest the view subscribes with.
func (v *View[R]) Interest() state.Interest {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.interest
}

// SetInterest changes the keys the view listens to. An attached view
// resubscribes only when interest differs from the current one, key order
// included.
func (v *View[R]) SetInterest(interest state.Interest) {
	v.mu.Lock()
	if v.interest.Equal(interest) {
		v.mu.Unlock()
		return
	}
	v.interest = interest
	subscribed := v.unsub != nil
	v.mu.Unlock()
	if subscribed {
		v.subscribe()
	}
}

func (v *View[R]) attach() {
	v.refresh(v.e.store.State(), false)
	v.subscribe()
}

func (v *View[R]) detach() {
	v.mu.Lock()
	unsub := v.unsub
	v.unsub = nil
	v.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (v *View[R]) subscribe() {
	v.mu.Lock()
	old := v.unsub
	interest := v.interest
	v.mu.Unlock()
	if old != nil {
		old()
	}
	unsub := v.inst.Subscriptions().Observe(v.e.store, interest, v.listener)
	v.mu.Lock()
	v.unsub = unsub
	v.mu.Unlock()
}

func (v *View[R]) onState(next state.State) {
	v.refresh(next, true)
	v.inst.Invalidate()
}

func (v *View[R]) refresh(next state.State, notified bool) {
	value := v.project(next)
	v.mu.Lock()
	v.snapshot = next
	v.value = value
	if notified {
		v.version++
	}
	v.mu.Unlock()
}
