package runtime

import (
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/elevation/state"
)

// Phase is the lifecycle position of an Instance.
type Phase int

const (
	// Unattached instances have been created but never attached.
	Unattached Phase = iota
	// Attached instances are live and hold their subscriptions.
	Attached
	// Detached instances have released their subscriptions.
	Detached
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Unattached:
		return "unattached"
	case Attached:
		return "attached"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// Node is anything that owns an Instance. Components embed *Instance to
// satisfy it.
type Node interface {
	Scope() *Instance
}

// Instance is the lifecycle scope of one component instance.
//
// Hooks registered with OnAttach run on every attach, OnUpdate hooks on every
// update pass while attached, and OnDetach hooks once per detach. Detach
// releases every subscription tracked by the instance before running its
// detach hooks, so a detached instance is never notified again.
type Instance struct {
	id   ulid.ULID
	name string

	mu            sync.Mutex
	phase         Phase
	attachHooks   []func()
	updateHooks   []func()
	detachHooks   []func()
	once          map[any]struct{}
	services      Services
	onInvalidate  func()
	attaches      int
	invalidations int

	subs state.Subscriptions
}

// NewInstance creates an unattached instance.
func NewInstance(name string) *Instance {
	return &Instance{
		id:   ulid.Make(),
		name: name,
	}
}

// Scope returns the instance itself.
func (i *Instance) Scope() *Instance {
	return i
}

// ID returns the instance identifier.
func (i *Instance) ID() string {
	if i == nil {
		return ""
	}
	return i.id.String()
}

// Name returns the instance name.
func (i *Instance) Name() string {
	if i == nil {
		return ""
	}
	return i.name
}

// Phase returns the current lifecycle phase.
func (i *Instance) Phase() Phase {
	if i == nil {
		return Unattached
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phase
}

// Attaches returns how many times the instance has been attached.
func (i *Instance) Attaches() int {
	if i == nil {
		return 0
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.attaches
}

// Subscriptions returns the subscriptions released on detach.
func (i *Instance) Subscriptions() *state.Subscriptions {
	if i == nil {
		return nil
	}
	return &i.subs
}

// OnAttach registers fn to run on every attach. If the instance is already
// attached, fn also runs immediately.
func (i *Instance) OnAttach(fn func()) {
	if i == nil || fn == nil {
		return
	}
	i.mu.Lock()
	i.attachHooks = append(i.attachHooks, fn)
	attached := i.phase == Attached
	i.mu.Unlock()
	if attached {
		fn()
	}
}

// OnUpdate registers fn to run on every update pass while attached.
func (i *Instance) OnUpdate(fn func()) {
	if i == nil || fn == nil {
		return
	}
	i.mu.Lock()
	i.updateHooks = append(i.updateHooks, fn)
	i.mu.Unlock()
}

// OnDetach registers fn to run when the instance detaches.
func (i *Instance) OnDetach(fn func()) {
	if i == nil || fn == nil {
		return
	}
	i.mu.Lock()
	i.detachHooks = append(i.detachHooks, fn)
	i.mu.Unlock()
}

// Once runs fn the first time token is seen by this instance and reports
// whether it ran. The guard lives as long as the instance, across detach and
// re-attach.
func (i *Instance) Once(token any, fn func()) bool {
	if i == nil {
		return false
	}
	i.mu.Lock()
	if i.once == nil {
		i.once = make(map[any]struct{})
	}
	if _, seen := i.once[token]; seen {
		i.mu.Unlock()
		return false
	}
	i.once[token] = struct{}{}
	i.mu.Unlock()
	if fn != nil {
		fn()
	}
	return true
}

// Attach moves the instance to Attached and runs attach hooks in
// registration order. Attaching an attached instance does nothing.
func (i *Instance) Attach() {
	if i == nil {
		return
	}
	i.mu.Lock()
	if i.phase == Attached {
		i.mu.Unlock()
		return
	}
	i.phase = Attached
	i.attaches++
	hooks := append([]func(){}, i.attachHooks...)
	i.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Update runs update hooks in registration order. It does nothing unless the
// instance is attached.
func (i *Instance) Update() {
	if i == nil {
		return
	}
	i.mu.Lock()
	if i.phase != Attached {
		i.mu.Unlock()
		return
	}
	hooks := append([]func(){}, i.updateHooks...)
	i.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Detach releases the instance's subscriptions and runs detach hooks in
// reverse registration order. Every hook runs even if one panics; the first
// panic is re-raised once all hooks have run.
func (i *Instance) Detach() {
	if i == nil {
		return
	}
	i.mu.Lock()
	if i.phase != Attached {
		i.mu.Unlock()
		return
	}
	i.phase = Detached
	hooks := append([]func(){}, i.detachHooks...)
	i.mu.Unlock()

	i.subs.Clear()
	runAll(hooks)
}

func runAll(hooks []func()) {
	var first any
	for idx := len(hooks) - 1; idx >= 0; idx-- {
		func() {
			defer func() {
				if r := recover(); r != nil && first == nil {
					first = r
				}
			}()
			hooks[idx]()
		}()
	}
	if first != nil {
		panic(first)
	}
}

// Bind attaches host services to the instance. Subscriptions made through
// the instance deliver on the host's state scheduler afterwards.
func (i *Instance) Bind(services Services) {
	if i == nil {
		return
	}
	i.mu.Lock()
	i.services = services
	i.mu.Unlock()
	i.subs.SetScheduler(services.Scheduler())
}

// Unbind releases host services.
func (i *Instance) Unbind() {
	if i == nil {
		return
	}
	i.mu.Lock()
	i.services = Services{}
	i.mu.Unlock()
	i.subs.SetScheduler(nil)
}

// Services returns the bound host services. The zero value is returned for
// an unbound instance.
func (i *Instance) Services() Services {
	if i == nil {
		return Services{}
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.services
}

// SetInvalidateHandler sets a function called on every Invalidate, in
// addition to the bound host.
func (i *Instance) SetInvalidateHandler(fn func()) {
	if i == nil {
		return
	}
	i.mu.Lock()
	i.onInvalidate = fn
	i.mu.Unlock()
}

// Invalidate requests a re-render of the instance.
func (i *Instance) Invalidate() {
	if i == nil {
		return
	}
	i.mu.Lock()
	i.invalidations++
	services := i.services
	handler := i.onInvalidate
	i.mu.Unlock()
	if handler != nil {
		handler()
	}
	services.Invalidate()
}

// Invalidations returns how many re-renders have been requested.
func (i *Instance) Invalidations() int {
	if i == nil {
		return 0
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.invalidations
}
