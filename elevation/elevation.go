// Package elevation binds a shared state.Store to the lifecycle of component
// instances.
//
// An Elevation wraps one store. Components read from it through Elevated or
// ElevateState, write through Elevate, and attach writes to their own
// lifecycle with OnAttach, OnUpdate, OnDetach and InitialState. Every binding
// takes the *runtime.Instance it belongs to; subscriptions live exactly as
// long as that instance stays attached.
package elevation

import (
	"log/slog"
	"sync"

	"github.com/odvcencio/elevation/runtime"
	"github.com/odvcencio/elevation/state"
)

// Config configures an Elevation.
type Config struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Observers are attached to the underlying store.
	Observers []state.Observer

	// Plugins are created in order once the API is ready.
	Plugins []Named

	// OnError receives errors from lifecycle-triggered writes, which have
	// no caller to return to. Defaults to logging at error level.
	OnError func(inst *runtime.Instance, err error)
}

// ElevateFunc writes an action to the store and notifies subscribers.
type ElevateFunc func(action state.Action) (bool, error)

// Elevation is the bound API over one store.
type Elevation struct {
	store   *state.Store
	logger  *slog.Logger
	onError func(*runtime.Instance, error)
	elevate ElevateFunc
	seed    *seedToken

	mu      sync.RWMutex
	plugins map[string]any
	names   []string
}

type seedToken struct {
	e *Elevation
}

// New creates an Elevation holding initial. Only the first Config is used.
func New(initial state.State, cfg ...Config) *Elevation {
	var c Config
	if len(cfg) > 0 {
		c = cfg[0]
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Elevation{
		store: state.NewStoreWithConfig(initial, state.StoreConfig{
			Logger:    logger,
			Observers: c.Observers,
		}),
		logger:  logger,
		onError: c.OnError,
		plugins: make(map[string]any),
	}
	e.seed = &seedToken{e: e}
	e.elevate = func(action state.Action) (bool, error) {
		return e.store.Set(action)
	}
	if e.onError == nil {
		e.onError = func(inst *runtime.Instance, err error) {
			logger.Error("lifecycle write failed", "instance", inst.ID(), "name", inst.Name(), "error", err)
		}
	}
	for _, named := range c.Plugins {
		e.Use(named.Name, named.Plugin)
	}
	return e
}

// Store returns the underlying store.
func (e *Elevation) Store() *state.Store {
	return e.store
}

// State returns the last committed state.
func (e *Elevation) State() state.State {
	return e.store.State()
}

// Elevate returns the write binding. It is the same function for the life
// of the Elevation and forwards every action to the store with notification
// enabled.
func (e *Elevation) Elevate() ElevateFunc {
	return e.elevate
}

func (e *Elevation) write(inst *runtime.Instance, action state.Action) {
	if _, err := e.store.Set(action); err != nil {
		e.onError(inst, err)
	}
}
