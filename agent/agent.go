// Package agent drives a running host from tests and scripts.
// It dispatches writes on the host loop, waits for store conditions and
// reports the component tree as plain data.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/odvcencio/elevation/elevation"
	"github.com/odvcencio/elevation/runtime"
	"github.com/odvcencio/elevation/state"
)

// Common errors returned by Agent methods.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrTimeout      = errors.New("operation timed out")
	ErrNoHost       = errors.New("no host configured")
	ErrHostBusy     = errors.New("host message queue is full")
)

// Agent scripts interactions with a host and its Elevation.
type Agent struct {
	mu       sync.Mutex
	host     *runtime.Host
	api      *elevation.Elevation
	tickRate time.Duration
	timeout  time.Duration
}

// Config configures an Agent.
type Config struct {
	// Host is the running host to drive.
	Host *runtime.Host

	// Elevation is the store the host's tree is bound to.
	Elevation *elevation.Elevation

	// TickRate is how long Tick waits for the loop to settle.
	// Default is 10ms.
	TickRate time.Duration

	// Timeout bounds Dispatch and WaitFor when the context has no deadline.
	// Default is 2s.
	Timeout time.Duration
}

// New creates a new Agent with the given configuration.
func New(cfg Config) *Agent {
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 10 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Agent{
		host:     cfg.Host,
		api:      cfg.Elevation,
		tickRate: tickRate,
		timeout:  timeout,
	}
}

// Host returns the driven host.
func (a *Agent) Host() *runtime.Host {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.host
}

// SetHost replaces the driven host.
func (a *Agent) SetHost(host *runtime.Host) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.host = host
	a.mu.Unlock()
}

// Tick waits for the host to process pending messages.
func (a *Agent) Tick() {
	if a == nil {
		return
	}
	time.Sleep(a.tickRate)
}

// Dispatch writes action on the host loop and waits for the write to
// finish. It returns whether the state changed.
func (a *Agent) Dispatch(ctx context.Context, action state.Action) (bool, error) {
	host := a.Host()
	if host == nil {
		return false, ErrNoHost
	}
	ctx, cancel := a.bound(ctx)
	defer cancel()

	type result struct {
		changed bool
		err     error
	}
	done := make(chan result, 1)
	if !host.Do(func() {
		changed, err := a.api.Elevate()(action)
		done <- result{changed: changed, err: err}
	}) {
		return false, ErrHostBusy
	}
	select {
	case r := <-done:
		return r.changed, r.err
	case <-ctx.Done():
		return false, fmt.Errorf("%w: dispatch: %w", ErrTimeout, ctx.Err())
	}
}

// WaitFor blocks until pred holds for the store state.
func (a *Agent) WaitFor(ctx context.Context, pred func(state.State) bool) (state.State, error) {
	ctx, cancel := a.bound(ctx)
	defer cancel()
	s, err := a.api.Store().WaitFor(ctx, state.AllKeys(), pred)
	if err != nil {
		return nil, fmt.Errorf("%w: wait: %w", ErrTimeout, err)
	}
	return s, nil
}

// Snapshot returns the store state and a description of the host's tree.
func (a *Agent) Snapshot() Snapshot {
	if a == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		Timestamp: time.Now(),
		Version:   a.api.Store().Version(),
		State:     a.api.State(),
	}
	host := a.Host()
	if host == nil {
		return snap
	}
	snap.Frames = host.Frames()
	if root := host.Root(); root != nil {
		snap.Nodes = []NodeInfo{describe(root)}
	}
	return snap
}

func describe(n runtime.Node) NodeInfo {
	inst := n.Scope()
	info := NodeInfo{
		ID:            inst.ID(),
		Name:          inst.Name(),
		Phase:         inst.Phase().String(),
		Attaches:      inst.Attaches(),
		Subscriptions: inst.Subscriptions().Len(),
		Invalidations: inst.Invalidations(),
	}
	if cp, ok := n.(runtime.ChildProvider); ok {
		for _, child := range cp.ChildNodes() {
			if child == nil || child.Scope() == nil {
				continue
			}
			info.Children = append(info.Children, describe(child))
		}
	}
	return info
}

// FindByName finds the first node whose name contains name (case-insensitive).
func (a *Agent) FindByName(name string) (*NodeInfo, error) {
	snap := a.Snapshot()
	if found := findByNameIn(snap.Nodes, strings.ToLower(name)); found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
}

func findByNameIn(nodes []NodeInfo, name string) *NodeInfo {
	for i := range nodes {
		n := &nodes[i]
		if strings.Contains(strings.ToLower(n.Name), name) {
			return n
		}
		if found := findByNameIn(n.Children, name); found != nil {
			return found
		}
	}
	return nil
}

// FindByID finds a node by its ID.
func (a *Agent) FindByID(id string) (*NodeInfo, error) {
	snap := a.Snapshot()
	if found := findByIDIn(snap.Nodes, id); found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

func findByIDIn(nodes []NodeInfo, id string) *NodeInfo {
	for i := range nodes {
		n := &nodes[i]
		if n.ID == id {
			return n
		}
		if found := findByIDIn(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// IsAttached reports whether a node with the given name is attached.
func (a *Agent) IsAttached(name string) bool {
	n, err := a.FindByName(name)
	return err == nil && n.Phase == runtime.Attached.String()
}

func (a *Agent) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
