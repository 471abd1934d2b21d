// Package runtime runs component instances against a single-threaded host
// loop. Every store write issued through the host happens on the loop
// goroutine, one message at a time.
package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/odvcencio/elevation/state"
)

// ErrHostRunning is returned when Run is called on a running host.
var ErrHostRunning = errors.New("runtime: host already running")

// UpdateFunc handles a message and returns true if a render is needed.
type UpdateFunc func(host *Host, msg Message) bool

// RenderFunc draws the tree after an update pass.
type RenderFunc func(root Node)

// HostConfig configures a Host.
type HostConfig struct {
	Root          Node
	Update        UpdateFunc
	Render        RenderFunc
	MessageBuffer int
	TickRate      time.Duration
	StateQueue    *state.Queue
	Delivery      DeliveryPolicy
	Logger        *slog.Logger
}

// Host owns a component tree and serializes all work onto one goroutine.
type Host struct {
	root        Node
	update      UpdateFunc
	renderFn    RenderFunc
	messages    chan Message
	tickRate    time.Duration
	stateQueue  *state.Queue
	deliveries  *Deliveries
	delivery    DeliveryPolicy
	invalidator *Invalidator
	logger      *slog.Logger

	taskMu         sync.Mutex
	taskCtx        context.Context
	taskCancel     context.CancelFunc
	pendingEffects []Effect

	running atomic.Bool
	quit    bool
	dirty   bool
	frames  atomic.Int64
}

// NewHost creates a new Host from config.
func NewHost(cfg HostConfig) *Host {
	bufferSize := cfg.MessageBuffer
	if bufferSize <= 0 {
		bufferSize = 128
	}
	queue := cfg.StateQueue
	if queue == nil {
		queue = state.NewQueue()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	host := &Host{
		root:       cfg.Root,
		update:     cfg.Update,
		renderFn:   cfg.Render,
		messages:   make(chan Message, bufferSize),
		tickRate:   cfg.TickRate,
		stateQueue: queue,
		delivery:   cfg.Delivery,
		logger:     logger,
	}
	// Tick and manual policies deliver on their own schedule, so queued
	// notifications only wake the loop under the message policies.
	var wakeup func(Message) bool
	if cfg.Delivery == DeliverAlways || cfg.Delivery == DeliverOnMessage {
		wakeup = host.TryPost
	}
	host.deliveries = NewDeliveries(queue, wakeup)
	host.invalidator = NewInvalidator(host.TryPost)
	return host
}

// Root returns the mounted root node.
func (h *Host) Root() Node {
	return h.root
}

// StateQueue returns the host's state queue.
func (h *Host) StateQueue() *state.Queue {
	if h == nil {
		return nil
	}
	return h.stateQueue
}

// StateScheduler returns the scheduler bound instances subscribe through.
// Listeners scheduled on it run on the loop at the next delivery point.
func (h *Host) StateScheduler() state.Scheduler {
	if h == nil || h.deliveries == nil {
		return nil
	}
	return h.deliveries
}

// Deliveries returns the host's notification queue.
func (h *Host) Deliveries() *Deliveries {
	if h == nil {
		return nil
	}
	return h.deliveries
}

// InvalidateScheduler returns a scheduler that invalidates the render pass.
func (h *Host) InvalidateScheduler() state.Scheduler {
	if h == nil || h.invalidator == nil {
		return nil
	}
	return h.invalidator
}

// Invalidate requests a render pass.
func (h *Host) Invalidate() {
	if h == nil || h.invalidator == nil {
		return
	}
	h.invalidator.Invalidate()
}

// Frames returns the number of render passes so far.
func (h *Host) Frames() int64 {
	if h == nil {
		return 0
	}
	return h.frames.Load()
}

// Spawn starts an effect using the host task context.
// If Run has not started, the effect is queued until start.
func (h *Host) Spawn(effect Effect) {
	if h == nil || effect.Run == nil {
		return
	}
	h.taskMu.Lock()
	if h.taskCtx == nil {
		h.pendingEffects = append(h.pendingEffects, effect)
		h.taskMu.Unlock()
		return
	}
	ctx := h.taskCtx
	h.taskMu.Unlock()
	h.start(ctx, effect)
}

// After schedules a delayed message using the host task context.
func (h *Host) After(delay time.Duration, msg Message) {
	h.Spawn(After(delay, msg))
}

// Every schedules a recurring message using the host task context.
func (h *Host) Every(interval time.Duration, fn func(time.Time) Message) {
	h.Spawn(Every(interval, fn))
}

// SetRoot swaps the root node. Once the host is running, call it from the
// loop goroutine, for example inside Do.
func (h *Host) SetRoot(root Node) {
	if h.running.Load() && h.root != nil {
		h.unmount(h.root)
	}
	h.root = root
	if h.running.Load() && root != nil {
		h.mount(root)
		h.dirty = true
	}
}

// Post sends a message to the event loop.
func (h *Host) Post(msg Message) {
	_ = h.TryPost(msg)
}

// TryPost sends a message to the event loop without blocking.
func (h *Host) TryPost(msg Message) bool {
	if h == nil || h.messages == nil {
		return false
	}
	select {
	case h.messages <- msg:
		return true
	default:
		return false
	}
}

// Do runs fn on the loop goroutine.
func (h *Host) Do(fn func()) bool {
	if fn == nil {
		return false
	}
	return h.TryPost(CallMsg{Fn: fn})
}

// Quit asks the loop to stop.
func (h *Host) Quit() {
	h.Post(QuitMsg{})
}

// Run starts the event loop until quit or context cancellation. The tree is
// mounted on start and unmounted on exit, so detach hooks always run.
func (h *Host) Run(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrHostRunning
	}
	defer h.running.Store(false)
	if ctx == nil {
		ctx = context.Background()
	}
	taskCtx, taskCancel := context.WithCancel(ctx)
	h.taskMu.Lock()
	h.taskCtx = taskCtx
	h.taskCancel = taskCancel
	h.taskMu.Unlock()
	defer func() {
		taskCancel()
		h.taskMu.Lock()
		h.taskCtx = nil
		h.taskCancel = nil
		h.taskMu.Unlock()
	}()

	if h.update == nil {
		h.update = DefaultUpdate
	}
	h.quit = false
	if h.root != nil {
		h.mount(h.root)
	}
	defer func() {
		if h.root != nil {
			h.unmount(h.root)
		}
	}()
	h.logger.Debug("host started", "tick_rate", h.tickRate, "delivery", h.delivery)

	h.dirty = true
	h.startPendingEffects()

	var ticks <-chan time.Time
	if h.tickRate > 0 {
		ticker := time.NewTicker(h.tickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for !h.quit {
		if h.dirty {
			h.render()
			h.dirty = false
		}

		var msg Message
		select {
		case <-ctx.Done():
			h.logger.Debug("host stopping", "reason", ctx.Err())
			h.cancelTasks()
			return ctx.Err()
		case msg = <-h.messages:
		case now := <-ticks:
			msg = TickMsg{Time: now}
		}

		if h.update(h, msg) {
			h.dirty = true
		}
		if h.delivery.delivers(msg) && h.deliveries.Deliver() > 0 {
			h.dirty = true
		}
		if _, ok := msg.(InvalidateMsg); ok {
			h.invalidator.settle()
		}
	}

	h.logger.Debug("host stopped")
	h.cancelTasks()
	return nil
}

// DefaultUpdate handles the host's built-in messages.
func DefaultUpdate(host *Host, msg Message) bool {
	if host == nil {
		return false
	}
	switch m := msg.(type) {
	case CallMsg:
		if m.Fn != nil {
			m.Fn()
		}
		return true
	case InvalidateMsg:
		return true
	case QuitMsg:
		host.quit = true
		return false
	default:
		return false
	}
}

func (h *Host) mount(root Node) {
	BindTree(root, h.Services())
	MountTree(root)
}

func (h *Host) unmount(root Node) {
	defer UnbindTree(root)
	UnmountTree(root)
	// Deliver anything the detach hooks queued while the tree was live.
	h.deliveries.Deliver()
}

func (h *Host) render() {
	if h.root == nil {
		return
	}
	UpdateTree(h.root)
	if h.renderFn != nil {
		h.renderFn(h.root)
	}
	h.frames.Add(1)
}

func (h *Host) cancelTasks() {
	h.taskMu.Lock()
	cancel := h.taskCancel
	h.taskMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (h *Host) startPendingEffects() {
	h.taskMu.Lock()
	effects := h.pendingEffects
	h.pendingEffects = nil
	ctx := h.taskCtx
	h.taskMu.Unlock()
	for _, effect := range effects {
		h.start(ctx, effect)
	}
}

func (h *Host) start(ctx context.Context, effect Effect) {
	if effect.Name != "" {
		h.logger.Debug("effect started", "effect", effect.Name)
	}
	go effect.Run(ctx, h.TryPost)
}
