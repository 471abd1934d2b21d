package runtime

import (
	"github.com/odvcencio/elevation/state"
)

// DeliveryPolicy chooses which loop messages deliver queued store
// notifications. A DeliverMsg always delivers.
type DeliveryPolicy int

const (
	// DeliverAlways delivers after every message, ticks included.
	DeliverAlways DeliveryPolicy = iota
	// DeliverOnMessage delivers after every message except ticks.
	DeliverOnMessage
	// DeliverOnTick delivers only on ticks.
	DeliverOnTick
	// DeliverManual delivers only on DeliverMsg.
	DeliverManual
)

func (p DeliveryPolicy) String() string {
	switch p {
	case DeliverAlways:
		return "always"
	case DeliverOnMessage:
		return "message"
	case DeliverOnTick:
		return "tick"
	case DeliverManual:
		return "manual"
	default:
		return "unknown"
	}
}

func (p DeliveryPolicy) delivers(msg Message) bool {
	if _, ok := msg.(DeliverMsg); ok {
		return true
	}
	_, tick := msg.(TickMsg)
	switch p {
	case DeliverManual:
		return false
	case DeliverOnMessage:
		return !tick
	case DeliverOnTick:
		return tick
	default:
		return true
	}
}

// Deliveries queues store notifications for the host loop. Bound instances
// subscribe through it, so their listeners always run on the loop goroutine.
type Deliveries struct {
	queue *state.Queue
	wake  wake
}

// NewDeliveries wraps queue; post wakes the loop when the first delivery
// arrives. A nil queue gets a fresh one.
func NewDeliveries(queue *state.Queue, post func(Message) bool) *Deliveries {
	if queue == nil {
		queue = state.NewQueue()
	}
	return &Deliveries{
		queue: queue,
		wake:  wake{msg: DeliverMsg{}, post: post},
	}
}

// Schedule queues fn and wakes the loop.
func (d *Deliveries) Schedule(fn func()) {
	if d == nil || fn == nil {
		return
	}
	d.queue.Schedule(fn)
	d.wake.request()
}

// Pending returns the number of queued notifications.
func (d *Deliveries) Pending() int {
	if d == nil {
		return 0
	}
	return d.queue.Len()
}

// Deliver runs the queued notifications and returns how many ran.
func (d *Deliveries) Deliver() int {
	if d == nil {
		return 0
	}
	d.wake.settle()
	return d.queue.Flush()
}
