package runtime

import "time"

// Message represents an event flowing into the host loop.
// Messages come from timers, effects, or other goroutines.
type Message interface {
	isMessage()
}

// TickMsg is sent on each tick when the host has a tick rate.
type TickMsg struct {
	Time time.Time
}

func (TickMsg) isMessage() {}

// DeliverMsg delivers queued store notifications regardless of the host's
// DeliveryPolicy.
type DeliverMsg struct{}

func (DeliverMsg) isMessage() {}

// InvalidateMsg requests a render pass.
type InvalidateMsg struct{}

func (InvalidateMsg) isMessage() {}

// CallMsg runs Fn on the loop goroutine.
type CallMsg struct {
	Fn func()
}

func (CallMsg) isMessage() {}

// QuitMsg stops the host loop.
type QuitMsg struct{}

func (QuitMsg) isMessage() {}
