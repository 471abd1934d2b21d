package runtime

import (
	"context"
	"time"

	"github.com/odvcencio/elevation/state"
)

// Services exposes host-level scheduling and messaging helpers.
type Services struct {
	host *Host
}

// Services returns a service handle for the host.
func (h *Host) Services() Services {
	return Services{host: h}
}

func (s Services) isZero() bool {
	return s.host == nil
}

// Bound reports whether the services belong to a host.
func (s Services) Bound() bool {
	return s.host != nil
}

// Scheduler returns the host state scheduler.
func (s Services) Scheduler() state.Scheduler {
	if s.host == nil {
		return nil
	}
	return s.host.StateScheduler()
}

// InvalidateScheduler returns the host invalidation scheduler.
func (s Services) InvalidateScheduler() state.Scheduler {
	if s.host == nil {
		return nil
	}
	return s.host.InvalidateScheduler()
}

// Invalidate requests a render pass.
func (s Services) Invalidate() {
	if s.host == nil {
		return
	}
	s.host.Invalidate()
}

// Post sends a message into the host loop.
func (s Services) Post(msg Message) bool {
	if s.host == nil {
		return false
	}
	return s.host.TryPost(msg)
}

// Do runs fn on the host loop. Without a host, fn runs immediately.
func (s Services) Do(fn func()) bool {
	if fn == nil {
		return false
	}
	if s.host == nil {
		fn()
		return true
	}
	return s.host.Do(fn)
}

// DoWait runs fn on the host loop like Do, but while the message buffer is
// full it retries with backoff until ctx is done. It returns false when fn
// was never queued. Without a host, fn runs immediately.
func (s Services) DoWait(ctx context.Context, fn func()) bool {
	if fn == nil {
		return false
	}
	if s.host == nil {
		fn()
		return true
	}
	delay := time.Millisecond
	for !s.host.Do(fn) {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		if delay < 50*time.Millisecond {
			delay *= 2
		}
	}
	return true
}

// Spawn starts an effect using the host task context.
func (s Services) Spawn(effect Effect) {
	if s.host == nil {
		return
	}
	s.host.Spawn(effect)
}

// After schedules a delayed message.
func (s Services) After(delay time.Duration, msg Message) {
	if s.host == nil {
		return
	}
	s.host.After(delay, msg)
}

// Every schedules a recurring message.
func (s Services) Every(interval time.Duration, fn func(time.Time) Message) {
	if s.host == nil {
		return
	}
	s.host.Every(interval, fn)
}
