package runtime

import (
	"context"
	"time"
)

// PostFunc sends a message into the host. It returns false when the message
// buffer is full.
type PostFunc func(Message) bool

// Effect is background work tied to the host's lifetime. Run must return
// once ctx is done and report back only through post; store writes belong
// in a CallMsg so they happen on the loop.
type Effect struct {
	Name string
	Run  func(ctx context.Context, post PostFunc)
}

// After posts msg once delay has passed. A non-positive delay posts at once.
func After(delay time.Duration, msg Message) Effect {
	return Effect{
		Name: "after",
		Run: func(ctx context.Context, post PostFunc) {
			if msg == nil || post == nil {
				return
			}
			if delay > 0 && !sleep(ctx, delay) {
				return
			}
			post(msg)
		},
	}
}

// Every calls fn on each interval and posts what it returns. A nil message
// skips the post.
func Every(interval time.Duration, fn func(time.Time) Message) Effect {
	return Effect{
		Name: "every",
		Run: func(ctx context.Context, post PostFunc) {
			if interval <= 0 || fn == nil || post == nil {
				return
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					if msg := fn(now); msg != nil {
						post(msg)
					}
				}
			}
		},
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
