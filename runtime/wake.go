package runtime

import "sync/atomic"

// wake posts msg at most once until the loop settles it. Requests made
// while the message is in flight fold into it.
type wake struct {
	msg       Message
	post      func(Message) bool
	pending   atomic.Bool
	requests  atomic.Int64
	coalesced atomic.Int64
}

func (w *wake) request() {
	w.requests.Add(1)
	if w.post == nil {
		return
	}
	if !w.pending.CompareAndSwap(false, true) {
		w.coalesced.Add(1)
		return
	}
	// A full buffer drops the post; the next request retries.
	if !w.post(w.msg) {
		w.pending.Store(false)
	}
}

func (w *wake) settle() {
	w.pending.Store(false)
}

// Invalidator turns render requests from many instances into one
// InvalidateMsg per loop iteration.
type Invalidator struct {
	wake wake
}

// NewInvalidator creates an invalidator that posts through post.
func NewInvalidator(post func(Message) bool) *Invalidator {
	return &Invalidator{wake: wake{msg: InvalidateMsg{}, post: post}}
}

// Invalidate requests a render pass.
func (i *Invalidator) Invalidate() {
	if i == nil {
		return
	}
	i.wake.request()
}

// Schedule runs fn and requests a render pass. Used as a subscription
// scheduler it makes every store notification dirty the next frame.
func (i *Invalidator) Schedule(fn func()) {
	if fn == nil {
		return
	}
	fn()
	i.Invalidate()
}

// Requests returns how many render passes were requested.
func (i *Invalidator) Requests() int64 {
	if i == nil {
		return 0
	}
	return i.wake.requests.Load()
}

// Coalesced returns how many requests were folded into a pending one.
func (i *Invalidator) Coalesced() int64 {
	if i == nil {
		return 0
	}
	return i.wake.coalesced.Load()
}

func (i *Invalidator) settle() {
	if i != nil {
		i.wake.settle()
	}
}
