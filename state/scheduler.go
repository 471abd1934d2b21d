package state

import "sync"

// Scheduler decides where a subscription's listener runs.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(func())

// Schedule calls f with fn.
func (f SchedulerFunc) Schedule(fn func()) {
	if f == nil || fn == nil {
		return
	}
	f(fn)
}

// DirectScheduler runs listeners inside the emitting call.
var DirectScheduler Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Queue holds deferred deliveries until its owner flushes them. Deliveries
// scheduled during a flush wait for the next one.
type Queue struct {
	mu    sync.Mutex
	items []func()
	total uint64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Schedule appends fn.
func (q *Queue) Schedule(fn func()) {
	if q == nil || fn == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.total++
	q.mu.Unlock()
}

// Len returns the number of deliveries waiting.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Total returns the number of deliveries ever scheduled.
func (q *Queue) Total() uint64 {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}

// Flush runs the waiting deliveries in order and returns how many ran. When
// one panics, the deliveries after it go back to the front of the queue and
// the panic continues.
func (q *Queue) Flush() (ran int) {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	batch := q.items
	q.items = nil
	q.mu.Unlock()

	defer func() {
		if ran >= len(batch) {
			return
		}
		rest := batch[ran+1:]
		q.mu.Lock()
		q.items = append(append(make([]func(), 0, len(rest)+len(q.items)), rest...), q.items...)
		q.mu.Unlock()
	}()
	for _, fn := range batch {
		fn()
		ran++
	}
	return ran
}
