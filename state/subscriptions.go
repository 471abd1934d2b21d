package state

import "sync"

// Subscriptions tracks the unsubscribe callbacks owned by one consumer.
type Subscriptions struct {
	mu     sync.Mutex
	unsubs []*tracked
	sched  Scheduler
}

type tracked struct {
	once  sync.Once
	unsub func()
}

func (t *tracked) run() {
	t.once.Do(t.unsub)
}

// NewSubscriptions creates a Subscriptions with a default scheduler.
func NewSubscriptions(scheduler Scheduler) *Subscriptions {
	return &Subscriptions{sched: scheduler}
}

// SetScheduler updates the default scheduler.
func (s *Subscriptions) SetScheduler(scheduler Scheduler) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()
}

// Scheduler returns the default scheduler.
func (s *Subscriptions) Scheduler() Scheduler {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	scheduler := s.sched
	s.mu.Unlock()
	return scheduler
}

// Add registers an unsubscribe callback. The returned release runs unsub
// once and stops tracking it; Clear skips released callbacks.
func (s *Subscriptions) Add(unsub func()) (release func()) {
	if s == nil || unsub == nil {
		return func() {}
	}
	t := &tracked{unsub: unsub}
	s.mu.Lock()
	s.unsubs = append(s.unsubs, t)
	s.mu.Unlock()
	return func() { s.release(t) }
}

func (s *Subscriptions) release(t *tracked) {
	s.mu.Lock()
	for i, cur := range s.unsubs {
		if cur == t {
			s.unsubs = append(s.unsubs[:i:i], s.unsubs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	t.run()
}

// Len returns the number of tracked callbacks.
func (s *Subscriptions) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unsubs)
}

// Subscribe registers a synchronous listener and tracks the unsubscribe.
// The returned function removes the subscription early.
func (s *Subscriptions) Subscribe(sub Subscribable, interest Interest, l Listener) func() {
	return s.SubscribeWithScheduler(sub, interest, nil, l)
}

// Observe registers a listener using the default scheduler.
func (s *Subscriptions) Observe(sub Subscribable, interest Interest, l Listener) func() {
	if s == nil {
		return func() {}
	}
	return s.SubscribeWithScheduler(sub, interest, s.Scheduler(), l)
}

// SubscribeWithScheduler registers a listener using a scheduler and tracks
// it. The returned function unsubscribes and drops the tracker entry.
func (s *Subscriptions) SubscribeWithScheduler(sub Subscribable, interest Interest, scheduler Scheduler, l Listener) func() {
	if s == nil || sub == nil || l == nil {
		return func() {}
	}
	var unsub func()
	if scheduler == nil {
		unsub = sub.Subscribe(interest, l)
	} else if sched, ok := sub.(interface {
		SubscribeWithScheduler(Interest, Scheduler, Listener) func()
	}); ok {
		unsub = sched.SubscribeWithScheduler(interest, scheduler, l)
	} else {
		unsub = sub.Subscribe(interest, l)
	}
	return s.Add(unsub)
}

// Clear unsubscribes all tracked callbacks.
func (s *Subscriptions) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, t := range unsubs {
		t.run()
	}
}
