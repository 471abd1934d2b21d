// Package state provides a keyed, observable state store.
//
// A Store holds a single State mapping. Writes are shallow merges; the store
// diffs the top-level keys of the merged result against the current state and
// notifies only the subscriptions whose Interest overlaps the changed keys.
// Writes that change nothing are dropped without notifying anyone.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrActionFailed wraps errors returned by a FuncE action.
var ErrActionFailed = errors.New("state: action failed")

// StoreConfig configures a Store.
type StoreConfig struct {
	// Logger receives debug output for commits and warnings for failed
	// actions. Defaults to slog.Default().
	Logger *slog.Logger

	// Observers receive every store event.
	Observers []Observer
}

type subscription struct {
	interest  Interest
	listener  Listener
	scheduler Scheduler
	live      bool
}

type emission struct {
	changed []string
	next    State
}

// Store owns a State and fans out change notifications.
type Store struct {
	mu        sync.Mutex
	state     State
	version   uint64
	subs      []*subscription
	observers []*observerEntry
	pending   []emission
	draining  bool
	logger    *slog.Logger
}

type observerEntry struct {
	observer Observer
}

// NewStore creates a store holding initial.
func NewStore(initial State) *Store {
	return NewStoreWithConfig(initial, StoreConfig{})
}

// NewStoreWithConfig creates a store holding initial.
func NewStoreWithConfig(initial State, cfg StoreConfig) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		state:  initial.Clone(),
		logger: logger,
	}
	if s.state == nil {
		s.state = State{}
	}
	for _, obs := range cfg.Observers {
		if obs != nil {
			s.observers = append(s.observers, &observerEntry{observer: obs})
		}
	}
	return s
}

// State returns the last committed state.
func (s *Store) State() State {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	current := s.state
	s.mu.Unlock()
	return current
}

// Version returns the number of commits so far.
func (s *Store) Version() uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Set merges action into the state and notifies subscribers.
func (s *Store) Set(action Action) (bool, error) {
	return s.SetState(action, true)
}

// SetState merges action into the state.
//
// It returns false when the merged state has no changed keys; nothing is
// committed and nobody is notified. With emit false the change is committed
// without notifying subscribers, which is meant for seeding before any
// reader exists. A failing action commits nothing.
func (s *Store) SetState(action Action, emit bool) (bool, error) {
	if s == nil || action == nil {
		return false, nil
	}
	start := time.Now()
	for {
		s.mu.Lock()
		current := s.state
		version := s.version
		s.mu.Unlock()

		partial, err := action.apply(current)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrActionFailed, err)
			s.logger.Warn("state action failed", "error", err)
			s.observe(Event{Kind: EventError, Version: version, Err: err, Prev: current, Silent: !emit, Duration: time.Since(start)})
			return false, err
		}
		next := current.Merge(partial)
		changed := ChangedKeys(current, next)
		if len(changed) == 0 {
			s.logger.Debug("state write was a no-op", "version", version)
			s.observe(Event{Kind: EventNoop, Version: version, Prev: current, Next: current, Silent: !emit, Duration: time.Since(start)})
			return false, nil
		}

		s.mu.Lock()
		if s.version != version {
			// Another writer committed since we read; apply again on top of it.
			s.mu.Unlock()
			continue
		}
		s.state = next
		s.version++
		version = s.version
		subscribers := s.liveCountLocked()
		s.mu.Unlock()

		s.logger.Debug("state committed", "version", version, "changed", changed, "silent", !emit)
		s.observe(Event{
			Kind:        EventCommit,
			Version:     version,
			Changed:     changed,
			Silent:      !emit,
			Subscribers: subscribers,
			Prev:        current,
			Next:        next,
			Duration:    time.Since(start),
		})
		if emit {
			s.dispatch(emission{changed: changed, next: next})
		}
		return true, nil
	}
}

// Emit notifies subscriptions interested in changed with the current state.
func (s *Store) Emit(changed []string) {
	if s == nil {
		return
	}
	s.dispatch(emission{changed: append([]string(nil), changed...), next: s.State()})
}

// Subscribe registers l for changes matching interest and returns a function
// that removes it. Subscribing the same listener again is a no-op that
// returns a remover for the existing subscription.
func (s *Store) Subscribe(interest Interest, l Listener) func() {
	return s.SubscribeWithScheduler(interest, nil, l)
}

// SubscribeWithScheduler registers l and delivers its notifications through
// scheduler. If scheduler is nil, notifications run synchronously.
func (s *Store) SubscribeWithScheduler(interest Interest, scheduler Scheduler, l Listener) func() {
	if s == nil || l == nil {
		return func() {}
	}
	s.mu.Lock()
	var sub *subscription
	for _, existing := range s.subs {
		if sameListener(existing.listener, l) {
			sub = existing
			break
		}
	}
	if sub == nil {
		sub = &subscription{
			interest:  interest,
			listener:  l,
			scheduler: scheduler,
			live:      true,
		}
		s.subs = append(s.subs, sub)
	}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.remove(sub)
		})
	}
}

// Unsubscribe removes the subscription registered for l.
func (s *Store) Unsubscribe(l Listener) bool {
	if s == nil || l == nil {
		return false
	}
	s.mu.Lock()
	var sub *subscription
	for _, existing := range s.subs {
		if sameListener(existing.listener, l) {
			sub = existing
			break
		}
	}
	s.mu.Unlock()
	if sub == nil {
		return false
	}
	return s.remove(sub)
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveCountLocked()
}

// Observe adds an observer and returns a function that removes it.
func (s *Store) Observe(obs Observer) func() {
	if s == nil || obs == nil {
		return func() {}
	}
	entry := &observerEntry{observer: obs}
	s.mu.Lock()
	s.observers = append(s.observers, entry)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.observers {
			if existing == entry {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// WaitFor blocks until pred holds for the current state or ctx is done.
// The predicate is checked on every commit that notifies subscribers.
func (s *Store) WaitFor(ctx context.Context, interest Interest, pred func(State) bool) (State, error) {
	if s == nil || pred == nil {
		return nil, errors.New("state: nil store or predicate")
	}
	matched := make(chan State, 1)
	l := NewListener(func(next State) {
		if pred(next) {
			select {
			case matched <- next:
			default:
			}
		}
	})
	unsub := s.Subscribe(interest, l)
	defer unsub()
	if current := s.State(); pred(current) {
		return current, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case next := <-matched:
		return next, nil
	}
}

func (s *Store) remove(sub *subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.subs {
		if existing == sub {
			existing.live = false
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) liveCountLocked() int {
	return len(s.subs)
}

func (s *Store) isLive(sub *subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sub.live
}

// dispatch queues an emission and drains the queue unless a drain is
// already running further up the stack.
func (s *Store) dispatch(e emission) {
	s.mu.Lock()
	s.pending = append(s.pending, e)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.draining = false
			s.pending = nil
			s.mu.Unlock()
			panic(r)
		}
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		subs := append([]*subscription(nil), s.subs...)
		s.mu.Unlock()

		if len(subs) == 0 {
			continue
		}
		delivered := s.notify(subs, next)
		s.observe(Event{Kind: EventNotify, Changed: next.changed, Delivered: delivered, Subscribers: len(subs), Next: next.next})
	}
}

func (s *Store) notify(subs []*subscription, e emission) int {
	delivered := 0
	for _, sub := range subs {
		if !sub.interest.Matches(e.changed) {
			continue
		}
		// A listener earlier in this pass may have removed sub.
		if !s.isLive(sub) {
			continue
		}
		delivered++
		if sub.scheduler == nil {
			sub.listener.OnState(e.next)
			continue
		}
		next := e.next
		sub.scheduler.Schedule(func() {
			if s.isLive(sub) {
				sub.listener.OnState(next)
			}
		})
	}
	return delivered
}

func (s *Store) observe(ev Event) {
	s.mu.Lock()
	if len(s.observers) == 0 {
		s.mu.Unlock()
		return
	}
	observers := append([]*observerEntry(nil), s.observers...)
	s.mu.Unlock()
	for _, entry := range observers {
		entry.observer.ObserveStore(ev)
	}
}
