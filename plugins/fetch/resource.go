package fetch

import (
	"context"
	"errors"
	"sync"

	"github.com/odvcencio/elevation/elevation"
	"github.com/odvcencio/elevation/runtime"
	"github.com/odvcencio/elevation/state"
)

// Response is the observable result of a Resource.
type Response[T any] struct {
	Data    T
	Loading bool
	Err     error
	Status  int
}

// Resource keeps the result of one request in a store key.
type Resource[T any] struct {
	client *Client
	inst   *runtime.Instance
	key    state.Key[T]
	req    Request
	view   *elevation.View[T]

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	loading  bool
	err      error
	status   int
	attached bool
}

// Use binds a request to key for inst. The request runs on every attach and
// on Refetch; the decoded body is written to key. Readers of key elsewhere
// see the data like any other write.
func Use[T any](c *Client, inst *runtime.Instance, key state.Key[T], req Request) *Resource[T] {
	r := &Resource[T]{
		client: c,
		inst:   inst,
		key:    key,
		req:    req,
		view:   elevation.Elevated(c.api, inst, key.Get, state.Keys(key.Name())),
	}
	inst.OnAttach(func() {
		r.mu.Lock()
		r.attached = true
		r.mu.Unlock()
		r.start()
	})
	inst.OnDetach(r.stop)
	return r
}

// Get returns the current data and request status.
func (r *Resource[T]) Get() Response[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Response[T]{
		Data:    r.view.Get(),
		Loading: r.loading,
		Err:     r.err,
		Status:  r.status,
	}
}

// Refetch cancels any request in flight and issues the request again.
// It does nothing while the instance is detached.
func (r *Resource[T]) Refetch() {
	r.mu.Lock()
	attached := r.attached
	r.mu.Unlock()
	if attached {
		r.start()
	}
}

func (r *Resource[T]) start() {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.loading = true
	r.err = nil
	r.mu.Unlock()
	r.inst.Invalidate()

	run := func(parent context.Context) {
		ctx, cancel := context.WithCancel(parent)
		defer cancel()
		if !r.track(gen, cancel) {
			return
		}
		var data T
		status, err := r.client.Do(ctx, r.req, &data)
		r.deliver(ctx, gen, data, status, err)
	}

	services := r.inst.Services()
	if services.Bound() {
		services.Spawn(runtime.Effect{
			Name: "fetch:" + r.key.Name(),
			Run: func(ctx context.Context, _ runtime.PostFunc) {
				run(ctx)
			},
		})
		return
	}
	go run(context.Background())
}

func (r *Resource[T]) track(gen uint64, cancel context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return false
	}
	r.cancel = cancel
	return true
}

// deliver applies a result on the host loop. A bound instance waits for
// room in the loop's buffer; only an unbound one applies in place.
func (r *Resource[T]) deliver(ctx context.Context, gen uint64, data T, status int, err error) {
	apply := func() {
		if !r.current(gen) {
			return
		}
		canceled := errors.Is(err, context.Canceled)
		if err == nil {
			if _, werr := r.client.api.Elevate()(r.key.Set(data)); werr != nil {
				err = werr
			}
		}

		r.mu.Lock()
		if gen == r.gen {
			r.cancel = nil
			r.loading = false
			r.status = status
			if !canceled {
				r.err = err
			}
		}
		r.mu.Unlock()

		if err != nil && !canceled {
			r.client.logger.Warn("fetch failed", "key", r.key.Name(), "error", err)
		}
		r.inst.Invalidate()
	}
	r.inst.Services().DoWait(ctx, apply)
}

func (r *Resource[T]) current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen == r.gen
}

func (r *Resource[T]) stop() {
	r.mu.Lock()
	r.attached = false
	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.loading = false
	r.mu.Unlock()
}
