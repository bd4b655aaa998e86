// Package deferred provides a small promise primitive: a Deferred is settled
// exactly once by its producer, and consumers observe the outcome through the
// read-only Promise, either with callbacks or by waiting.
//
// Callbacks registered on a Promise run in registration order, exactly once,
// after settlement. A callback registered on an already settled Promise runs
// immediately on the registering goroutine.
package deferred

import (
	"context"
	"fmt"
	"sync"
)

// State is the settlement state of a Promise.
type State int32

const (
	// Pending means neither Resolve nor Reject has been called yet.
	Pending State = iota
	// Resolved means the Promise holds a value.
	Resolved
	// Rejected means the Promise holds an error.
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type callback[T any] struct {
	on State // Pending means "either outcome"
	fn func(T, error)
}

// Promise is the consumer side of a Deferred.
type Promise[T any] struct {
	mu        sync.Mutex
	state     State
	value     T
	err       error
	callbacks []callback[T]
	done      chan struct{}
}

// Deferred is the producer side. Only the first Resolve or Reject counts.
type Deferred[T any] struct {
	p *Promise[T]
}

// New returns a pending Deferred.
func New[T any]() *Deferred[T] {
	return &Deferred[T]{p: &Promise[T]{done: make(chan struct{})}}
}

// Promise returns the read-only side of d.
func (d *Deferred[T]) Promise() *Promise[T] { return d.p }

// Resolve settles the promise with v. It reports whether this call settled it.
func (d *Deferred[T]) Resolve(v T) bool {
	return d.p.settle(Resolved, v, nil)
}

// Reject settles the promise with err. A nil err is replaced by
// ErrRejected so a rejected promise always carries an error.
func (d *Deferred[T]) Reject(err error) bool {
	if err == nil {
		err = ErrRejected
	}
	var zero T
	return d.p.settle(Rejected, zero, err)
}

func (p *Promise[T]) settle(state State, v T, err error) bool {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return false
	}
	p.state, p.value, p.err = state, v, err
	pending := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range pending {
		cb.run(state, v, err)
	}
	return true
}

func (cb callback[T]) run(state State, v T, err error) {
	if cb.on == Pending || cb.on == state {
		cb.fn(v, err)
	}
}

func (p *Promise[T]) register(on State, fn func(T, error)) *Promise[T] {
	cb := callback[T]{on: on, fn: fn}
	p.mu.Lock()
	if p.state == Pending {
		p.callbacks = append(p.callbacks, cb)
		p.mu.Unlock()
		return p
	}
	state, v, err := p.state, p.value, p.err
	p.mu.Unlock()
	cb.run(state, v, err)
	return p
}

// Done registers fn for a successful outcome.
func (p *Promise[T]) Done(fn func(T)) *Promise[T] {
	return p.register(Resolved, func(v T, _ error) { fn(v) })
}

// Fail registers fn for a failed outcome.
func (p *Promise[T]) Fail(fn func(error)) *Promise[T] {
	return p.register(Rejected, func(_ T, err error) { fn(err) })
}

// Always registers fn for either outcome.
func (p *Promise[T]) Always(fn func(T, error)) *Promise[T] {
	return p.register(Pending, fn)
}

// State returns the current settlement state.
func (p *Promise[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until p settles or ctx is done.
func (p *Promise[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go runs fn on a new goroutine and settles the returned promise with its
// result. A panic in fn rejects the promise with ErrPanicked. Callbacks run
// outside the recovery.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Promise[T] {
	d := New[T]()
	go func() {
		v, err := call(ctx, fn)
		if err != nil {
			d.Reject(err)
			return
		}
		d.Resolve(v)
	}()
	return d.Promise()
}

// call runs fn, turning a panic into an error.
func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return fn(ctx)
}

// ResolvedWith returns a promise already resolved with v.
func ResolvedWith[T any](v T) *Promise[T] {
	d := New[T]()
	d.Resolve(v)
	return d.Promise()
}

// RejectedWith returns a promise already rejected with err.
func RejectedWith[T any](err error) *Promise[T] {
	d := New[T]()
	d.Reject(err)
	return d.Promise()
}
