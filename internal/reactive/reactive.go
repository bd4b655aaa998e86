// Package reactive provides the observable value wrapper used by hosts that
// hand live values (instead of plain ones) to a binding, along with the
// Unwrap helper that strips such wrappers back to their underlying value.
package reactive

import (
	"sync"
)

// maxUnwrapDepth bounds nested wrappers, e.g. a Var holding a Var.
const maxUnwrapDepth = 16

// Wrapper is implemented by any value that carries another value inside it.
type Wrapper interface {
	Unwrap() any
}

// Var is a mutable, observable value. Subscribers are called synchronously
// from Set, in the order they subscribed.
type Var[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[uint64]func(T)
	order  []uint64
	nextID uint64
}

// NewVar creates a Var holding v.
func NewVar[T any](v T) *Var[T] {
	return &Var[T]{
		value: v,
		subs:  make(map[uint64]func(T)),
	}
}

// Get returns the current value.
func (v *Var[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set replaces the current value and notifies subscribers.
func (v *Var[T]) Set(value T) {
	v.mu.Lock()
	v.value = value
	fns := make([]func(T), 0, len(v.order))
	for _, id := range v.order {
		fns = append(fns, v.subs[id])
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Subscribe registers fn for future changes. The returned function cancels
// the subscription and is safe to call more than once.
func (v *Var[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.order = append(v.order, id)

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if _, ok := v.subs[id]; !ok {
			return
		}
		delete(v.subs, id)
		for i, o := range v.order {
			if o == id {
				v.order = append(v.order[:i], v.order[i+1:]...)
				break
			}
		}
	}
}

// Unwrap implements Wrapper.
func (v *Var[T]) Unwrap() any {
	return v.Get()
}

// IsWrapped reports whether value is a Wrapper.
func IsWrapped(value any) bool {
	_, ok := value.(Wrapper)
	return ok
}

// Unwrap returns the plain value behind any number of wrappers. Values that
// are not wrapped are returned unchanged.
func Unwrap(value any) any {
	for i := 0; i < maxUnwrapDepth; i++ {
		w, ok := value.(Wrapper)
		if !ok {
			return value
		}
		value = w.Unwrap()
	}
	return value
}
