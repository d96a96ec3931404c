// Package lazy provides a value that is built once, on first use, and shared afterwards.
package lazy

import (
	"sync"
	"sync/atomic"
)

// Value holds a lazily built *T. The zero value is ready to use.
//
// Get takes an atomic fast path once the value exists and falls back to a
// mutex-guarded check-then-build on first use, so concurrent first callers
// run build exactly once and all observe the same fully built instance.
type Value[T any] struct {
	ptr atomic.Pointer[T]
	mu  sync.Mutex
}

// Get returns the stored value, building it with build on first use.
func (v *Value[T]) Get(build func() *T) *T {
	if p := v.ptr.Load(); p != nil {
		return p
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if p := v.ptr.Load(); p != nil {
		return p
	}
	p := build()
	v.ptr.Store(p)
	return p
}

// Loaded reports whether the value has been built.
func (v *Value[T]) Loaded() bool {
	return v.ptr.Load() != nil
}
