// Package typed adapts shmarena.Arena into a stateless, per-type
// allocator, the Go generics analogue of original_source/shared_allocator.h's
// shared_allocator<T> template and its shared_t placement-new operators.
package typed

import (
	"unsafe"

	"github.com/relaypath/shmarena"
)

// Allocator allocates and frees slices of T inside one Arena. Like its
// C++ ancestor, it carries no state of its own beyond the Arena
// reference, so two Allocator[T] values over the same Arena are
// interchangeable.
type Allocator[T any] struct {
	Arena *shmarena.Arena
}

// NewAllocator builds an Allocator[T] bound to a.
func NewAllocator[T any](a *shmarena.Arena) Allocator[T] {
	return Allocator[T]{Arena: a}
}

// Allocate reserves space for n values of T and returns it as a slice
// whose backing memory lives inside the arena. Deallocate with the same
// Allocator to release it.
func (al Allocator[T]) Allocate(n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	p, err := al.Arena.Allocate(n * elemSize)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return unsafe.Slice((*T)(p), n), nil
}

// Deallocate releases a slice previously returned by Allocate.
// Deallocating an empty slice is a no-op.
func (al Allocator[T]) Deallocate(s []T) {
	if len(s) == 0 {
		return
	}
	al.Arena.Deallocate(unsafe.Pointer(&s[0]))
}

// New placement-allocates a single zeroed T in a, the analogue of
// `new(shared) T` in the C++ original.
func New[T any](a *shmarena.Arena) (*T, error) {
	s, err := NewAllocator[T](a).Allocate(1)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	var zero T
	s[0] = zero
	return &s[0], nil
}

// NewSlice placement-allocates n zeroed Ts in a.
func NewSlice[T any](a *shmarena.Arena, n int) ([]T, error) {
	s, err := NewAllocator[T](a).Allocate(n)
	if err != nil {
		return nil, err
	}
	var zero T
	for i := range s {
		s[i] = zero
	}
	return s, nil
}
