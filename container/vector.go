// Package container supplies the two sequence types the spec's test
// scenarios actually exercise on top of typed.Allocator: Vector and
// List, the Go analogues of original_source/shared_container.h's
// shared_vector and shared_list. shared_map, shared_set, and the other
// STL aliases in that header are deliberately not ported; nothing in
// spec.md's testable scenarios exercises an ordered or hashed container
// (see DESIGN.md).
package container

import (
	"github.com/relaypath/shmarena"
	"github.com/relaypath/shmarena/typed"
)

// Vector is a growable, arena-backed sequence, the analogue of
// shared_vector<T>. It has no in-place resize: growth allocates a larger
// backing slice, copies, and frees the old one, exactly the amortized
// strategy std::vector itself uses through its allocator.
type Vector[T any] struct {
	alloc typed.Allocator[T]
	data  []T
	n     int
}

// NewVector returns an empty Vector backed by a.
func NewVector[T any](a *shmarena.Arena) *Vector[T] {
	return &Vector[T]{alloc: typed.NewAllocator[T](a)}
}

// Len returns the number of elements currently stored.
func (v *Vector[T]) Len() int { return v.n }

// At returns the element at index i.
func (v *Vector[T]) At(i int) T { return v.data[i] }

// Set overwrites the element at index i.
func (v *Vector[T]) Set(i int, val T) { v.data[i] = val }

// Front returns the first element.
func (v *Vector[T]) Front() T { return v.data[0] }

// Back returns the last element.
func (v *Vector[T]) Back() T { return v.data[v.n-1] }

// PushBack appends val, growing the backing allocation if necessary.
func (v *Vector[T]) PushBack(val T) {
	if v.n == len(v.data) {
		v.grow()
	}
	v.data[v.n] = val
	v.n++
}

func (v *Vector[T]) grow() {
	newCap := len(v.data) * 2
	if newCap == 0 {
		newCap = 4
	}
	newData, err := v.alloc.Allocate(newCap)
	if err != nil {
		panic(err)
	}
	copy(newData, v.data[:v.n])
	if v.data != nil {
		v.alloc.Deallocate(v.data)
	}
	v.data = newData
}

// Erase removes the element at index i, shifting later elements down.
func (v *Vector[T]) Erase(i int) {
	copy(v.data[i:v.n-1], v.data[i+1:v.n])
	v.n--
}

// Clear releases the backing allocation and empties the vector.
func (v *Vector[T]) Clear() {
	if v.data != nil {
		v.alloc.Deallocate(v.data)
	}
	v.data = nil
	v.n = 0
}

// Slice returns the in-use portion of the backing allocation. The
// returned slice aliases arena memory and is invalidated by the next
// PushBack that triggers a grow.
func (v *Vector[T]) Slice() []T { return v.data[:v.n] }
