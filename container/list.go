package container

import (
	"unsafe"

	"github.com/relaypath/shmarena"
	"github.com/relaypath/shmarena/typed"
)

// listNode links to its neighbors by absolute address rather than by Go
// pointer: the node itself lives in shared memory and its links must
// stay meaningful read back by the addressing scheme the arena uses,
// not by the Go runtime's pointer representation in one process.
type listNode[T any] struct {
	val  T
	prev uintptr
	next uintptr
}

func nodeAddr[T any](n *listNode[T]) uintptr { return uintptr(unsafe.Pointer(n)) }

func nodeAt[T any](addr uintptr) *listNode[T] {
	if addr == 0 {
		return nil
	}
	return (*listNode[T])(unsafe.Pointer(addr))
}

func nextNode[T any](n *listNode[T]) *listNode[T] { return nodeAt[T](n.next) }

// List is a doubly linked, arena-backed sequence, the analogue of
// shared_list<T>. Each node is its own arena allocation, as in the C++
// original's node-based std::list.
type List[T any] struct {
	arena *shmarena.Arena
	nodes typed.Allocator[listNode[T]]
	head  *listNode[T]
	tail  *listNode[T]
	n     int
}

// NewList returns an empty List backed by a.
func NewList[T any](a *shmarena.Arena) *List[T] {
	return &List[T]{arena: a, nodes: typed.NewAllocator[listNode[T]](a)}
}

// Len returns the number of elements currently stored.
func (l *List[T]) Len() int { return l.n }

// PushBack appends val as a new node at the tail of the list.
func (l *List[T]) PushBack(val T) {
	node, err := typed.New[listNode[T]](l.arena)
	if err != nil {
		panic(err)
	}
	node.val = val
	if l.tail != nil {
		l.tail.next = nodeAddr(node)
		node.prev = nodeAddr(l.tail)
	} else {
		l.head = node
	}
	l.tail = node
	l.n++
}

// AppendRange appends a copy of each value in vals, the analogue of the
// C++ original's shared_list(begin, end) range construction used when
// copying a Vector's contents into a List.
func (l *List[T]) AppendRange(vals []T) {
	for _, v := range vals {
		l.PushBack(v)
	}
}

// Front returns the first element.
func (l *List[T]) Front() T { return l.head.val }

// Back returns the last element.
func (l *List[T]) Back() T { return l.tail.val }

// ToSlice copies every element into a freshly allocated Go slice, for
// comparison against a plain in-process control sequence.
func (l *List[T]) ToSlice() []T {
	out := make([]T, 0, l.n)
	for n := l.head; n != nil; n = nextNode(n) {
		out = append(out, n.val)
	}
	return out
}
