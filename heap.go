package shmarena

import "unsafe"

// MinSegmentSize is the smallest segment the allocator will operate
// inside; segments smaller than this are truncated up on open.
const MinSegmentSize uintptr = 4096

// MaxSegmentSize is the largest committed size the allocator will grow
// a segment to. This package targets 64-bit platforms only: the value
// does not fit a 32-bit uintptr.
const MaxSegmentSize uintptr = 1 << 32

// chunkPair gives a free-list dummy head the exact memory layout of a
// real chunk (header immediately followed by footer, no payload gap) so
// that add/remove code can treat dummy heads and real chunks uniformly,
// per spec's "dummy heads are addressable as chunks" invariant.
type chunkPair struct {
	header chunkHeader
	footer chunkFooter
}

// arenaHeaderFields is the unpadded content of arenaHeader: the
// process-shared mutex, the base address every attaching process must
// map at, the committed size, and the free-list dummy heads.
type arenaHeaderFields struct {
	mu       processMutex
	addr     uintptr
	size     uintptr
	freeList [NumFreeLists]chunkPair
}

const rawArenaHeaderSize = unsafe.Sizeof(arenaHeaderFields{})

// arenaHeaderPad rounds rawArenaHeaderSize up to the next PayloadAlign
// multiple, the Go equivalent of the C++ original's
// __attribute__((aligned(16))) on driver (shared_allocator.cpp:115):
// without it, the first real chunk would not start on a PayloadAlign
// boundary.
const arenaHeaderPad = (PayloadAlign - rawArenaHeaderSize%PayloadAlign) % PayloadAlign

// arenaHeader is the singleton placed at offset 0 of every segment.
type arenaHeader struct {
	arenaHeaderFields
	_ [arenaHeaderPad]byte
}

const arenaHeaderSize = unsafe.Sizeof(arenaHeader{})
const freeListOffset = unsafe.Offsetof(arenaHeader{}.freeList)

func init() {
	if arenaHeaderSize > MinSegmentSize {
		panic("shmarena: arenaHeader exceeds MinSegmentSize; shrink NumFreeLists or enlarge MinSegmentSize")
	}
	if arenaHeaderSize%PayloadAlign != 0 {
		panic("shmarena: arenaHeader size is not a multiple of PayloadAlign; the first chunk would be misaligned")
	}
}

// heap is the in-process view of one attached arena: the base address of
// the mapping and a typed pointer to the header living there. Unlike
// original_source/shared_allocator.cpp's single global driver pointer,
// heap is a plain value so a process can attach to more than one arena
// at a time.
type heap struct {
	base uintptr
	hdr  *arenaHeader
}

func newHeap(base uintptr) *heap {
	return &heap{base: base, hdr: (*arenaHeader)(unsafe.Pointer(base))}
}

// initHeap placement-constructs a fresh arenaHeader at base and folds
// whatever is already committed beyond the header into one initial free
// chunk, mirroring the driver constructor in original_source/shared_allocator.cpp.
func initHeap(base, committed uintptr) *heap {
	h := newHeap(base)
	*h.hdr = arenaHeader{arenaHeaderFields: arenaHeaderFields{addr: base, size: committed}}
	remainder := committed - arenaHeaderSize
	if remainder >= MinChunkSize {
		h.addChunk(base+arenaHeaderSize, remainder)
	}
	return h
}

func attachHeap(base uintptr) *heap {
	return newHeap(base)
}

// firstChunk is where the first real chunk of the segment always begins.
func (h *heap) firstChunk() uintptr { return h.base + arenaHeaderSize }

func (h *heap) top() uintptr { return h.base + h.hdr.size }

// dummyHead returns the address of the dummy chunk heading free list i.
func (h *heap) dummyHead(i int) uintptr {
	return h.base + freeListOffset + uintptr(i)*unsafe.Sizeof(chunkPair{})
}

// addChunk initializes a free chunk of the given footprint at addr and
// coalesces it with its neighbors, inserting the result into the
// appropriate free list. Returns the resulting chunk's address.
func (h *heap) addChunk(addr, footprint uintptr) uintptr {
	if footprint%PayloadAlign != 0 {
		panic("shmarena: addChunk: size unaligned")
	}
	if footprint < MinChunkSize {
		panic("shmarena: addChunk: size too small")
	}
	hdr := headerAt(addr)
	hdr.size = footprint - chunkOverhead
	hdr.prev = 0
	ftr := footerAt(addr)
	ftr.size = hdr.size
	ftr.next = 0
	return h.coalesce(addr)
}

// before returns the chunk immediately preceding addr, if that chunk
// exists and is free.
func (h *heap) before(addr uintptr) (uintptr, bool) {
	if addr == h.firstChunk() {
		return 0, false
	}
	ftr := (*chunkFooter)(unsafe.Pointer(addr - chunkFooterSize))
	if ftr.size == 0 {
		return 0, false // allocated
	}
	payload := addr - chunkFooterSize - ftr.size
	return payload - chunkHeaderSize, true
}

// after returns the chunk immediately following addr, if that chunk
// exists within the committed segment and is free.
func (h *heap) after(addr uintptr) (uintptr, bool) {
	next := addr + fullSize(chunkSize(addr))
	if next+MinChunkSize > h.top() {
		return 0, false
	}
	if isAllocated(next) {
		return 0, false
	}
	return next, true
}

// add inserts addr at the head of its size class's free list.
func (h *heap) add(addr uintptr) {
	i := listIndex(chunkSize(addr))
	head := h.dummyHead(i)
	n := footerAt(head).next
	footerAt(head).next = addr
	headerAt(addr).prev = head
	footerAt(addr).next = n
	if n != 0 {
		headerAt(n).prev = addr
	}
}

// remove unlinks addr from whichever free list currently holds it.
func (h *heap) remove(addr uintptr) {
	p := headerAt(addr).prev
	n := footerAt(addr).next
	headerAt(addr).prev = 0
	footerAt(addr).next = 0
	footerAt(p).next = n
	if n != 0 {
		headerAt(n).prev = p
	}
}

// split shrinks the chunk at addr by remsize and folds the freed tail of
// that size back into the free lists via addChunk.
func (h *heap) split(addr, remsize uintptr) {
	if remsize < MinChunkSize {
		panic("shmarena: split: remainder too small")
	}
	if remsize%PayloadAlign != 0 {
		panic("shmarena: split: remainder unaligned")
	}
	headerAt(addr).size -= remsize
	ftr := footerAt(addr)
	ftr.size = 0
	ftr.next = 0
	next := addr + fullSize(chunkSize(addr))
	h.addChunk(next, remsize)
}

// coalesce merges addr with any free immediate neighbors and reinserts
// the combined chunk into the appropriate free list. No two free chunks
// are ever left adjacent.
func (h *heap) coalesce(addr uintptr) uintptr {
	b, hasB := h.before(addr)
	a, hasA := h.after(addr)
	if !hasA && !hasB {
		h.add(addr)
		return addr
	}
	if hasB {
		h.remove(b)
	}
	if hasA {
		h.remove(a)
	}
	newSize := fullSize(chunkSize(addr))
	if hasB {
		newSize += fullSize(chunkSize(b))
	}
	if hasA {
		newSize += fullSize(chunkSize(a))
	}
	start := addr
	if hasB {
		start = b
	}
	return h.addChunk(start, newSize)
}

// allocateChunk removes addr from its free list and marks it allocated,
// splitting off a trailing free remainder when one large enough to be a
// chunk in its own right would otherwise be wasted.
func (h *heap) allocateChunk(addr, reqsize uintptr) {
	if reqsize%PayloadAlign != 0 {
		panic("shmarena: allocate: size unaligned")
	}
	if chunkSize(addr) < reqsize {
		panic("shmarena: allocate: chunk too small")
	}
	h.remove(addr)
	remsize := chunkSize(addr) - reqsize
	if remsize >= MinChunkSize {
		h.split(addr, remsize)
	} else {
		footerAt(addr).size = 0
	}
}

// deallocateChunk restores addr's free-status footer and coalesces it.
func (h *heap) deallocateChunk(addr uintptr) {
	if footerAt(addr).size != 0 {
		panic("shmarena: deallocate: chunk is not in allocated form")
	}
	footerAt(addr).size = headerAt(addr).size
	h.coalesce(addr)
}

// find walks the free lists first-fit starting at size's own class.
func (h *heap) find(size uintptr) (uintptr, bool) {
	for i := listIndex(size); i < NumFreeLists; i++ {
		c := footerAt(h.dummyHead(i)).next
		for c != 0 {
			if chunkSize(c) >= size {
				return c, true
			}
			c = footerAt(c).next
		}
	}
	return 0, false
}

// growPlan computes the new committed size needed to satisfy delta
// additional bytes via geometric doubling, or reports out-of-memory.
func (h *heap) growPlan(delta uintptr) (uintptr, error) {
	s := h.hdr.size
	for s < MaxSegmentSize && s-h.hdr.size < delta {
		s *= 2
	}
	if s-h.hdr.size < delta {
		return 0, ErrOutOfMemory
	}
	return s, nil
}

// commitExtension records a new committed size (the caller must already
// have truncated the backing file to newSize) and folds the newly
// exposed range into the free lists, coalescing with a free tail chunk
// if one exists.
func (h *heap) commitExtension(newSize uintptr) uintptr {
	addr := h.top()
	grown := newSize - h.hdr.size
	h.hdr.size = newSize
	return h.addChunk(addr, grown)
}
