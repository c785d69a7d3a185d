package shmarena

import (
	"math/bits"
	"unsafe"
)

// PayloadAlign is the alignment, in bytes, that every chunk header,
// footer, and payload address is held to.
const PayloadAlign = 16

// NumFreeLists is the number of segregated free lists: one per bit of a
// uintptr, indexed by size class ⌊log2(size)⌋.
const NumFreeLists = bits.UintSize

// chunkHeader opens every chunk, real or a free-list dummy head.
type chunkHeader struct {
	size uintptr // payload size in bytes, independent of allocation status
	prev uintptr // address of the previous chunk in its free list, or 0
}

// chunkFooter immediately follows a chunk's payload.
type chunkFooter struct {
	size uintptr // mirrors header.size while free; 0 while allocated
	next uintptr // address of the next chunk in its free list, or 0
}

const (
	chunkHeaderSize = unsafe.Sizeof(chunkHeader{})
	chunkFooterSize = unsafe.Sizeof(chunkFooter{})
	chunkOverhead   = chunkHeaderSize + chunkFooterSize

	// MinChunkSize is the smallest footprint addChunk accepts: header,
	// footer, and one aligned payload unit.
	MinChunkSize = chunkOverhead + PayloadAlign
)

func init() {
	if chunkHeaderSize%PayloadAlign != 0 || chunkFooterSize%PayloadAlign != 0 {
		panic("shmarena: chunk header/footer size is not a multiple of PayloadAlign on this platform (64-bit targets only)")
	}
}

func headerAt(addr uintptr) *chunkHeader {
	return (*chunkHeader)(unsafe.Pointer(addr))
}

// chunkSize returns the payload size recorded in a chunk's header.
func chunkSize(addr uintptr) uintptr {
	return headerAt(addr).size
}

// fullSize returns header+payload+footer footprint for a given payload size.
func fullSize(payload uintptr) uintptr {
	return chunkOverhead + payload
}

func footerAt(addr uintptr) *chunkFooter {
	return (*chunkFooter)(unsafe.Pointer(addr + chunkHeaderSize + chunkSize(addr)))
}

// payloadAt returns the address handed back to callers for a chunk.
func payloadAt(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr + chunkHeaderSize)
}

// chunkFromPayload recovers a chunk's header address from a payload
// pointer previously returned by Allocate. It panics on misalignment,
// which can only happen on heap corruption or caller misuse passing a
// pointer this allocator never produced.
func chunkFromPayload(p unsafe.Pointer) uintptr {
	addr := uintptr(p)
	if addr%PayloadAlign != 0 {
		panic("shmarena: misaligned payload pointer")
	}
	return addr - chunkHeaderSize
}

func isAllocated(addr uintptr) bool {
	return footerAt(addr).size == 0
}

// listIndex is the free-list size class for a non-zero payload size.
func listIndex(size uintptr) int {
	if size == 0 {
		panic("shmarena: list index of zero size")
	}
	return bits.Len64(uint64(size)) - 1
}

func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}
