// Package shmarena implements a dynamic memory allocator that lives
// entirely inside a POSIX named shared-memory segment, so that several
// independent OS processes can share pointer-rich data structures by
// mapping the segment at one common virtual address.
//
// # Overview
//
// One process (the master) creates the segment with the truncate flag
// and initializes the arena header at its start. Any number of other
// processes (attachers) subsequently open the same name and map the
// segment at the master's recorded base address. From then on every
// process sees the exact same bytes at the exact same addresses, which
// lets the allocator store real pointers (not just offsets) inside the
// arena: free-list links, the arena's own base-address back-pointer,
// and anything an application builds on top of it.
//
// # Basic Usage
//
//	a, err := shmarena.Open("", shmarena.ORdwr|shmarena.OCreate|shmarena.OTrunc, 0600)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer a.Close()
//
//	p, err := a.Allocate(64)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer a.Deallocate(p)
//
// A second process attaches to the same arena by opening the same name
// without the truncate flag:
//
//	b, err := shmarena.Open(a.Name(), shmarena.ORdwr, 0)
//
// # Allocation Algorithm
//
// Chunks are boundary-tagged (a header carrying the payload size and a
// free-list back-pointer, a footer carrying the allocation status and a
// free-list forward-pointer) and segregated into free lists indexed by
// ⌊log2(size)⌋. Allocation is first-fit within a size class, walking
// progressively larger classes until one fits or the segment must grow.
// Freeing coalesces with both immediate neighbors so that no two free
// chunks are ever adjacent.
//
// # Concurrency
//
// A single process-shared mutex lives inside the arena header and
// brackets every allocate/deallocate. There is no finer-grained locking
// and no timeout: a process that crashes while holding the mutex leaves
// the arena inaccessible to everyone else.
//
// # Non-goals
//
// Resizing an allocation in place, defragmentation beyond immediate
// coalescing, recovery from a crash that leaves the mutex held,
// NUMA/page-coloring awareness, and allocations larger than the
// configured maximum segment size are all out of scope.
package shmarena
