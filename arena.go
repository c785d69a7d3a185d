package shmarena

import (
	"fmt"
	"os"
	"unsafe"
)

// Arena is the public handle onto one attached shared-memory heap. The
// zero value is not usable; obtain one through Open.
type Arena struct {
	seg *segment
	h   *heap
}

// Open attaches to the named shared-memory segment, creating and
// initializing it first if oflag carries OTrunc (which marks the caller
// as the arena's master). An empty name resolves to DefaultName().
func Open(name string, oflag OpenFlag, mode os.FileMode) (*Arena, error) {
	if name == "" {
		name = DefaultName()
	}
	seg, h, err := openSegment(name, oflag, mode)
	if err != nil {
		return nil, err
	}
	return &Arena{seg: seg, h: h}, nil
}

// Close unmaps the segment. If this Arena is the master, the arena
// header is left in place (there is no mutex destructor to run; see
// segment_unix.go) but the name is not removed — call Unlink for that.
func (a *Arena) Close() error {
	if a.seg == nil {
		return ErrNotOpen
	}
	err := a.seg.close()
	a.seg = nil
	a.h = nil
	return err
}

// Unlink removes the segment's name from the filesystem. It does not
// close this Arena's own mapping.
func (a *Arena) Unlink() error {
	if a.seg == nil {
		return ErrNotOpen
	}
	return a.seg.unlink()
}

// Mode returns the file mode of the underlying shared-memory inode.
func (a *Arena) Mode() (os.FileMode, error) {
	if a.seg == nil {
		return 0, ErrNotOpen
	}
	return a.seg.Mode()
}

// Name returns the name this Arena was opened with.
func (a *Arena) Name() string {
	if a.seg == nil {
		return ""
	}
	return a.seg.Name()
}

// OFlag returns the flags this Arena was opened with, or 0 if closed.
func (a *Arena) OFlag() OpenFlag {
	if a.seg == nil {
		return 0
	}
	return a.seg.OFlag()
}

// Allocate reserves n bytes inside the arena and returns an aligned
// payload pointer valid across every process attached to the same
// arena. A request of zero bytes returns nil without locking.
func (a *Arena) Allocate(n int) (unsafe.Pointer, error) {
	if a.h == nil {
		return nil, ErrNotOpen
	}
	if n <= 0 {
		return nil, nil
	}
	size := alignUp(uintptr(n), PayloadAlign)

	a.h.hdr.mu.Lock()
	defer a.h.hdr.mu.Unlock()

	if c, ok := a.h.find(size); ok {
		a.h.allocateChunk(c, size)
		return payloadAt(c), nil
	}

	newSize, err := a.h.growPlan(size + chunkOverhead)
	if err != nil {
		return nil, err
	}
	if err := a.seg.truncate(newSize); err != nil {
		return nil, err
	}
	oldSize := a.h.hdr.size
	c := a.h.commitExtension(newSize)
	logger().Debug("extended segment", "name", a.Name(), "old", oldSize, "new", newSize)
	a.h.allocateChunk(c, size)
	return payloadAt(c), nil
}

// Deallocate releases a payload pointer previously returned by Allocate.
// Deallocating nil is a no-op.
func (a *Arena) Deallocate(p unsafe.Pointer) {
	if p == nil {
		return
	}
	if a.h == nil {
		panic("shmarena: deallocate on a closed arena")
	}
	addr := chunkFromPayload(p)

	a.h.hdr.mu.Lock()
	defer a.h.hdr.mu.Unlock()

	a.h.deallocateChunk(addr)
}

// Addr returns the base address every process attached to this arena
// maps the segment at. It is mostly useful for diagnostics and for the
// attach-address-honoured scenario in process_scenario_test.go.
func (a *Arena) Addr() uintptr {
	if a.h == nil {
		return 0
	}
	return a.h.base
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{name: %q, addr: %#x}", a.Name(), a.Addr())
}
