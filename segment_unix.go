//go:build unix

package shmarena

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// shmDir is where Linux (and, via the same tmpfs convention, most other
// unix kernels this package targets) exposes POSIX shared-memory
// objects as ordinary files, the same convention other_examples'
// mosn_shm_linux.go and srediag-plugin-shm/shm_linux.go build on instead
// of binding libc's shm_open directly.
const shmDir = "/dev/shm/"

func shmPath(name string) string { return shmDir + name }

func protFlags(oflag OpenFlag) int {
	read, write := mapProt(oflag)
	prot := 0
	if read {
		prot |= unix.PROT_READ
	}
	if write {
		prot |= unix.PROT_WRITE
	}
	return prot
}

// openSegment implements the attachment protocol of spec.md §4.5: open
// (create/truncate as requested), stat and grow to MinSegmentSize if
// needed, mmap the full MaxSegmentSize window, then either initialize a
// fresh arenaHeader (master) or negotiate the master's mapping address
// (attacher).
func openSegment(name string, oflag OpenFlag, mode os.FileMode) (*segment, *heap, error) {
	flags := os.O_RDWR
	if oflag&OCreate != 0 {
		flags |= os.O_CREATE
	}
	if oflag&OTrunc != 0 {
		flags |= os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(shmPath(name), flags, mode)
	if err != nil {
		return nil, nil, fmt.Errorf("shmarena: open: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("shmarena: stat: %w", err)
	}
	size := uintptr(st.Size())
	if size > MaxSegmentSize {
		f.Close()
		return nil, nil, ErrSegmentTooLarge
	}
	if size < MinSegmentSize {
		if err := f.Truncate(int64(MinSegmentSize)); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("shmarena: truncate: %w", err)
		}
		size = MinSegmentSize
	}

	prot := protFlags(oflag)
	data, err := unix.Mmap(int(f.Fd()), 0, int(MaxSegmentSize), prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrMapFailed, err)
	}
	base := uintptr(unsafe.Pointer(&data[0]))

	s := &segment{name: name, oflag: oflag, file: f, base: base, data: data}

	var h *heap
	if oflag&OTrunc != 0 {
		h = initHeap(base, size)
		logger().Debug("created arena", "name", name, "addr", fmt.Sprintf("%#x", base), "size", size)
	} else {
		want := (*arenaHeader)(unsafe.Pointer(base)).addr
		if want != base {
			if err := unix.Munmap(data); err != nil {
				f.Close()
				return nil, nil, fmt.Errorf("shmarena: munmap: %w", err)
			}
			remapped, err := mmapFixed(int(f.Fd()), want, prot)
			if err != nil {
				f.Close()
				return nil, nil, fmt.Errorf("%w: %v", ErrAttachAddressMismatch, err)
			}
			s.data = remapped
			s.base = want
			base = want
		}
		h = attachHeap(base)
		logger().Debug("attached to arena", "name", name, "addr", fmt.Sprintf("%#x", base))
	}
	return s, h, nil
}

// mmapFixed remaps the segment at exactly addr using MAP_FIXED_NOREPLACE,
// so attach fails loudly rather than silently mapping somewhere else.
// golang.org/x/sys/unix.Mmap has no address-hint parameter, so this goes
// through a raw unix.Syscall6 with unix.SYS_MMAP directly.
func mmapFixed(fd int, addr uintptr, prot int) ([]byte, error) {
	ptr, _, errno := unix.Syscall6(unix.SYS_MMAP, addr, uintptr(MaxSegmentSize), uintptr(prot), uintptr(unix.MAP_SHARED|unix.MAP_FIXED_NOREPLACE), uintptr(fd), 0)
	if errno != 0 {
		return nil, errno
	}
	if ptr != addr {
		return nil, fmt.Errorf("kernel mapped %#x, wanted %#x", ptr, addr)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(MaxSegmentSize)), nil
}

// truncate grows the backing file; it is the only suspension point
// inside the mutex's critical section (spec.md §5).
func (s *segment) truncate(size uintptr) error {
	if err := s.file.Truncate(int64(size)); err != nil {
		return fmt.Errorf("shmarena: ftruncate: %w", err)
	}
	return nil
}

// close unmaps the segment and closes its file descriptor. Unlike the
// C++ original there is no mutex destructor to run on master close: a
// processMutex owns no resources beyond the memory word itself.
func (s *segment) close() error {
	if s.file == nil {
		return ErrNotOpen
	}
	munmapErr := unix.Munmap(s.data)
	closeErr := s.file.Close()
	s.file = nil
	s.data = nil
	s.base = 0
	s.oflag = 0
	if munmapErr != nil {
		return fmt.Errorf("shmarena: munmap: %w", munmapErr)
	}
	if closeErr != nil {
		return fmt.Errorf("shmarena: close: %w", closeErr)
	}
	return nil
}

func (s *segment) unlink() error {
	if err := unix.Unlink(shmPath(s.name)); err != nil {
		return fmt.Errorf("shmarena: unlink: %w", err)
	}
	return nil
}
