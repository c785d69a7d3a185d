package shmarena

import "errors"

// Sentinel errors for the conditions named in spec.md §7. Corruption and
// API-misuse conditions panic instead; these are reserved
// for the system and resource errors a caller is expected to handle.
var (
	// ErrSegmentTooLarge is returned when an existing segment's size
	// already exceeds MaxSegmentSize.
	ErrSegmentTooLarge = errors.New("shmarena: segment exceeds MaxSegmentSize")

	// ErrMapFailed is returned when mmap of the segment fails.
	ErrMapFailed = errors.New("shmarena: mmap failed")

	// ErrAttachAddressMismatch is returned when an attaching process
	// cannot obtain the master's recorded base address.
	ErrAttachAddressMismatch = errors.New("shmarena: could not map at the master's recorded address")

	// ErrOutOfMemory is returned when extension cannot satisfy a
	// request within MaxSegmentSize.
	ErrOutOfMemory = errors.New("shmarena: segment cannot grow to satisfy the request")

	// ErrNotOpen is returned by operations on an Arena that has not
	// been opened, or has already been closed.
	ErrNotOpen = errors.New("shmarena: arena is not open")
)
