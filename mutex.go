package shmarena

// processMutex is a process-shared binary semaphore of initial value 1,
// embedded directly inside arenaHeader so every attached process
// synchronizes through the same shared-memory word rather than a named
// OS object. A sync.Mutex cannot be used here: its fast path is backed
// by the Go runtime's own futex bookkeeping, which is only meaningful
// between goroutines of one runtime, not across processes. See
// mutex_linux.go and mutex_other.go for the two backing implementations.
//
// There is no owner-death recovery; a process that crashes while holding
// the lock leaves every other attacher blocked forever (spec.md §9,
// "Crash recovery").
type processMutex struct {
	state uint32
}
