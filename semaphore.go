package uthread

// Semaphore is a counting semaphore with a FIFO waiter list and an owner
// hint (spec.md §3, §4.4). Semaphore values are created exclusively via
// Runtime.NewSemaphore/NewMutex — there is no zero-value-then-init dance,
// unlike the C original's sem_init(&sem, n) in-place pattern, since Go has
// no equivalent need to pre-allocate the struct's storage separately from
// its construction.
type Semaphore struct {
	id      int
	value   int
	waiters []int // FIFO queue of thread ids, bounded by MaxThreads
	ownerID int   // sentinel when free
}

// ID returns the semaphore's unique id, as logged in ACQUIRED_SEM and
// friends.
func (s *Semaphore) ID() int { return s.id }

// Value returns the semaphore's current count. Exposed for tests asserting
// invariant P1 (value + outstanding_acquisitions == initial_value).
func (s *Semaphore) Value() int { return s.value }

// Waiters returns a snapshot of the FIFO waiter list, oldest first. Exposed
// for tests asserting T2/T4; callers must not rely on it staying current.
func (s *Semaphore) Waiters() []int {
	out := make([]int, len(s.waiters))
	copy(out, s.waiters)
	return out
}

// OwnerID returns the hint naming the most recent acquirer, or sentinel if
// the semaphore is free.
func (s *Semaphore) OwnerID() int { return s.ownerID }
