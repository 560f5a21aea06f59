package uthread

// EntryFunc is a thread body. self exposes the RuntimeAPI operations
// (Work, Yield, DiskIO, SemWait, SemPost, Malloc, Free) scoped to the
// calling thread; arg is whatever was passed to Runtime.Create.
//
// self is threaded explicitly, rather than recovered from a package-level
// "current" global or a goroutine-local lookup (Go has no user-space
// thread-local storage), per spec.md §9's instruction to avoid process-wide
// statics: every piece of mutable runtime state lives on *Runtime, and a
// thread body's only handle to it is the *Thread it's given.
type EntryFunc func(self *Thread, arg any)

// tcb is the thread control block (spec.md §3). Every field is guarded by
// Runtime.mu; callers never touch a tcb directly, only through *Thread or
// Runtime's RuntimeAPI-shaped methods.
type tcb struct {
	id   int
	name string

	state       ThreadState
	priority    int
	age         int
	quantumUsed int // milliseconds consumed in the current running turn

	entry EntryFunc
	arg   any
	stack StackHandle

	pageTable     [VirtualPages]int // UNMAPPED (sentinel) or frame index
	holdingLocks  [holdingLockSlots]int
	holdingCount  int // slots in use; purely a fast-path, recomputed from holdingLocks on demand is also fine
	waitingFor    int // sentinel, or the semaphore id this TCB is blocked on
	diskBlockID   int
}

func newTCB(id int, name string, priority int, entry EntryFunc, arg any) *tcb {
	t := &tcb{
		id:         id,
		name:       name,
		state:      StateReady,
		priority:   priority,
		waitingFor: sentinel,
	}
	for i := range t.pageTable {
		t.pageTable[i] = sentinel
	}
	for i := range t.holdingLocks {
		t.holdingLocks[i] = sentinel
	}
	t.entry = entry
	t.arg = arg
	return t
}

// holdLock records semaphore id sid into the first free holding_locks slot.
// If every slot is occupied, the acquisition is still considered to have
// succeeded by the caller (spec.md §4.4, §7 LockSlotExhausted) — this just
// reports whether it recorded the ownership, so Runtime can count the miss.
func (t *tcb) holdLock(sid int) (recorded bool) {
	for i := range t.holdingLocks {
		if t.holdingLocks[i] == sentinel {
			t.holdingLocks[i] = sid
			t.holdingCount++
			return true
		}
	}
	return false
}

// dropLock clears every slot holding sid (sem_post: "Remove sem.id from
// current.holding_locks (all matching slots)").
func (t *tcb) dropLock(sid int) {
	for i := range t.holdingLocks {
		if t.holdingLocks[i] == sid {
			t.holdingLocks[i] = sentinel
			t.holdingCount--
		}
	}
}

// dropAllLocks clears every held lock slot without posting to the
// semaphores (Open Question O1 — see SPEC_FULL.md: exit() does this
// intentionally, surfacing death-with-locks as an observable bug rather
// than masking it with an implicit post).
func (t *tcb) dropAllLocks() {
	for i := range t.holdingLocks {
		t.holdingLocks[i] = sentinel
	}
	t.holdingCount = 0
}
