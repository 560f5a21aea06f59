package uthread

import (
	"time"
)

// Thread is the handle an EntryFunc receives as self. It exposes every
// RuntimeAPI operation (spec.md §6) scoped to the calling thread. A thread
// body never reaches into *Runtime directly; every mutation goes through
// one of these methods, each of which acquires rt.mu for its critical
// section exactly as spec.md §2 describes ("each entry point acquires the
// scheduler lock, mutates TCB/semaphore/frame state, and either returns...
// or performs a stack switch back to the scheduler").
type Thread struct {
	rt  *Runtime
	tcb *tcb
}

// ID returns the thread's assigned id.
func (t *Thread) ID() int { return t.tcb.id }

// Name returns the thread's "T<id>" label.
func (t *Thread) Name() string { return t.tcb.name }

// Work simulates units milliseconds of CPU-bound execution. Real wall-clock
// time must actually pass for the concurrent timer goroutine to have a
// chance to preempt this thread (Go gives no way for one goroutine to
// forcibly suspend another's call stack), so each unit sleeps briefly and
// then checkpoints: if the timer has since demoted this thread out of
// RUNNING (spec.md §4.2 step 1), Work parks immediately instead of waiting
// for the caller to notice on its own. This is the cooperative-checkpoint
// translation of the original's signal-driven preemption into Go's
// goroutine model — see DESIGN.md's cooperative-checkpoint section.
func (t *Thread) Work(units int) {
	for i := 0; i < units && t.checkpoint(); i++ {
		time.Sleep(time.Millisecond)
	}
}

// checkpoint reports whether this thread is still RUNNING, parking (and
// blocking until redispatched) if a concurrent timer tick has already
// demoted it. Always returns true, including after the thread was parked
// and has been redispatched, so Work's next iteration runs normally.
func (t *Thread) checkpoint() bool {
	t.rt.mu.Lock()
	running := t.tcb.state == StateRunning
	t.rt.mu.Unlock()
	if !running {
		t.rt.host.Park(t.tcb.stack)
	}
	return true
}

// Yield voluntarily gives up the remainder of this thread's turn.
func (t *Thread) Yield() {
	t.rt.mu.Lock()
	t.tcb.state = StateReady
	t.rt.log(t.tcb.name, "YIELD")
	t.rt.mu.Unlock()
	t.rt.host.Park(t.tcb.stack)
}

// Exit terminates this thread. It is called automatically if the thread's
// EntryFunc returns without calling it explicitly.
//
// Exit returns to its caller: a body that calls it keeps running until the
// body itself returns, and control passes back to the scheduler only then.
//
// Per spec.md's open question O1 (see SPEC_FULL.md): Exit clears every
// holding_locks slot but does NOT post to those semaphores. Any thread
// blocked waiting on a semaphore this thread died holding remains BLOCKED
// forever — intentional, so that death-with-locks is an observable bug
// rather than one silently papered over.
func (t *Thread) Exit() {
	t.rt.mu.Lock()
	t.tcb.state = StateFinished
	t.rt.log(t.tcb.name, "FINISHED")
	t.tcb.dropAllLocks()
	t.rt.freeAllFrames(t.tcb)
	t.rt.mu.Unlock()
	// No Park call: returning here lets the trampoline's entry() return,
	// which the Host treats as an implicit final park (see host.go).
}

// DiskIO simulates a blocking disk read/write of the given block. The
// thread resumes READY once the timer tick draws a completion for it
// (spec.md §4.2 step 2).
func (t *Thread) DiskIO(blockID int) {
	t.rt.mu.Lock()
	t.tcb.state = StateDiskWait
	t.tcb.diskBlockID = blockID
	t.rt.logf(t.tcb.name, "DISK_IO_START %d", blockID)
	t.rt.mu.Unlock()
	t.rt.host.Park(t.tcb.stack)
}

// Malloc maps enough additional virtual pages to satisfy size bytes,
// evicting a uniformly random physical frame if none are free, and returns
// a fabricated virtual address (spec.md §4.5).
func (t *Thread) Malloc(size int) int {
	t.rt.mu.Lock()
	defer t.rt.mu.Unlock()
	return t.rt.malloc(t.tcb, size)
}

// Free releases every page this thread has mapped (spec.md §4.5; the
// address argument is ignored, matching the original's semantics).
func (t *Thread) Free(vaddr int) {
	t.rt.mu.Lock()
	defer t.rt.mu.Unlock()
	t.rt.free(t.tcb)
}

