package uthread

// NewMutex creates a mutex, implemented exactly as spec.md §4.4 documents:
// "a mutex is a semaphore initialized to 1". Supplemented from
// original_source/ (see SPEC_FULL.md): uthread.c's uthread_mutex_* calls
// bypass its own semaphore type and go straight to the host mutex, even
// though uthread.h comments the mutex API as "Re-implemented using
// Semaphores" — this implementation follows that documented intent rather
// than the shortcut, so Lock/Unlock participate in the same FIFO hand-off,
// logging, and holding_locks bookkeeping as any other semaphore.
func (rt *Runtime) NewMutex() *Semaphore {
	return rt.NewSemaphore(1)
}

// Lock acquires m, blocking if already held.
func (t *Thread) Lock(m *Semaphore) { t.SemWait(m) }

// Unlock releases m.
func (t *Thread) Unlock(m *Semaphore) { t.SemPost(m) }
