package uthread

// NewSemaphore creates a counting semaphore with the given initial value
// (spec.md §4.4 sem_init), assigning it the next id from the generator
// seeded at semaphoreIDSeed.
func (rt *Runtime) NewSemaphore(initial int) *Semaphore {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	id := rt.nextSemID
	rt.nextSemID++
	s := &Semaphore{id: id, value: initial, ownerID: sentinel}
	rt.semaphores[id] = s
	return s
}

// SemWait acquires sem, blocking this thread if no unit is currently
// available (spec.md §4.4 sem_wait).
func (t *Thread) SemWait(sem *Semaphore) {
	rt := t.rt
	rt.mu.Lock()

	if sem.value > 0 {
		sem.value--
		sem.ownerID = t.tcb.id
		if !t.tcb.holdLock(sem.id) {
			rt.stats.lockSlotExhausted.Add(1)
			rt.diagnostic(lockExhaustionCategory{t.tcb.id}, t.tcb.name, "LockSlotExhausted: holding_locks full, ownership untracked")
		}
		rt.logf(t.tcb.name, "ACQUIRED_SEM %d", sem.id)
		rt.mu.Unlock()
		return
	}

	sem.waiters = append(sem.waiters, t.tcb.id)
	t.tcb.state = StateBlocked
	t.tcb.waitingFor = sem.id
	rt.logf(t.tcb.name, "BLOCKED_ON_SEM %d_OWNED_BY_%d", sem.id, sem.ownerID)
	rt.mu.Unlock()

	rt.host.Park(t.tcb.stack)
}

// SemPost releases sem, either handing it directly to the head of its FIFO
// waiter list or, if none are waiting, incrementing its value (spec.md
// §4.4 sem_post). SemPost never itself suspends the calling thread.
func (t *Thread) SemPost(sem *Semaphore) {
	rt := t.rt
	rt.mu.Lock()
	defer rt.mu.Unlock()

	t.tcb.dropLock(sem.id)
	sem.ownerID = sentinel

	if len(sem.waiters) == 0 {
		sem.value++
		return
	}

	wid := sem.waiters[0]
	sem.waiters = sem.waiters[1:]
	w := rt.threads[wid]
	w.state = StateReady
	w.waitingFor = sentinel
	sem.ownerID = wid
	if !w.holdLock(sem.id) {
		rt.stats.lockSlotExhausted.Add(1)
		rt.diagnostic(lockExhaustionCategory{w.id}, w.name, "LockSlotExhausted: holding_locks full, ownership untracked")
	}

	rt.logf(t.tcb.name, "SIGNAL_HANDOVER %d_TO_%s", sem.id, w.name)
	rt.log(w.name, "UNBLOCKED_BY_SEM")
}

// lockExhaustionCategory gives go-catrate a distinct rate-limit bucket per
// thread, so one thread's repeated exhaustion doesn't consume another's
// diagnostic budget.
type lockExhaustionCategory struct{ threadID int }
