package uthread

import "time"

// runTimer is the timer loop: it fires every rt.cfg.tickInterval on its own
// goroutine (spec.md §5: "two additional OS-level threads exist for
// mechanism only... the timer loop runs on a dedicated OS thread") until
// Start's dispatch loop finishes and closes rt.stopTimer.
func (rt *Runtime) runTimer() {
	defer close(rt.timerDone)

	ticker := time.NewTicker(rt.cfg.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rt.stopTimer:
			return
		case <-ticker.C:
			rt.tick()
		}
	}
}

// tick performs spec.md §4.2's three steps, in order, under the scheduler
// lock. It is a plain function call, not a stack switch: per spec the timer
// "must not switch user contexts while holding the lock", and in this
// implementation the timer goroutine never switches a user context at all —
// see api.go's Thread.checkpoint for how a demotion actually hands control
// back to the scheduler.
func (rt *Runtime) tick() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.quantumStep() {
		// spec.md §4.2: "The tick returns without executing steps 2-3
		// (they run on the next tick)."
		return
	}
	rt.diskCompletionStep()
	rt.boostStep()
}

// tickMillis is how many milliseconds of quantum one tick represents.
func (rt *Runtime) tickMillis() int {
	return int(rt.cfg.tickInterval / time.Millisecond)
}

// quantumStep is step 1: quantum accounting and demotion. Returns true if a
// demotion occurred (caller must skip steps 2-3 this tick). Caller must hold
// rt.mu.
func (rt *Runtime) quantumStep() bool {
	t := rt.current
	if t == nil || t.state != StateRunning {
		return false
	}

	t.quantumUsed += rt.tickMillis()

	limitMS := int(rt.cfg.q1Quantum / time.Millisecond)
	if t.priority == 0 {
		limitMS = int(rt.cfg.q0Quantum / time.Millisecond)
	}

	if t.priority < MLFQLevels-1 && t.quantumUsed >= limitMS {
		old := t.priority
		t.priority++
		t.state = StateReady
		rt.stats.downgrades.Add(1)
		rt.logf(t.name, "MLFQ_DOWNGRADE Q%d->Q%d", old, t.priority)
		return true
	}
	return false
}

// diskCompletionStep is step 2: every DISK_WAIT TCB independently completes
// with probability 1/10 this tick. Caller must hold rt.mu.
func (rt *Runtime) diskCompletionStep() {
	for _, id := range rt.sortedIDs() {
		t := rt.threads[id]
		if t.state != StateDiskWait {
			continue
		}
		if rt.rng.Float64() < 0.1 {
			t.state = StateReady
			t.diskBlockID = sentinel
			rt.stats.diskCompletions.Add(1)
			rt.log(t.name, "DISK_IO_DONE")
		}
	}
}

// boostStep is step 3: the periodic priority boost. Caller must hold rt.mu.
func (rt *Runtime) boostStep() {
	rt.boostTicks += rt.tickMillis()
	if rt.boostTicks < int(rt.cfg.boostEvery/time.Millisecond) {
		return
	}
	rt.boostTicks = 0

	for _, t := range rt.threads {
		if t.state != StateFinished {
			t.priority = 0
		}
	}
	rt.stats.boosts.Add(1)
	rt.log("SYSTEM", "MLFQ_BOOST_ALL_TO_Q0")
}
