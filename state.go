package uthread

import "sync/atomic"

// ThreadState is the sum type for a TCB's lifecycle state (spec.md §3).
// Representing it as its own type, rather than a bare int, is the "tagged
// state" re-architecture spec.md §9 asks for; the BLOCKED variant's target
// (which semaphore) is still carried as the TCB's waiting_for field rather
// than folded into the type itself, since Go lacks sum-type payloads and
// splitting it out keeps invariant I2 a one-line check instead of a type
// switch.
type ThreadState int32

const (
	// StateReady: runnable, waiting for the scheduler to dispatch it.
	StateReady ThreadState = iota
	// StateRunning: currently executing (at most one TCB at a time, I1).
	StateRunning
	// StateBlocked: waiting on a semaphore (I2).
	StateBlocked
	// StateDiskWait: waiting for simulated disk I/O completion.
	StateDiskWait
	// StateFinished: terminal. Holds no locks, owns no frames (I3).
	StateFinished
)

// String implements fmt.Stringer, matching eventloop's LoopState.String.
func (s ThreadState) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateBlocked:
		return "BLOCKED"
	case StateDiskWait:
		return "DISK_WAIT"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// runState tracks whether a Runtime has been started and/or terminated.
// It is a small, non-cache-line-padded cousin of eventloop's FastState:
// thread_state above is mutated only under the scheduler lock and so needs
// no atomics of its own, but Start races (calling Start twice
// concurrently) are settled without taking the scheduler lock, so this one
// value is CAS'd independently.
type runState uint32

const (
	runNotStarted runState = iota
	runRunning
	runTerminated
)

type atomicRunState struct {
	v atomic.Uint32
}

func (s *atomicRunState) load() runState { return runState(s.v.Load()) }

func (s *atomicRunState) tryTransition(from, to runState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

func (s *atomicRunState) store(to runState) { s.v.Store(uint32(to)) }
