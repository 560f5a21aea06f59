package uthread

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestSingleRunningInvariant covers invariant I1 ("at most one TCB is
// RUNNING"): two CPU-bound threads dispatched under the real GoroutineHost
// must never both observe StateRunning at the same instant.
func TestSingleRunningInvariant(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(1))

	var mu sync.Mutex
	runningCount := 0
	maxObserved := 0

	probe := func(self *Thread, _ any) {
		for i := 0; i < 5; i++ {
			mu.Lock()
			runningCount++
			if runningCount > maxObserved {
				maxObserved = runningCount
			}
			mu.Unlock()

			self.Work(3)

			mu.Lock()
			runningCount--
			mu.Unlock()
		}
	}

	rt.Create(probe, nil, 0)
	rt.Create(probe, nil, 0)

	if err := rt.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if maxObserved > 1 {
		t.Fatalf("invariant I1 violated: observed %d threads concurrently marked running", maxObserved)
	}
}

// TestBoostResetsAllToQ0 exercises the boost path behind T5: with a 5ms
// quantum and a 20ms boost interval, a CPU-bound thread is demoted at least
// once and at least one MLFQ_BOOST_ALL_TO_Q0 is logged.
func TestBoostResetsAllToQ0(t *testing.T) {
	var buf bytes.Buffer
	rt := New(
		WithLogWriter(&buf),
		WithQuantums(5*time.Millisecond, 5*time.Millisecond),
		WithBoostInterval(20*time.Millisecond),
		WithRandSeed(2),
	)

	done := make(chan struct{})
	rt.Create(func(self *Thread, _ any) {
		self.Work(60)
		close(done)
	}, nil, 0)

	go func() {
		if err := rt.Start(); err != nil {
			t.Errorf("Start: %v", err)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("thread never finished")
	}

	out := buf.String()
	if !strings.Contains(out, "MLFQ_DOWNGRADE") {
		t.Error("expected at least one MLFQ_DOWNGRADE before boost")
	}
	if !strings.Contains(out, "MLFQ_BOOST_ALL_TO_Q0") {
		t.Error("expected at least one MLFQ_BOOST_ALL_TO_Q0")
	}
}

// TestDispatchSelectionIsDeterministic covers T6: given identical priorities,
// the scheduler always selects the lowest-id READY thread first.
func TestDispatchSelectionIsDeterministic(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(3))

	var mu sync.Mutex
	var order []string

	body := func(self *Thread, _ any) {
		mu.Lock()
		order = append(order, self.Name())
		mu.Unlock()
	}

	rt.Create(body, nil, 1)
	rt.Create(body, nil, 1)
	rt.Create(body, nil, 1)

	if err := rt.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if len(order) != 3 {
		t.Fatalf("expected 3 dispatches, got %d: %v", len(order), order)
	}
	if order[0] != "T0" || order[1] != "T1" || order[2] != "T2" {
		t.Fatalf("expected ascending-id dispatch order, got %v", order)
	}
}

// TestCPUBoundDemotionThenBoost is scenario E1: a single CPU-bound thread
// run long enough to be demoted through every MLFQ level, then reset to 0
// by the periodic boost, without ever losing forward progress.
func TestCPUBoundDemotionThenBoost(t *testing.T) {
	var buf bytes.Buffer
	rt := New(
		WithLogWriter(&buf),
		WithQuantums(5*time.Millisecond, 5*time.Millisecond),
		WithBoostInterval(15*time.Millisecond),
		WithRandSeed(4),
	)

	rt.Create(func(self *Thread, _ any) {
		self.Work(80)
	}, nil, 0)

	if err := rt.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stats := rt.Stats()
	if stats.Downgrades == 0 {
		t.Error("expected at least one downgrade over 80ms of work at a 5ms quantum")
	}
	if stats.Boosts == 0 {
		t.Error("expected at least one boost over 80ms of work at a 15ms boost interval")
	}
}

// TestStarvationAvoidance is scenario E6: a low-priority thread must still
// make progress (not starve) once boosted back to Q0, even in the presence
// of a continuously-runnable high-priority sibling.
func TestStarvationAvoidance(t *testing.T) {
	var buf bytes.Buffer
	rt := New(
		WithLogWriter(&buf),
		WithQuantums(5*time.Millisecond, 5*time.Millisecond),
		WithBoostInterval(20*time.Millisecond),
		WithRandSeed(5),
	)

	lowDone := make(chan struct{})
	rt.Create(func(self *Thread, _ any) {
		self.Work(100)
	}, nil, 0) // hog: keeps yielding its own slice back in via repeated Work

	rt.Create(func(self *Thread, _ any) {
		self.Work(5)
		close(lowDone)
	}, nil, 2)

	go func() {
		if err := rt.Start(); err != nil {
			t.Errorf("Start: %v", err)
		}
	}()

	select {
	case <-lowDone:
	case <-time.After(5 * time.Second):
		t.Fatal("low-priority thread starved: boost never let it complete")
	}
}

// TestAllFinishedStopsTheTimer confirms Start returns promptly once every
// thread reaches FINISHED, rather than running the timer goroutine forever.
func TestAllFinishedStopsTheTimer(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(6))

	rt.Create(func(self *Thread, _ any) {
		self.Work(1)
	}, nil, 0)

	errc := make(chan error, 1)
	go func() { errc <- rt.Start() }()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start never returned")
	}

	if err := rt.Start(); err != ErrRuntimeAlreadyRunning {
		t.Fatalf("expected ErrRuntimeAlreadyRunning, got %v", err)
	}
}
