package uthread

import (
	"bytes"
	"testing"
	"time"
)

// TestDiskIOCompletesEventually is scenario E5: a thread blocked in DiskIO
// eventually resumes READY, driven by the timer's per-tick geometric
// completion draw rather than any fixed delay.
func TestDiskIOCompletesEventually(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(30), WithTickInterval(2*time.Millisecond))

	done := make(chan struct{})
	rt.Create(func(self *Thread, _ any) {
		self.DiskIO(7)
		close(done)
	}, nil, 0)

	errc := make(chan error, 1)
	go func() { errc <- rt.Start() }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("disk-blocked thread never resumed")
	}

	if err := <-errc; err != nil {
		t.Fatalf("Start: %v", err)
	}

	if rt.Stats().DiskCompletions == 0 {
		t.Error("expected at least one recorded disk completion")
	}
}

// TestDiskIOUnblocksOnlyTheRightThread confirms two threads independently
// blocked on different blocks, at different priorities, both resume and
// finish their bodies.
func TestDiskIOUnblocksOnlyTheRightThread(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(31), WithTickInterval(2*time.Millisecond))

	doneA := make(chan struct{})
	doneB := make(chan struct{})

	rt.Create(func(self *Thread, _ any) {
		self.DiskIO(1)
		close(doneA)
	}, nil, 0)
	rt.Create(func(self *Thread, _ any) {
		self.DiskIO(2)
		close(doneB)
	}, nil, 1)

	go func() {
		if err := rt.Start(); err != nil {
			t.Errorf("Start: %v", err)
		}
	}()

	for _, ch := range []chan struct{}{doneA, doneB} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatal("a disk-blocked thread never resumed")
		}
	}
}
