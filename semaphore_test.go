package uthread

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBlockedStateMatchesWaiterList covers invariant I2: a TCB is BLOCKED
// if and only if its id appears in exactly one semaphore's waiter list.
func TestBlockedStateMatchesWaiterList(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(10))
	sem := rt.NewSemaphore(0)

	blockedObserved := make(chan struct{})
	released := make(chan struct{})

	rt.Create(func(self *Thread, _ any) {
		self.SemWait(sem)
		close(released)
	}, nil, 0)

	rt.Create(func(self *Thread, _ any) {
		// give the waiter a moment to block, then confirm the invariant,
		// then release it.
		self.Work(5)
		rt.mu.Lock()
		assert.Equal(t, StateBlocked, rt.threads[0].state)
		assert.Equal(t, sem.ID(), rt.threads[0].waitingFor)
		assert.Equal(t, []int{0}, sem.Waiters())
		rt.mu.Unlock()
		close(blockedObserved)
		self.SemPost(sem)
	}, nil, 0)

	go func() {
		require.NoError(t, rt.Start())
	}()

	select {
	case <-blockedObserved:
	case <-time.After(5 * time.Second):
		t.Fatal("poster never reached its checkpoint")
	}

	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("waiter was never released")
	}

	assert.Equal(t, 0, sem.OwnerID()) // T0 is the waiter that received the hand-off
	assert.Empty(t, sem.Waiters())
}

// TestCountingSemaphoreInvariant checks that three uncontended
// acquire/release pairs on a semaphore of value 3 leave it back at 3 with
// no waiters.
func TestCountingSemaphoreInvariant(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(11))
	sem := rt.NewSemaphore(3)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		rt.Create(func(self *Thread, _ any) {
			defer wg.Done()
			self.SemWait(sem)
			self.Work(2)
			self.SemPost(sem)
		}, nil, 0)
	}

	require.NoError(t, rt.Start())

	assert.Equal(t, 3, sem.Value())
	assert.Empty(t, sem.Waiters())
}

// TestFIFOHandOff is scenario E2: waiters are released in strict FIFO order,
// each via direct hand-off (never observing an intermediate posted value).
func TestFIFOHandOff(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(12))
	sem := rt.NewSemaphore(0)
	gate := rt.NewSemaphore(0)

	var mu sync.Mutex
	var arrivalOrder []string
	var releaseOrder []string

	const n = 4
	for i := 0; i < n; i++ {
		rt.Create(func(self *Thread, _ any) {
			mu.Lock()
			arrivalOrder = append(arrivalOrder, self.Name())
			mu.Unlock()
			self.SemPost(gate)

			self.SemWait(sem)

			mu.Lock()
			releaseOrder = append(releaseOrder, self.Name())
			mu.Unlock()
		}, nil, 0)
	}

	rt.Create(func(self *Thread, _ any) {
		for i := 0; i < n; i++ {
			self.SemWait(gate)
		}
		for i := 0; i < n; i++ {
			self.SemPost(sem)
			self.Work(2)
		}
	}, nil, 0)

	require.NoError(t, rt.Start())

	require.Len(t, releaseOrder, n)
	// The gate forces deterministic arrival order (T0..T3 post the gate in
	// id order since they're dispatched lowest-id-first at equal priority
	// with no work before the post); FIFO hand-off must preserve it.
	assert.Equal(t, arrivalOrder, releaseOrder)
}

// TestProducerConsumer is scenario E3: a bounded single-slot buffer guarded
// by two semaphores (empty/full) never lets the consumer observe a slot the
// producer hasn't yet filled, and never lets the producer overwrite a slot
// the consumer hasn't yet drained.
func TestProducerConsumer(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(13))

	empty := rt.NewSemaphore(1) // slots free
	full := rt.NewSemaphore(0)  // slots filled
	var slot int
	var consumed []int

	const n = 5
	rt.Create(func(self *Thread, _ any) {
		for i := 0; i < n; i++ {
			self.SemWait(empty)
			slot = i
			self.SemPost(full)
		}
	}, nil, 0)

	done := make(chan struct{})
	rt.Create(func(self *Thread, _ any) {
		for i := 0; i < n; i++ {
			self.SemWait(full)
			consumed = append(consumed, slot)
			self.SemPost(empty)
		}
		close(done)
	}, nil, 1)

	require.NoError(t, rt.Start())

	<-done
	require.Len(t, consumed, n)
	for i, v := range consumed {
		assert.Equal(t, i, v)
	}
}

// TestLockSlotExhaustionIsNonFatal covers Open Question O2: exceeding a
// TCB's fixed holding_locks capacity is recorded as a counter, not a crash,
// and acquisition still logically succeeds.
func TestLockSlotExhaustionIsNonFatal(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogWriter(&buf), WithRandSeed(14))

	sems := make([]*Semaphore, holdingLockSlots+2)
	for i := range sems {
		sems[i] = rt.NewSemaphore(1)
	}

	rt.Create(func(self *Thread, _ any) {
		for _, s := range sems {
			self.SemWait(s)
		}
	}, nil, 0)

	require.NoError(t, rt.Start())

	assert.Positive(t, rt.Stats().LockSlotExhausted)
}
