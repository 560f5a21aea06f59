package uthread

import (
	"io"
	"time"
)

// Compile-time defaults from spec.md §6. RuntimeOption values (below) let a
// caller (chiefly tests) override any of these per-Runtime; New() with no
// options reproduces exactly these values.
const (
	// MaxThreads is the default maximum number of TCBs a Runtime will hold.
	MaxThreads = 10

	// StackSize is the default size, in bytes, bound to each TCB's stack
	// handle. The Host abstraction in this implementation runs threads as
	// goroutines rather than raw stacks, so this is carried through purely
	// as a documented capacity hint: it is stored in the Runtime's
	// configuration and is not passed to Host.NewStack.
	StackSize = 32768

	// MLFQLevels is the number of MLFQ priority levels, 0 (highest) through
	// MLFQLevels-1 (lowest).
	MLFQLevels = 3

	// Q0Quantum is the quantum, in milliseconds, a priority-0 thread may run
	// before demotion.
	Q0Quantum = 50

	// Q1Quantum is the quantum, in milliseconds, a priority-1 (or lower)
	// thread may run before demotion.
	Q1Quantum = 100

	// BoostInterval is the period, in milliseconds, between MLFQ priority
	// boosts that reset every non-finished thread to priority 0.
	BoostInterval = 1000

	// TickMS is the cadence, in milliseconds, of the timer tick.
	TickMS = 10

	// PageSize is the simulated page size in bytes.
	PageSize = 4096

	// VirtualPages is the number of virtual pages (V) in each TCB's page
	// table.
	VirtualPages = 16

	// PhysicalPages is the number of physical frames (P) in the shared
	// FrameTable.
	PhysicalPages = 8

	// holdingLockSlots is the fixed capacity of a TCB's holding_locks array
	// (§3: "fixed-length array (size 5)").
	holdingLockSlots = 5

	// idlePollInterval is how long the dispatch loop sleeps, after releasing
	// the lock, when no TCB is READY but at least one is not FINISHED.
	idlePollInterval = 10 * time.Millisecond

	// semaphoreIDSeed is the value the semaphore id generator starts from.
	semaphoreIDSeed = 100

	// sentinel is the "unmapped" / "no owner" / "no target" marker used
	// throughout the data model (page table entries, holding_locks slots,
	// waiting_for, FrameTable ownership, semaphore owner_id).
	sentinel = -1
)

// runtimeConfig holds the resolved configuration for a Runtime, assembled by
// folding RuntimeOption values over a struct seeded with the package
// defaults above. Mirrors eventloop's loopOptions/resolveLoopOptions shape.
type runtimeConfig struct {
	maxThreads   int
	stackSize    int
	tickInterval time.Duration
	q0Quantum    time.Duration
	q1Quantum    time.Duration
	boostEvery   time.Duration
	logWriter    io.Writer
	host         Host
	randSeed     uint64
	hasRandSeed  bool
}

// RuntimeOption configures a Runtime at construction. See New.
type RuntimeOption interface {
	apply(*runtimeConfig) error
}

type runtimeOptionFunc func(*runtimeConfig) error

func (f runtimeOptionFunc) apply(c *runtimeConfig) error { return f(c) }

// WithMaxThreads overrides MaxThreads for one Runtime.
func WithMaxThreads(n int) RuntimeOption {
	return runtimeOptionFunc(func(c *runtimeConfig) error {
		if n <= 0 {
			return ErrInvalidOption
		}
		c.maxThreads = n
		return nil
	})
}

// WithStackSize overrides StackSize for one Runtime.
func WithStackSize(bytes int) RuntimeOption {
	return runtimeOptionFunc(func(c *runtimeConfig) error {
		if bytes <= 0 {
			return ErrInvalidOption
		}
		c.stackSize = bytes
		return nil
	})
}

// WithTickInterval overrides the timer cadence (default TickMS).
func WithTickInterval(d time.Duration) RuntimeOption {
	return runtimeOptionFunc(func(c *runtimeConfig) error {
		if d <= 0 {
			return ErrInvalidOption
		}
		c.tickInterval = d
		return nil
	})
}

// WithQuantums overrides the Q0/Q1 quantum durations (default Q0Quantum,
// Q1Quantum milliseconds).
func WithQuantums(q0, q1 time.Duration) RuntimeOption {
	return runtimeOptionFunc(func(c *runtimeConfig) error {
		if q0 <= 0 || q1 <= 0 {
			return ErrInvalidOption
		}
		c.q0Quantum, c.q1Quantum = q0, q1
		return nil
	})
}

// WithBoostInterval overrides the periodic-boost period (default
// BoostInterval milliseconds).
func WithBoostInterval(d time.Duration) RuntimeOption {
	return runtimeOptionFunc(func(c *runtimeConfig) error {
		if d <= 0 {
			return ErrInvalidOption
		}
		c.boostEvery = d
		return nil
	})
}

// WithLogWriter directs the runtime's structured log lines to w instead of
// os.Stdout. The line format (§6: "<microseconds> <actor> <message>") is
// unaffected; only the destination changes.
func WithLogWriter(w io.Writer) RuntimeOption {
	return runtimeOptionFunc(func(c *runtimeConfig) error {
		if w == nil {
			return ErrInvalidOption
		}
		c.logWriter = w
		return nil
	})
}

// WithHost substitutes the Host implementation (the abstract stack-switch
// capability) used for every thread stack, in place of GoroutineHost.
func WithHost(h Host) RuntimeOption {
	return runtimeOptionFunc(func(c *runtimeConfig) error {
		if h == nil {
			return ErrInvalidOption
		}
		c.host = h
		return nil
	})
}

// WithRandSeed makes the paging simulator's victim selection and the
// timer's disk-completion draws deterministic, for tests.
func WithRandSeed(seed uint64) RuntimeOption {
	return runtimeOptionFunc(func(c *runtimeConfig) error {
		c.randSeed = seed
		c.hasRandSeed = true
		return nil
	})
}

func resolveRuntimeConfig(opts []RuntimeOption) (*runtimeConfig, error) {
	c := &runtimeConfig{
		maxThreads:   MaxThreads,
		stackSize:    StackSize,
		tickInterval: TickMS * time.Millisecond,
		q0Quantum:    Q0Quantum * time.Millisecond,
		q1Quantum:    Q1Quantum * time.Millisecond,
		boostEvery:   BoostInterval * time.Millisecond,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o.apply(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
