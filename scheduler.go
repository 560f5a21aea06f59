package uthread

import (
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"golang.org/x/exp/rand"

	"github.com/kollipatisravanthi-a11y/uthread/internal/tracelog"
)

// Runtime owns every piece of simulation state: the thread table, the
// semaphore table, the shared physical frame pool, and the scheduler lock
// that serializes access to all of it. There are no package-level globals;
// a program may construct as many independent Runtime values as it likes.
type Runtime struct {
	cfg   *runtimeConfig
	clock Clock
	host  Host
	rng   *rand.Rand

	logger      *logiface.Logger[*tracelog.Event]
	diagLimiter *catrate.Limiter

	mu          sync.Mutex
	threads     map[int]*tcb
	nextID      int
	semaphores  map[int]*Semaphore
	nextSemID   int
	frames      [PhysicalPages]frame
	current     *tcb
	boostTicks  int
	state       atomicRunState
	stopTimer   chan struct{}
	timerDone   chan struct{}

	stats runStats
}

// New constructs a Runtime. With no options it reproduces the package
// defaults documented in config.go exactly.
func New(opts ...RuntimeOption) *Runtime {
	cfg, err := resolveRuntimeConfig(opts)
	if err != nil {
		// every With* option already validates its own argument; the only
		// way resolveRuntimeConfig fails is a caller-supplied RuntimeOption
		// rejecting itself, which a correctly implemented option never does
		// for the package-supplied defaults, so this mirrors eventloop's
		// treatment of config errors as programmer error, not runtime error.
		panic(err)
	}

	rt := &Runtime{
		cfg:         cfg,
		clock:       NewSystemClock(),
		threads:     make(map[int]*tcb, cfg.maxThreads),
		semaphores:  make(map[int]*Semaphore),
		nextSemID:   semaphoreIDSeed,
		diagLimiter: newDiagLimiter(),
	}
	for i := range rt.frames {
		rt.frames[i] = frame{owner: sentinel}
	}

	if cfg.host != nil {
		rt.host = cfg.host
	} else {
		rt.host = NewGoroutineHost()
	}

	if cfg.hasRandSeed {
		rt.rng = rand.New(rand.NewSource(cfg.randSeed))
	} else {
		rt.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	w := cfg.logWriter
	if w == nil {
		w = os.Stdout
	}
	rt.logger = newTraceLogger(w, rt.clock)

	return rt
}

// Create installs a new thread, in the READY state, at the given MLFQ
// priority (clamped into [0, MLFQLevels-1]). It returns the new thread's id,
// or sentinel if the Runtime is already full (MaxThreads) or has already
// been started.
func (rt *Runtime) Create(entry EntryFunc, arg any, priority int) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.state.load() != runNotStarted {
		return sentinel
	}
	if len(rt.threads) >= rt.cfg.maxThreads {
		return sentinel
	}
	if priority < 0 {
		priority = 0
	}
	if priority > MLFQLevels-1 {
		priority = MLFQLevels - 1
	}

	id := rt.nextID
	rt.nextID++
	name := threadName(id)

	t := newTCB(id, name, priority, entry, arg)
	self := &Thread{rt: rt, tcb: t}
	t.stack = rt.host.NewStack(name, func() { rt.trampoline(self) })
	rt.threads[id] = t

	rt.log(name, "CREATED")
	return id
}

func threadName(id int) string {
	return "T" + strconv.Itoa(id)
}

// trampoline is the body every thread stack actually runs: the user entry
// function, followed by an implicit Exit if the entry function returns
// without calling it explicitly.
func (rt *Runtime) trampoline(self *Thread) {
	defer func() {
		if r := recover(); r != nil {
			rt.mu.Lock()
			self.tcb.state = StateFinished
			rt.freeAllFrames(self.tcb)
			rt.mu.Unlock()
			panic(newHostFailure(self.tcb.name, r))
		}
	}()
	self.tcb.entry(self, self.tcb.arg)
	rt.mu.Lock()
	exited := self.tcb.state == StateFinished
	rt.mu.Unlock()
	if !exited {
		self.Exit()
	}
}

// Start runs the scheduler to completion: it dispatches READY threads by
// MLFQ priority until every thread has reached FINISHED, then returns.
// Start may only be called once per Runtime.
func (rt *Runtime) Start() error {
	if !rt.state.tryTransition(runNotStarted, runRunning) {
		return ErrRuntimeAlreadyRunning
	}

	rt.stopTimer = make(chan struct{})
	rt.timerDone = make(chan struct{})
	go rt.runTimer()

	rt.dispatchLoop()

	close(rt.stopTimer)
	<-rt.timerDone
	rt.state.store(runTerminated)
	return nil
}

// dispatchLoop is the scheduler's main loop: pick the highest-priority READY
// thread (ties broken by ascending id, spec.md §4.3), run it until it parks,
// repeat until every thread is FINISHED.
func (rt *Runtime) dispatchLoop() {
	for {
		rt.mu.Lock()
		if rt.allFinished() {
			rt.mu.Unlock()
			return
		}

		ids := rt.sortedIDs()
		rt.log("SYSTEM", rt.queueListing(ids))
		next := rt.pickNext(ids)
		if next == nil {
			rt.mu.Unlock()
			rt.diagnostic("idle-poll", "SYSTEM", "no READY thread; idling")
			time.Sleep(idlePollInterval)
			continue
		}

		next.state = StateRunning
		next.quantumUsed = 0
		rt.current = next
		rt.stats.dispatches.Add(1)
		rt.log(next.name, "RUNNING")
		stack := next.stack
		rt.mu.Unlock()

		rt.host.Switch(stack)
	}
}

// sortedIDs returns every installed thread id in ascending (creation) order.
// Caller must hold rt.mu.
func (rt *Runtime) sortedIDs() []int {
	ids := make([]int, 0, len(rt.threads))
	for id := range rt.threads {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// queueListing renders "MLFQ: Q0[...] Q1[...] ..." enumerating READY TCB
// names in scan order, per spec.md §4.1's required per-selection log line.
func (rt *Runtime) queueListing(ids []int) string {
	msg := "MLFQ:"
	for level := 0; level < MLFQLevels; level++ {
		msg += " Q" + strconv.Itoa(level) + "["
		first := true
		for _, id := range ids {
			t := rt.threads[id]
			if t.state == StateReady && t.priority == level {
				if !first {
					msg += ","
				}
				msg += t.name
				first = false
			}
		}
		msg += "]"
	}
	return msg
}

// pickNext scans MLFQ levels 0 (highest) upward, returning the lowest-id
// READY thread in the first non-empty level. Caller must hold rt.mu.
func (rt *Runtime) pickNext(ids []int) *tcb {
	for level := 0; level < MLFQLevels; level++ {
		for _, id := range ids {
			t := rt.threads[id]
			if t.state == StateReady && t.priority == level {
				return t
			}
		}
	}
	return nil
}

// allFinished reports whether every installed thread has reached FINISHED.
// Caller must hold rt.mu.
func (rt *Runtime) allFinished() bool {
	for _, t := range rt.threads {
		if t.state != StateFinished {
			return false
		}
	}
	return true
}

