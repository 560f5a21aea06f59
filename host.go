package uthread

// Host is the abstract stack-switch capability spec.md §6 requires of the
// embedding environment: "a way to create a suspended stack bound to an
// entry function and to perform a symmetric switch between two such
// stacks". Go gives no safe way for one goroutine to reach into another and
// swap its call stack the way ucontext_t/Win32 Fibers do, so this
// implementation models a "stack" as a parked goroutine, and "switching"
// as a synchronous channel handoff: Switch resumes the target and blocks
// until it parks again (voluntarily, via Park); Park is called by the
// running goroutine itself to hand control back.
//
// This is the same trick alphadose/zenq's ThreadParker uses to sleep and
// wake a goroutine with minimal latency ("keeps only one parked goroutine
// in state at all times"), simplified: ThreadParker is a lock-free MPSC
// queue because many producers may call Ready concurrently against one
// parked consumer. Here there is exactly one producer (the scheduler,
// serialized by Runtime's own lock) and one consumer (the TCB's goroutine),
// so a pair of unbuffered channels replaces the lock-free list entirely.
type Host interface {
	// NewStack creates a suspended stack bound to entry, returning a handle.
	// entry is not invoked until the first Switch targeting this handle.
	NewStack(name string, entry func()) StackHandle

	// Switch performs a symmetric switch into h: it resumes h's goroutine
	// and blocks the caller until h calls Park (or its entry function
	// returns, which NewStack treats as an implicit, final Park).
	Switch(h StackHandle)

	// Park is called from within a running stack to switch back to
	// whichever stack last called Switch on it, then blocks until that (or
	// another) caller switches back into it.
	Park(h StackHandle)
}

// StackHandle is an opaque handle to a suspended or running stack created
// by Host.NewStack.
type StackHandle interface {
	// Name returns the label the handle was created with, for diagnostics.
	Name() string
}

// goroutineStack is the GoroutineHost's StackHandle implementation: a pair
// of rendezvous channels plus the label used in HostFailure diagnostics.
type goroutineStack struct {
	name   string
	resume chan struct{}
	parked chan struct{}
}

func (s *goroutineStack) Name() string { return s.name }

// GoroutineHost is the default Host: every stack is an ordinary goroutine,
// parked on an unbuffered channel until the scheduler switches into it.
type GoroutineHost struct{}

// NewGoroutineHost returns the default Host implementation.
func NewGoroutineHost() *GoroutineHost {
	return &GoroutineHost{}
}

func (*GoroutineHost) NewStack(name string, entry func()) StackHandle {
	s := &goroutineStack{
		name:   name,
		resume: make(chan struct{}),
		parked: make(chan struct{}),
	}
	go func() {
		<-s.resume // wait for the first Switch
		entry()
		// entry has returned without parking again (for a Runtime thread,
		// after its trampoline has run Exit): closing parked is the
		// implicit, final Park that lets the pending Switch return.
		close(s.parked)
	}()
	return s
}

func (*GoroutineHost) Switch(h StackHandle) {
	s := h.(*goroutineStack)
	s.resume <- struct{}{}
	<-s.parked
}

func (*GoroutineHost) Park(h StackHandle) {
	s := h.(*goroutineStack)
	s.parked <- struct{}{}
	<-s.resume
}
