// Package uthread implements a user-level threading runtime: a cooperative,
// preemptible scheduler that runs many logical "threads" one at a time, each
// on its own parked goroutine, chosen via a multi-level feedback queue
// (MLFQ), backed by counting semaphores with FIFO hand-off and a simulated
// paging subsystem.
//
// It is a simulation, not a real scheduler: there is no true parallelism,
// no real virtual memory, and no real disk I/O. A single Runtime owns all
// state (the thread table, semaphores, the physical frame pool, and the
// scheduler lock); user code never touches that state directly, only
// through the RuntimeAPI-shaped methods on *Runtime and on the *Thread
// handle each thread body receives.
//
// A minimal program looks like:
//
//	rt := uthread.New()
//	rt.Create(func(self *uthread.Thread, arg any) {
//		self.Work(10)
//	}, nil, 0)
//	rt.Start()
//
// Start blocks until every created thread has reached FINISHED.
package uthread
