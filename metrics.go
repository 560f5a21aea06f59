package uthread

import "sync/atomic"

// RunStats is a point-in-time snapshot of counters accumulated over a
// Runtime's lifetime, grounded in eventloop's Metrics type but reduced to
// plain atomic counters — this simulation has no latency distributions to
// track, so none of eventloop's P-square percentile estimator is needed.
type RunStats struct {
	Dispatches        uint64
	Downgrades        uint64
	Boosts            uint64
	PageFaults        uint64
	PageReplacements  uint64
	DiskCompletions   uint64
	LockSlotExhausted uint64
}

// runStats holds the live atomic counters a Runtime mutates as it runs.
// snapshot copies them out into a RunStats value.
type runStats struct {
	dispatches        atomic.Uint64
	downgrades        atomic.Uint64
	boosts            atomic.Uint64
	pageFaults        atomic.Uint64
	pageReplacements  atomic.Uint64
	diskCompletions   atomic.Uint64
	lockSlotExhausted atomic.Uint64
}

func (s *runStats) snapshot() RunStats {
	return RunStats{
		Dispatches:        s.dispatches.Load(),
		Downgrades:        s.downgrades.Load(),
		Boosts:            s.boosts.Load(),
		PageFaults:        s.pageFaults.Load(),
		PageReplacements:  s.pageReplacements.Load(),
		DiskCompletions:   s.diskCompletions.Load(),
		LockSlotExhausted: s.lockSlotExhausted.Load(),
	}
}

// Stats returns a snapshot of the Runtime's accumulated counters. Safe to
// call concurrently with Start.
func (rt *Runtime) Stats() RunStats {
	return rt.stats.snapshot()
}
