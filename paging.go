package uthread

// frame is one slot of the shared physical frame pool (spec.md §3
// FrameTable). owner is sentinel when the frame is FREE; vpage is the
// virtual page index the owner has it mapped to, used to resolve Open
// Question O3 (see SPEC_FULL.md): when a frame is stolen from its current
// owner, the owner's own page_table entry for vpage must be unmapped in
// the same step, or invariant I4 ("for every mapped page_table[v]=p,
// FrameTable[p] is this TCB's id") would be violated the instant the frame
// changes hands. Tracking vpage here makes that an O(1) fix-up instead of a
// scan of every thread's page table.
type frame struct {
	owner int
	vpage int
}

// pagesNeeded computes ceil(size / PageSize), per spec.md §4.5.
func pagesNeeded(size int) int {
	if size <= 0 {
		return 0
	}
	return (size + PageSize - 1) / PageSize
}

// malloc implements spec.md §4.5 malloc(size) for thread t. Caller must
// already hold rt.mu. Returns the fabricated virtual address of the first
// newly-mapped page, or 0 if nothing was mapped (size<=0, or every virtual
// page was already mapped).
func (rt *Runtime) malloc(t *tcb, size int) int {
	need := pagesNeeded(size)
	firstV := -1

	for v := 0; v < VirtualPages && need > 0; v++ {
		if t.pageTable[v] != sentinel {
			continue
		}

		frameIdx := rt.claimFreeFrame(t.id)
		if frameIdx < 0 {
			frameIdx = rt.evictRandomFrame(t.id)
			rt.log(t.name, "PAGE_REPLACEMENT_LRU")
			rt.stats.pageReplacements.Add(1)
		}

		t.pageTable[v] = frameIdx
		rt.frames[frameIdx].owner = t.id
		rt.frames[frameIdx].vpage = v

		rt.logf(t.name, "PAGE_FAULT_MAPPED V:%d->P:%d", v, frameIdx)
		rt.stats.pageFaults.Add(1)

		if firstV < 0 {
			firstV = v
		}
		need--
	}

	if firstV < 0 {
		return 0
	}
	return firstV * PageSize
}

// claimFreeFrame returns the index of the first FREE frame, claiming it for
// owner, or -1 if the pool is full.
func (rt *Runtime) claimFreeFrame(owner int) int {
	for i := range rt.frames {
		if rt.frames[i].owner == sentinel {
			rt.frames[i].owner = owner
			return i
		}
	}
	return -1
}

// evictRandomFrame picks a uniformly random victim frame, unmaps it from its
// current owner's page table (the O3 fix-up), and returns its index. The
// "LRU" log token name is historical (spec.md §9: "the policy is in fact
// uniform-random; retain the log token for compatibility") — the
// replacement policy here really is uniform random, via
// golang.org/x/exp/rand.
func (rt *Runtime) evictRandomFrame(newOwner int) int {
	victim := rt.rng.Intn(PhysicalPages)
	prevOwner := rt.frames[victim].owner
	if prevOwner != sentinel {
		if t, ok := rt.threads[prevOwner]; ok {
			t.pageTable[rt.frames[victim].vpage] = sentinel
		}
	}
	return victim
}

// free implements spec.md §4.5 free(ptr): ptr is ignored; every page t has
// mapped is released. Caller must already hold rt.mu.
func (rt *Runtime) free(t *tcb) {
	for v := 0; v < VirtualPages; v++ {
		p := t.pageTable[v]
		if p == sentinel {
			continue
		}
		rt.frames[p] = frame{owner: sentinel, vpage: 0}
		t.pageTable[v] = sentinel
	}
	rt.log(t.name, "MEMORY_FREE_ALL")
}

// freeAllFrames releases every frame owned by t without emitting
// MEMORY_FREE_ALL — used by Exit, which has its own terminal log line and
// whose frame release is documented as part of FINISHED (invariant I3)
// rather than as an explicit free() call.
func (rt *Runtime) freeAllFrames(t *tcb) {
	for v := 0; v < VirtualPages; v++ {
		p := t.pageTable[v]
		if p == sentinel {
			continue
		}
		rt.frames[p] = frame{owner: sentinel, vpage: 0}
		t.pageTable[v] = sentinel
	}
}
