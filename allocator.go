package ecscore

import "sort"

// Allocator is a monotonically increasing entity id generator with a sorted,
// coalescing free-range list: released ids are recycled in contiguous
// ranges rather than one at a time. It never issues Entity 0 (the first id
// handed out is 1) and carries no generation counter, so a recycled id is
// indistinguishable from one that was never released.
type Allocator struct {
	last   Entity
	free   []EntityRange
	logger Logger
}

// AllocatorOption configures an Allocator at construction time.
type AllocatorOption func(*Allocator)

// WithAllocatorLogger installs a diagnostics sink for id-exhaustion events
// in Add. Range merges are not logged. Defaults to a no-op logger.
func WithAllocatorLogger(l Logger) AllocatorOption {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAllocator constructs an empty Allocator: last == 0, free == nil.
func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{logger: defaultLogger}
	for _, o := range opts {
		o(a)
	}
	return a
}

const maxEntity = Entity(0xFFFFFFFE)

// Add returns a fresh or recycled entity id. Never returns 0.
func (a *Allocator) Add() Entity {
	if len(a.free) == 0 {
		if a.last >= maxEntity {
			a.logger.Debugf("ecscore: entity id space exhausted at last=%d", a.last)
			failAllocator("entity id space exhausted")
		}
		a.last++
		return a.last
	}
	r := &a.free[0]
	id := r.Begin
	r.Begin++
	if r.Begin >= r.End {
		a.free = a.free[1:]
	}
	return id
}

// AddRange returns a contiguous range of n fresh or recycled entity ids. It
// first looks for a free range wide enough to satisfy n entirely from the
// recycled pool; otherwise it extends past last.
func (a *Allocator) AddRange(n uint32) EntityRange {
	if n == 0 {
		return EntityRange{}
	}
	for i := range a.free {
		r := &a.free[i]
		if r.Len() >= n {
			out := EntityRange{Begin: r.Begin, End: r.Begin + Entity(n)}
			r.Begin += Entity(n)
			if r.Begin >= r.End {
				a.free = append(a.free[:i], a.free[i+1:]...)
			}
			return out
		}
	}
	if uint32(maxEntity-a.last) < n {
		failAllocator("entity id space exhausted")
	}
	begin := a.last + 1
	a.last += Entity(n)
	return EntityRange{Begin: begin, End: a.last + 1}
}

// Remove releases a single entity id back to the allocator. If e is the
// current high-water mark, last simply unwinds by one instead of being
// folded into free: a later Remove of an id now adjacent to the shrunk last
// is not merged back into last, only into free. Otherwise Remove looks for a
// free range adjacent to e and extends it (merging two ranges if e bridges
// them), or inserts a new singleton range, keeping free normalized.
func (a *Allocator) Remove(e Entity) {
	if e == a.last {
		a.last--
		return
	}
	a.insertFree(EntityRange{Begin: e, End: e + 1})
}

// RemoveRange releases r back to the allocator, following the same
// last-unwind-vs-free-merge rule as Remove.
func (a *Allocator) RemoveRange(r EntityRange) {
	if r.Empty() {
		return
	}
	if r.End-1 == a.last {
		a.last = r.Begin - 1
		return
	}
	a.insertFree(r)
}

// insertFree merges r into the free list, coalescing with the range to its
// left and/or right, and inserts it in sorted position when neither
// neighbor is adjacent.
func (a *Allocator) insertFree(r EntityRange) {
	idx := sort.Search(len(a.free), func(i int) bool {
		return a.free[i].Begin >= r.Begin
	})

	mergeLeft := idx > 0 && a.free[idx-1].End == r.Begin
	mergeRight := idx < len(a.free) && a.free[idx].Begin == r.End

	switch {
	case mergeLeft && mergeRight:
		a.free[idx-1].End = a.free[idx].End
		a.free = append(a.free[:idx], a.free[idx+1:]...)
	case mergeLeft:
		a.free[idx-1].End = r.End
	case mergeRight:
		a.free[idx].Begin = r.Begin
	default:
		a.free = append(a.free, EntityRange{})
		copy(a.free[idx+1:], a.free[idx:])
		a.free[idx] = r
	}
}

// Free returns a snapshot of the current free-range list, sorted by Begin
// and normalized (disjoint, non-adjacent). Callers must not mutate the
// returned slice.
func (a *Allocator) Free() []EntityRange { return a.free }

// Last returns the largest id ever handed out (0 if none yet).
func (a *Allocator) Last() Entity { return a.last }
