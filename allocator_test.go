package ecscore

import "testing"

func checkAllocatorNormalized(t *testing.T, a *Allocator) {
	t.Helper()
	for i, r := range a.free {
		if r.Empty() {
			t.Fatalf("free[%d] is empty: %+v", i, r)
		}
		if i > 0 {
			prev := a.free[i-1]
			if prev.End >= r.Begin {
				t.Fatalf("free ranges not sorted/disjoint: %+v then %+v", prev, r)
			}
			if prev.End == r.Begin {
				t.Fatalf("free ranges adjacent, should have merged: %+v then %+v", prev, r)
			}
		}
	}
}

func TestAllocatorBasic(t *testing.T) {
	a := NewAllocator()
	for i := Entity(1); i <= 5; i++ {
		if got := a.Add(); got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
}

func TestAllocatorNeverReturnsZero(t *testing.T) {
	a := NewAllocator()
	if got := a.Add(); got == 0 {
		t.Fatalf("allocator must never return entity 0")
	}
}

func TestAllocatorRecycle(t *testing.T) {
	// S5
	a := NewAllocator()
	for i := 0; i < 5; i++ {
		a.Add()
	}
	a.Remove(3)
	a.Remove(4)
	checkAllocatorNormalized(t, a)
	if len(a.free) != 1 || a.free[0] != (EntityRange{Begin: 3, End: 5}) {
		t.Fatalf("expected coalesced free range [3,5), got %v", a.free)
	}
	if got := a.Add(); got != 3 {
		t.Fatalf("expected recycled id 3, got %d", got)
	}
	if got := a.Add(); got != 4 {
		t.Fatalf("expected recycled id 4, got %d", got)
	}
	a.Remove(5)
	if a.last != 4 {
		t.Fatalf("expected last to unwind to 4, got %d", a.last)
	}
}

func TestAllocatorRemoveMergesBothNeighbors(t *testing.T) {
	a := NewAllocator()
	for i := 0; i < 10; i++ {
		a.Add()
	}
	a.Remove(3)
	a.Remove(5)
	checkAllocatorNormalized(t, a)
	if len(a.free) != 2 {
		t.Fatalf("expected two disjoint free ranges, got %v", a.free)
	}
	a.Remove(4) // bridges [3,4) and [5,6) into [3,6)
	checkAllocatorNormalized(t, a)
	if len(a.free) != 1 || a.free[0] != (EntityRange{Begin: 3, End: 6}) {
		t.Fatalf("expected merged range [3,6), got %v", a.free)
	}
}

func TestAllocatorAddRangeFromFreeList(t *testing.T) {
	a := NewAllocator()
	for i := 0; i < 10; i++ {
		a.Add()
	}
	a.RemoveRange(EntityRange{Begin: 3, End: 8})
	checkAllocatorNormalized(t, a)

	r := a.AddRange(3)
	if r != (EntityRange{Begin: 3, End: 6}) {
		t.Fatalf("expected to take [3,6) from the free range, got %+v", r)
	}
	checkAllocatorNormalized(t, a)
	if len(a.free) != 1 || a.free[0] != (EntityRange{Begin: 6, End: 8}) {
		t.Fatalf("expected remaining free range [6,8), got %v", a.free)
	}
}

func TestAllocatorAddRangeExtendsPastLast(t *testing.T) {
	a := NewAllocator()
	a.Add()
	a.Add()
	r := a.AddRange(5)
	if r != (EntityRange{Begin: 3, End: 8}) {
		t.Fatalf("expected [3,8), got %+v", r)
	}
	if a.last != 7 {
		t.Fatalf("expected last 7, got %d", a.last)
	}
}

func TestAllocatorRemoveRangeUnwindsLast(t *testing.T) {
	a := NewAllocator()
	for i := 0; i < 10; i++ {
		a.Add()
	}
	a.RemoveRange(EntityRange{Begin: 8, End: 11})
	if a.last != 7 {
		t.Fatalf("expected last to unwind to 7, got %d", a.last)
	}
	if len(a.free) != 0 {
		t.Fatalf("expected no free ranges, got %v", a.free)
	}
}

func TestAllocatorNormalizedUnderChurn(t *testing.T) {
	a := NewAllocator()
	live := map[Entity]bool{}
	for round := 0; round < 200; round++ {
		if round%3 != 0 && len(live) > 0 {
			var victim Entity
			for e := range live {
				victim = e
				break
			}
			a.Remove(victim)
			delete(live, victim)
		} else {
			e := a.Add()
			if e == 0 {
				t.Fatalf("allocator returned NullEntity-adjacent zero")
			}
			live[e] = true
		}
		checkAllocatorNormalized(t, a)
	}
}
