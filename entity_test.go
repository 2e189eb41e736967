package ecscore

import "testing"

func TestEntityRangeLenAndEmpty(t *testing.T) {
	r := EntityRange{Begin: 5, End: 10}
	if r.Len() != 5 {
		t.Fatalf("expected len 5, got %d", r.Len())
	}
	if r.Empty() {
		t.Fatalf("expected non-empty range")
	}
	empty := EntityRange{Begin: 10, End: 10}
	if !empty.Empty() || empty.Len() != 0 {
		t.Fatalf("expected empty range with len 0")
	}
}

func TestEntityRangeContains(t *testing.T) {
	r := EntityRange{Begin: 5, End: 10}
	if !r.Contains(5) || !r.Contains(9) {
		t.Fatalf("expected range to contain its endpoints (begin inclusive, end exclusive)")
	}
	if r.Contains(10) || r.Contains(4) {
		t.Fatalf("expected range to exclude End and anything before Begin")
	}
}

func TestEntityRangeAdjacent(t *testing.T) {
	a := EntityRange{Begin: 0, End: 5}
	b := EntityRange{Begin: 5, End: 10}
	c := EntityRange{Begin: 6, End: 10}
	if !a.Adjacent(b) {
		t.Fatalf("expected [0,5) and [5,10) to be adjacent")
	}
	if a.Adjacent(c) {
		t.Fatalf("expected [0,5) and [6,10) not to be adjacent")
	}
}
