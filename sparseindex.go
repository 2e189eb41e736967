package ecscore

// SparseIndex is a paged mapping from an entity id to an EntityIndex, with
// O(1) amortized insert/lookup/remove and a sentinel NullIndex for absent
// keys. It is the building block every table (DenseTable, StableTable)
// embeds to answer "where does this entity live" without allocating
// O(max entity id) memory up front.
//
// Pages are fixed-width slices of EntityIndex, allocated lazily and
// initialized to NullIndex; a missing page is equivalent to a page full of
// NullIndex. The top-level page directory grows as higher entity ids are
// seen and never shrinks on its own (see Clear vs Release).
type SparseIndex struct {
	pages    []*[]EntityIndex
	pageSize uint32
}

// NewSparseIndex constructs a SparseIndex with the given page width, which
// must be a power of two. A zero pageSize selects DefaultEntityPageSize.
func NewSparseIndex(pageSize uint32) *SparseIndex {
	if pageSize == 0 {
		pageSize = DefaultEntityPageSize
	}
	if !isPowerOfTwo(pageSize) {
		panic("ecscore: SparseIndex page size must be a power of two")
	}
	return &SparseIndex{pageSize: pageSize}
}

func (s *SparseIndex) pageIndex(key Entity) (page, offset uint32) {
	k := uint32(key)
	return k / s.pageSize, k % s.pageSize
}

func (s *SparseIndex) newPage() *[]EntityIndex {
	p := make([]EntityIndex, s.pageSize)
	for i := range p {
		p[i] = NullIndex
	}
	return &p
}

func (s *SparseIndex) ensurePage(page uint32) *[]EntityIndex {
	if int(page) >= len(s.pages) {
		s.pages = extendSlice(s.pages, int(page)+1-len(s.pages))
	}
	if s.pages[page] == nil {
		s.pages[page] = s.newPage()
	}
	return s.pages[page]
}

// Get returns the value stored for key, or NullIndex if the key's page is
// absent or its slot has never been set (or was Remove'd/Clear'd).
func (s *SparseIndex) Get(key Entity) EntityIndex {
	page, off := s.pageIndex(key)
	if int(page) >= len(s.pages) || s.pages[page] == nil {
		return NullIndex
	}
	return (*s.pages[page])[off]
}

// Insert records value for key. Precondition (debug-checked): the slot for
// key was previously NullIndex. value must not be NullIndex.
func (s *SparseIndex) Insert(key Entity, value EntityIndex) {
	if value == NullIndex {
		panic("ecscore: SparseIndex.Insert: value must not be NullIndex")
	}
	if DebugChecks && s.Get(key) != NullIndex {
		failPrecondition("SparseIndex.Insert", key, "slot already occupied")
	}
	s.Assign(key, value)
}

// Assign records value for key unconditionally, overwriting any existing
// value. value must not be NullIndex.
func (s *SparseIndex) Assign(key Entity, value EntityIndex) {
	if value == NullIndex {
		panic("ecscore: SparseIndex.Assign: value must not be NullIndex")
	}
	page, off := s.pageIndex(key)
	p := s.ensurePage(page)
	(*p)[off] = value
}

// Remove resets the slot for key to NullIndex. Precondition (debug-checked):
// the slot is currently non-null.
func (s *SparseIndex) Remove(key Entity) {
	page, off := s.pageIndex(key)
	if int(page) >= len(s.pages) || s.pages[page] == nil {
		if DebugChecks {
			failPrecondition("SparseIndex.Remove", key, "slot already empty")
		}
		return
	}
	p := s.pages[page]
	if DebugChecks && (*p)[off] == NullIndex {
		failPrecondition("SparseIndex.Remove", key, "slot already empty")
	}
	(*p)[off] = NullIndex
}

// Extract returns the current value for key, then removes it. Precondition
// (debug-checked): the slot is currently non-null.
func (s *SparseIndex) Extract(key Entity) EntityIndex {
	v := s.Get(key)
	if DebugChecks && v == NullIndex {
		failPrecondition("SparseIndex.Extract", key, "slot already empty")
	}
	s.Remove(key)
	return v
}

// Clear resets every populated slot back to NullIndex without releasing
// page storage. Because NullIndex is the page initializer, this is a
// re-run of the initializer over each allocated page rather than
// per-entity bookkeeping.
func (s *SparseIndex) Clear() {
	for _, p := range s.pages {
		if p == nil {
			continue
		}
		for i := range *p {
			(*p)[i] = NullIndex
		}
	}
}

// Release drops every page, returning the index to its zero-allocation
// state. A subsequent Insert re-materializes pages on demand.
func (s *SparseIndex) Release() {
	s.pages = nil
}
