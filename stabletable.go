package ecscore

import "sort"

// StableTable is a paged component store whose live component addresses do
// not change for the component's lifetime: a removal leaves a tombstone
// (entities[i] == NullEntity) rather than swapping, so any *C handed out by
// Get/Add stays valid until that entity is removed or Pack runs.
//
// Use StableTable for components whose address is held elsewhere (e.g. by a
// parent/child graph) or that are too expensive to move on every removal.
type StableTable[C any] struct {
	indices    *SparseIndex
	entities   []Entity
	pages      [][]C
	tombstones []EntityIndex
	pageSize   uint32
	cfg        tableConfig
}

// NewStableTable constructs an empty table. A zero WithComponentPageSize
// selects 4096/sizeof(C) rounded down to a power of two, clamped to at
// least 1.
func NewStableTable[C any](opts ...Option) *StableTable[C] {
	cfg := defaultTableConfig()
	for _, o := range opts {
		o(&cfg)
	}
	pageSize := cfg.componentPageSize
	if pageSize == 0 {
		pageSize = defaultComponentPageSize[C]()
	}
	return &StableTable[C]{
		indices:  NewSparseIndex(cfg.entityPageSize),
		pageSize: pageSize,
		cfg:      cfg,
	}
}

// Count returns the number of live (non-tombstone) entries.
func (t *StableTable[C]) Count() int { return len(t.entities) - len(t.tombstones) }

// Exists reports whether e currently has a component in this table.
func (t *StableTable[C]) Exists(e Entity) bool {
	return t.indices.Get(e) != NullIndex
}

func (t *StableTable[C]) slot(i EntityIndex) (page, offset uint32) {
	return uint32(i) / t.pageSize, uint32(i) % t.pageSize
}

func (t *StableTable[C]) ensureSlot(i EntityIndex) {
	page, _ := t.slot(i)
	if int(page) >= len(t.pages) {
		t.pages = extendSlice(t.pages, int(page)+1-len(t.pages))
	}
	if t.pages[page] == nil {
		t.pages[page] = make([]C, t.pageSize)
	}
}

func (t *StableTable[C]) at(i EntityIndex) *C {
	page, offset := t.slot(i)
	return &t.pages[page][offset]
}

// nextFreeSlot returns a slot index for a new entry, popping the top
// tombstone LIFO if one exists, otherwise appending a fresh slot.
func (t *StableTable[C]) nextFreeSlot(e Entity) EntityIndex {
	if n := len(t.tombstones); n > 0 {
		i := t.tombstones[n-1]
		t.tombstones = t.tombstones[:n-1]
		t.entities[i] = e
		return i
	}
	i := EntityIndex(len(t.entities))
	t.entities = append(t.entities, e)
	t.ensureSlot(i)
	return i
}

// Add inserts value for e. Precondition (debug-checked): e is not already
// present.
func (t *StableTable[C]) Add(e Entity, value C) *C {
	if DebugChecks && t.Exists(e) {
		failPrecondition("StableTable.Add", e, "entity already present")
	}
	i := t.nextFreeSlot(e)
	ptr := t.at(i)
	*ptr = value
	t.indices.Insert(e, i)
	return ptr
}

// TryAdd overwrites e's component with value if present, otherwise behaves
// as Add.
func (t *StableTable[C]) TryAdd(e Entity, value C) *C {
	if i := t.indices.Get(e); i != NullIndex {
		ptr := t.at(i)
		*ptr = value
		return ptr
	}
	return t.Add(e, value)
}

// TryAddWith passes the existing component to f if e is present; otherwise
// it default-constructs a component, passes it to f, and inserts it.
func (t *StableTable[C]) TryAddWith(e Entity, f func(*C)) *C {
	if i := t.indices.Get(e); i != NullIndex {
		ptr := t.at(i)
		f(ptr)
		return ptr
	}
	i := t.nextFreeSlot(e)
	ptr := t.at(i)
	var zero C
	*ptr = zero
	f(ptr)
	t.indices.Insert(e, i)
	return ptr
}

// AddRange inserts value for every entity in r. Precondition
// (debug-checked): no entity in r is already present.
func (t *StableTable[C]) AddRange(r EntityRange, value C) {
	for e := r.Begin; e < r.End; e++ {
		t.Add(e, value)
	}
}

// Remove detaches e's component, leaving a tombstone. No data moves; every
// other live component's address is preserved.
func (t *StableTable[C]) Remove(e Entity) {
	i := t.indices.Get(e)
	if i == NullIndex {
		if DebugChecks {
			failPrecondition("StableTable.Remove", e, "entity not present")
		}
		return
	}
	t.indices.Remove(e)
	var zero C
	*t.at(i) = zero
	t.entities[i] = NullEntity
	t.tombstones = append(t.tombstones, i)
}

// TryRemove removes e if present and reports whether it was.
func (t *StableTable[C]) TryRemove(e Entity) bool {
	if t.indices.Get(e) == NullIndex {
		return false
	}
	t.Remove(e)
	return true
}

// RemoveRange detaches every present entity in r, tombstoning each in
// place. Precondition (debug-checked): every entity in r is present.
func (t *StableTable[C]) RemoveRange(r EntityRange) {
	for e := r.Begin; e < r.End; e++ {
		if t.indices.Get(e) == NullIndex {
			if DebugChecks {
				failPrecondition("StableTable.RemoveRange", e, "entity not present")
			}
			continue
		}
		t.Remove(e)
	}
}

// Extract removes e and returns its component by value. Precondition
// (debug-checked): e is present.
func (t *StableTable[C]) Extract(e Entity) C {
	i := t.indices.Get(e)
	if DebugChecks && i == NullIndex {
		failPrecondition("StableTable.Extract", e, "entity not present")
	}
	v := *t.at(i)
	t.Remove(e)
	return v
}

// Get returns a pointer to e's component. Precondition (debug-checked): e
// is present. The pointer remains valid until e is removed or Pack runs.
func (t *StableTable[C]) Get(e Entity) *C {
	i := t.indices.Get(e)
	if i == NullIndex {
		if DebugChecks {
			failPrecondition("StableTable.Get", e, "entity not present")
		}
		return nil
	}
	return t.at(i)
}

// GetMut is an alias for Get.
func (t *StableTable[C]) GetMut(e Entity) *C { return t.Get(e) }

// GetUnstable returns e's current slot index, or NullIndex if absent. The
// name is kept for symmetry with DenseTable even though, unlike there, the
// value returned here does not change until Pack runs.
func (t *StableTable[C]) GetUnstable(e Entity) EntityIndex {
	return t.indices.Get(e)
}

// AtIndex returns a pointer to the component at slot i, tombstoned or not.
// Passing an out-of-range i panics in debug builds and is undefined
// behavior otherwise.
func (t *StableTable[C]) AtIndex(i EntityIndex) *C {
	if DebugChecks && (int(i) < 0 || int(i) >= len(t.entities)) {
		panic("ecscore: StableTable.AtIndex: index out of range")
	}
	return t.at(i)
}

// Iter calls f for every live (non-tombstone) component, skipping
// tombstoned slots. f may return false to stop early.
func (t *StableTable[C]) Iter(f func(*C) bool) {
	for i, e := range t.entities {
		if e == NullEntity {
			continue
		}
		if !f(t.at(EntityIndex(i))) {
			return
		}
	}
}

// IterMut is an alias for Iter.
func (t *StableTable[C]) IterMut(f func(*C) bool) { t.Iter(f) }

// ForEachEntity traverses live entities only, skipping tombstones.
func (t *StableTable[C]) ForEachEntity(f func(Entity) bool) {
	for _, e := range t.entities {
		if e == NullEntity {
			continue
		}
		if !f(e) {
			return
		}
	}
}

func (t *StableTable[C]) ForEachComponent(f func(*C) bool) { t.Iter(f) }

func (t *StableTable[C]) ForEachEntityAndComponent(f func(Entity, *C) bool) {
	for i, e := range t.entities {
		if e == NullEntity {
			continue
		}
		if !f(e, t.at(EntityIndex(i))) {
			return
		}
	}
}

// Pack compacts away every tombstone, moving live tail entries down into
// the holes left behind. A no-op if there are no tombstones. After Pack,
// slot indices are dense again (0..Count()) and any GetUnstable result
// obtained before the call is invalidated.
func (t *StableTable[C]) Pack() {
	if len(t.tombstones) == 0 {
		return
	}
	t.cfg.logger.Debugf("ecscore: packing %d tombstones out of %d slots", len(t.tombstones), len(t.entities))
	write := 0
	for read, e := range t.entities {
		if e == NullEntity {
			continue
		}
		if write != read {
			*t.at(EntityIndex(write)) = *t.at(EntityIndex(read))
			t.entities[write] = e
			t.indices.Assign(e, EntityIndex(write))
		}
		write++
	}
	var zero C
	for i := write; i < len(t.entities); i++ {
		*t.at(EntityIndex(i)) = zero
	}
	t.entities = t.entities[:write]
	t.tombstones = t.tombstones[:0]
}

// Sort first Packs (a tombstoned table has no well-defined permutation to
// chase), then sorts the entity slice in place and chases each cycle through
// the page-addressed components, recovering the permutation from the sparse
// index the same way DenseTable.Sort does for its flat array.
func (t *StableTable[C]) Sort(less func(a, b Entity) bool) {
	t.Pack()
	n := len(t.entities)
	if n < 2 {
		return
	}
	sort.Slice(t.entities, func(i, j int) bool {
		return less(t.entities[i], t.entities[j])
	})

	for i := 0; i < n; i++ {
		if t.indices.Get(t.entities[i]) == EntityIndex(i) {
			continue
		}
		carried := *t.at(EntityIndex(i))
		current := i
		for {
			next := int(t.indices.Get(t.entities[current]))
			if next == i {
				*t.at(EntityIndex(current)) = carried
				t.indices.Assign(t.entities[current], EntityIndex(current))
				break
			}
			*t.at(EntityIndex(current)) = *t.at(EntityIndex(next))
			t.indices.Assign(t.entities[current], EntityIndex(current))
			current = next
		}
	}
}

// Clear drops every live component and empties the table while retaining
// allocated page and index capacity.
func (t *StableTable[C]) Clear() {
	var zero C
	for i, e := range t.entities {
		if e != NullEntity {
			*t.at(EntityIndex(i)) = zero
		}
	}
	t.entities = t.entities[:0]
	t.tombstones = t.tombstones[:0]
	t.indices.Clear()
}

// Release clears the table and frees its page storage and sparse-index
// pages.
func (t *StableTable[C]) Release() {
	t.entities = nil
	t.pages = nil
	t.tombstones = nil
	t.indices.Release()
}
