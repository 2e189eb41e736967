package ecscore

import "sort"

// DenseTable is a packed-array component store: an entity is present iff it
// has been Add-ed and not since Remove-d. Component addresses are unstable
// across any Add/Remove, since a removal swaps the last live component into
// the hole, so holders of *C must not retain it past the next mutation.
//
// Use DenseTable for components that are cheap to move and where dense,
// contiguous iteration matters more than address stability.
type DenseTable[C any] struct {
	indices    *SparseIndex
	entities   []Entity
	components []C
	cfg        tableConfig
}

// NewDenseTable constructs an empty table. WithComponentPageSize has no
// effect here (it only applies to StableTable) and is accepted only for API
// symmetry with NewStableTable.
func NewDenseTable[C any](opts ...Option) *DenseTable[C] {
	cfg := defaultTableConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &DenseTable[C]{
		indices: NewSparseIndex(cfg.entityPageSize),
		cfg:     cfg,
	}
}

// Count returns the number of live entities in the table.
func (t *DenseTable[C]) Count() int { return len(t.entities) }

// Exists reports whether e currently has a component in this table.
func (t *DenseTable[C]) Exists(e Entity) bool {
	return t.indices.Get(e) != NullIndex
}

// Entities returns the table's dense entity slice in storage order. The
// returned slice aliases internal storage and must not be retained across a
// mutating call.
func (t *DenseTable[C]) Entities() []Entity { return t.entities }

// Add inserts value for e. Precondition (debug-checked): e is not already
// present. Returns a pointer to the stored component, valid until the next
// mutating call on this table.
func (t *DenseTable[C]) Add(e Entity, value C) *C {
	if DebugChecks && t.Exists(e) {
		failPrecondition("DenseTable.Add", e, "entity already present")
	}
	idx := len(t.entities)
	t.entities = append(t.entities, e)
	t.components = append(t.components, value)
	t.indices.Insert(e, EntityIndex(idx))
	return &t.components[idx]
}

// TryAdd overwrites e's component with value if present, otherwise behaves
// as Add. Always returns a valid pointer.
func (t *DenseTable[C]) TryAdd(e Entity, value C) *C {
	if idx := t.indices.Get(e); idx != NullIndex {
		t.components[idx] = value
		return &t.components[idx]
	}
	return t.Add(e, value)
}

// TryAddWith passes the existing component to f if e is present; otherwise
// it default-constructs a component, passes it to f, and inserts it. The
// caller is responsible for fully initializing the component inside f on
// the miss path. f is not contractually restricted from leaving a
// zero-valued component partially set, but doing so is almost certainly a
// bug in the caller.
func (t *DenseTable[C]) TryAddWith(e Entity, f func(*C)) *C {
	if idx := t.indices.Get(e); idx != NullIndex {
		f(&t.components[idx])
		return &t.components[idx]
	}
	idx := len(t.entities)
	var zero C
	t.entities = append(t.entities, e)
	t.components = append(t.components, zero)
	f(&t.components[idx])
	t.indices.Insert(e, EntityIndex(idx))
	return &t.components[idx]
}

// AddRange inserts value for every entity in r. Precondition (debug-checked):
// no entity in r is already present.
func (t *DenseTable[C]) AddRange(r EntityRange, value C) {
	n := int(r.Len())
	if n == 0 {
		return
	}
	start := len(t.entities)
	t.cfg.logger.Debugf("ecscore: growing dense table by %d entries (from %d)", n, start)
	t.entities = extendSlice(t.entities, n)
	t.components = extendSlice(t.components, n)
	for i := 0; i < n; i++ {
		e := Entity(uint32(r.Begin) + uint32(i))
		if DebugChecks && t.Exists(e) {
			failPrecondition("DenseTable.AddRange", e, "entity already present")
		}
		t.entities[start+i] = e
		t.components[start+i] = value
		t.indices.Insert(e, EntityIndex(start+i))
	}
}

// Remove detaches e's component. Precondition (debug-checked): e is
// present. The last live component is swapped into the vacated slot unless
// e already occupies the last dense slot.
func (t *DenseTable[C]) Remove(e Entity) {
	if DebugChecks && !t.Exists(e) {
		failPrecondition("DenseTable.Remove", e, "entity not present")
	}
	t.removeAt(t.indices.Extract(e))
}

func (t *DenseTable[C]) removeAt(idx EntityIndex) {
	last := EntityIndex(len(t.entities) - 1)
	if idx != last {
		lastEntity := t.entities[last]
		t.entities[idx] = lastEntity
		t.components[idx] = t.components[last]
		t.indices.Assign(lastEntity, idx)
	}
	var zero C
	t.components[last] = zero
	t.entities = t.entities[:last]
	t.components = t.components[:last]
}

// TryRemove removes e if present and reports whether it was. This is the
// soft-miss counterpart to Remove: absence is a normal outcome, not a
// precondition violation.
func (t *DenseTable[C]) TryRemove(e Entity) bool {
	idx := t.indices.Get(e)
	if idx == NullIndex {
		return false
	}
	t.indices.Remove(e)
	t.removeAt(idx)
	return true
}

// RemoveRange detaches every entity in r that is present, a no-op for
// entities in r that are not. Internally it batches the swap-compaction: it
// collects the dense indices to remove, processes them in descending order
// so each swap source is read before any later swap overwrites it, and
// truncates once.
func (t *DenseTable[C]) RemoveRange(r EntityRange) {
	var holes []EntityIndex
	for e := r.Begin; e < r.End; e++ {
		if idx := t.indices.Get(e); idx != NullIndex {
			holes = append(holes, idx)
		}
	}
	if len(holes) == 0 {
		return
	}
	sort.Slice(holes, func(i, j int) bool { return holes[i] > holes[j] })

	end := EntityIndex(len(t.entities))
	for _, h := range holes {
		t.indices.Remove(t.entities[h])
		end--
		if h != end {
			movedEntity := t.entities[end]
			t.entities[h] = movedEntity
			t.components[h] = t.components[end]
			t.indices.Assign(movedEntity, h)
		}
	}
	newLen := len(t.entities) - len(holes)
	var zero C
	for i := newLen; i < len(t.entities); i++ {
		t.components[i] = zero
	}
	t.entities = t.entities[:newLen]
	t.components = t.components[:newLen]
}

// Extract removes e and returns its component by value. Precondition
// (debug-checked): e is present.
func (t *DenseTable[C]) Extract(e Entity) C {
	if DebugChecks && !t.Exists(e) {
		failPrecondition("DenseTable.Extract", e, "entity not present")
	}
	idx := t.indices.Extract(e)
	v := t.components[idx]
	t.removeAt(idx)
	return v
}

// Get returns a pointer to e's component. Precondition (debug-checked): e
// is present.
func (t *DenseTable[C]) Get(e Entity) *C {
	idx := t.indices.Get(e)
	if idx == NullIndex {
		if DebugChecks {
			failPrecondition("DenseTable.Get", e, "entity not present")
		}
		return nil
	}
	return &t.components[idx]
}

// GetMut is an alias for Get; both return the same *C, since Go has no
// separate immutable accessor to distinguish it from.
func (t *DenseTable[C]) GetMut(e Entity) *C { return t.Get(e) }

// GetUnstable returns e's current dense index, or NullIndex if absent. This
// is a soft-miss accessor: it never panics.
func (t *DenseTable[C]) GetUnstable(e Entity) EntityIndex {
	return t.indices.Get(e)
}

// AtIndex returns a pointer to the component at dense position i. Passing
// an out-of-range i panics in debug builds (DebugChecks) and is undefined
// behavior otherwise.
func (t *DenseTable[C]) AtIndex(i EntityIndex) *C {
	if DebugChecks && (int(i) < 0 || int(i) >= len(t.components)) {
		panic("ecscore: DenseTable.AtIndex: index out of range")
	}
	return &t.components[i]
}

// Iter calls f for every live component in dense order. f may return false
// to stop early.
func (t *DenseTable[C]) Iter(f func(*C) bool) {
	for i := range t.components {
		if !f(&t.components[i]) {
			return
		}
	}
}

// IterMut is an alias for Iter.
func (t *DenseTable[C]) IterMut(f func(*C) bool) { t.Iter(f) }

// Traversal comes in three explicit shapes rather than one callback
// overloaded on its reflected arity, so no reflection is needed to
// distinguish them:
//   - ForEachEntity(f) for entity-only traversal
//   - ForEachComponent(f) for component-only traversal (equivalent to Iter)
//   - ForEachEntityAndComponent(f) for paired traversal
//
// Each returns early when f returns false.
func (t *DenseTable[C]) ForEachEntity(f func(Entity) bool) {
	for i := range t.entities {
		if !f(t.entities[i]) {
			return
		}
	}
}

func (t *DenseTable[C]) ForEachComponent(f func(*C) bool) { t.Iter(f) }

func (t *DenseTable[C]) ForEachEntityAndComponent(f func(Entity, *C) bool) {
	for i := range t.entities {
		if !f(t.entities[i], &t.components[i]) {
			return
		}
	}
}

// Sort permutes the table so that Entities() becomes totally ordered under
// less. It sorts the entity slice in place, then recovers the permutation
// one entity at a time from the sparse index (still pointing at each
// entity's old slot until that slot is patched) and chases each cycle,
// writing one component into its final slot per step. Bookkeeping is three
// scalars: the slot being resolved, the slot its value is drawn from, and
// the value carried out of the slot where the cycle closes back on itself.
func (t *DenseTable[C]) Sort(less func(a, b Entity) bool) {
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
		carried := t.components[i]
		current := i
		for {
			next := int(t.indices.Get(t.entities[current]))
			if next == i {
				t.components[current] = carried
				t.indices.Assign(t.entities[current], EntityIndex(current))
				break
			}
			t.components[current] = t.components[next]
			t.indices.Assign(t.entities[current], EntityIndex(current))
			current = next
		}
	}
}

// Clear drops every component and empties the table while retaining
// allocated capacity for entities/components and sparse-index pages.
func (t *DenseTable[C]) Clear() {
	var zero C
	for i := range t.components {
		t.components[i] = zero
	}
	t.entities = t.entities[:0]
	t.components = t.components[:0]
	t.indices.Clear()
}

// Release clears the table and frees its backing buffers and sparse-index
// pages.
func (t *DenseTable[C]) Release() {
	t.entities = nil
	t.components = nil
	t.indices.Release()
}
