package counter

// CounterCollection holds at most one active counter per kind. Registering a
// counter of a kind already present replaces the prior entry, which lets a
// per-input hook re-derive a fresh counter on every sample while keeping
// exactly one current value per kind.
//
// The zero value is an empty collection ready for use. Collections are plain
// values with no shared state; each benchmark invocation owns its own.
type CounterCollection struct {
	counters [NumKnownKinds]AnyCounter
	present  CounterSet
}

// Insert records a as the current counter for its kind, replacing any prior
// entry of the same kind.
func (c *CounterCollection) Insert(a AnyCounter) {
	c.counters[a.Kind()] = a
	c.present = c.present.with(a.Kind())
}

// InsertCounter erases ctr and records it as the current counter for its
// kind.
func (c *CounterCollection) InsertCounter(ctr Counter) {
	c.Insert(Erase(ctr))
}

// Get returns the current counter for kind, if one is registered.
func (c *CounterCollection) Get(kind KnownCounterKind) (AnyCounter, bool) {
	if !c.present.Contains(kind) {
		return AnyCounter{}, false
	}

	return c.counters[kind], true
}

// Set returns the set of kinds currently populated.
func (c *CounterCollection) Set() CounterSet {
	return c.present
}

// Clear removes every entry, returning the collection to its zero state.
func (c *CounterCollection) Clear() {
	*c = CounterCollection{}
}

// CounterSet is the derived set of populated kinds in a CounterCollection.
// It is a read-only view; mutate the collection, not the set.
type CounterSet uint8

func (s CounterSet) with(k KnownCounterKind) CounterSet {
	return s | 1<<k
}

// Contains reports whether kind is populated.
func (s CounterSet) Contains(k KnownCounterKind) bool {
	return s&(1<<k) != 0
}

// IsEmpty reports whether no kind is populated.
func (s CounterSet) IsEmpty() bool {
	return s == 0
}

// Len returns the number of populated kinds.
func (s CounterSet) Len() int {
	n := 0
	for _, k := range KnownKinds() {
		if s.Contains(k) {
			n++
		}
	}

	return n
}

// Kinds returns the populated kinds in canonical declaration order,
// regardless of the order they were registered in.
func (s CounterSet) Kinds() []KnownCounterKind {
	kinds := make([]KnownCounterKind, 0, NumKnownKinds)

	for _, k := range KnownKinds() {
		if s.Contains(k) {
			kinds = append(kinds, k)
		}
	}

	return kinds
}
