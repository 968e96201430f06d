package counter

import "cmp"

// KnownCounterKind tags an erased counter with the concrete kind that
// produced it. Declaration order is canonical: reports always render kinds
// in this order, regardless of registration order.
type KnownCounterKind uint8

const (
	KindBytes KnownCounterKind = iota
	KindChars
	KindItems

	// NumKnownKinds is the number of counter kinds; valid kinds are
	// always below it.
	NumKnownKinds
)

// KnownKinds returns every counter kind in canonical order.
func KnownKinds() [NumKnownKinds]KnownCounterKind {
	return [NumKnownKinds]KnownCounterKind{KindBytes, KindChars, KindItems}
}

func (k KnownCounterKind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindChars:
		return "chars"
	case KindItems:
		return "items"
	default:
		return "unknown"
	}
}

// AnyCounter is a type-erased counter: the kind tag plus the widened count.
// It holds no other state and never allocates, so heterogeneous containers
// can store whatever counters were registered without reflection.
type AnyCounter struct {
	kind  KnownCounterKind
	count MaxCountUint
}

// Erase converts a concrete counter into its uniform representation.
func Erase(c Counter) AnyCounter {
	return AnyCounter{kind: c.counterKind(), count: c.counterCount()}
}

// Kind returns the kind tag recorded at erasure time.
func (a AnyCounter) Kind() KnownCounterKind { return a.kind }

// Count returns the widened count in the kind's native unit.
func (a AnyCounter) Count() MaxCountUint { return a.count }

// Compare orders by kind first, then by count, so sorting a heterogeneous
// collection groups counters deterministically.
func (a AnyCounter) Compare(b AnyCounter) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}

	return cmp.Compare(a.count, b.count)
}
