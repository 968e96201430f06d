// Package counter measures how much work a benchmarked function performs in
// each iteration, so elapsed time can be reported as throughput (bytes,
// Unicode code points, or abstract items per second).
//
// Counters are plain value types. A benchmark registers one or more of them
// through a Bencher; the sampling engine accumulates the registered amounts
// across iterations and the reporter divides by elapsed time.
package counter

import (
	"cmp"
	"iter"
	"reflect"
	"unicode/utf8"
	"unsafe"
)

// Counter is a per-iteration work amount in a specific unit. It is a sealed
// interface: only BytesCount, CharsCount and ItemsCount implement it, which
// keeps the kind set extensible without breaking external code.
type Counter interface {
	// counterKind and counterCount are unexported on purpose. They seal the
	// interface and give the erasure layer its tag and payload.
	counterKind() KnownCounterKind
	counterCount() MaxCountUint
}

// BytesCount reports N bytes processed per iteration.
type BytesCount struct {
	count MaxCountUint
}

// CharsCount reports N Unicode code points processed per iteration.
//
// Counting code points instead of bytes gives ASCII and Unicode
// implementations a common baseline when benchmarking text handling.
type CharsCount struct {
	count MaxCountUint
}

// ItemsCount reports N items processed per iteration. An item is whatever
// domain unit the benchmark chooses; no size is assumed.
type ItemsCount struct {
	count MaxCountUint
}

func (c BytesCount) counterKind() KnownCounterKind { return KindBytes }
func (c CharsCount) counterKind() KnownCounterKind { return KindChars }
func (c ItemsCount) counterKind() KnownCounterKind { return KindItems }

func (c BytesCount) counterCount() MaxCountUint { return c.count }
func (c CharsCount) counterCount() MaxCountUint { return c.count }
func (c ItemsCount) counterCount() MaxCountUint { return c.count }

// Bytes counts n bytes.
func Bytes[N CountUint](n N) BytesCount {
	return BytesCount{count: maxUint(n)}
}

// BytesOf counts the static footprint of T, independent of any instance.
func BytesOf[T any]() BytesCount {
	var v T

	return BytesCount{count: MaxCountUint(unsafe.Sizeof(v))}
}

// BytesOfValue counts the runtime footprint of v. Strings count their byte
// length and slices count element size times length; any other value counts
// its static size. A footprint exceeding the count range saturates rather
// than truncating.
func BytesOfValue(v any) BytesCount {
	if v == nil {
		return BytesCount{}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return BytesCount{count: MaxCountUint(rv.Len())}
	case reflect.Slice:
		elem := MaxCountUint(rv.Type().Elem().Size())

		return BytesCount{count: SaturatingMul(elem, MaxCountUint(rv.Len()))}
	default:
		return BytesCount{count: MaxCountUint(rv.Type().Size())}
	}
}

// BytesOfString counts the byte length of s. Convenience over BytesOfValue
// for any string-like type.
func BytesOfString[S ~string](s S) BytesCount {
	return BytesCount{count: MaxCountUint(len(s))}
}

// BytesOfSlice counts element size times length of s. Convenience over
// BytesOfValue for any slice.
func BytesOfSlice[E any](s []E) BytesCount {
	var e E
	elem := MaxCountUint(unsafe.Sizeof(e))

	return BytesCount{count: SaturatingMul(elem, MaxCountUint(len(s)))}
}

// BytesOfIter counts element size times the number of elements yielded by
// seq. The sequence is consumed in a single pass. The product saturates at
// the count range.
func BytesOfIter[E any](seq iter.Seq[E]) BytesCount {
	var e E
	elem := MaxCountUint(unsafe.Sizeof(e))

	var n MaxCountUint
	for range seq {
		n++
	}

	return BytesCount{count: SaturatingMul(elem, n)}
}

// Chars counts n Unicode code points.
func Chars[N CountUint](n N) CharsCount {
	return CharsCount{count: maxUint(n)}
}

// CharsOfString counts the Unicode code points in s, not its byte length.
func CharsOfString[S ~string](s S) CharsCount {
	return CharsCount{count: MaxCountUint(utf8.RuneCountInString(string(s)))}
}

// Items counts n items.
func Items[N CountUint](n N) ItemsCount {
	return ItemsCount{count: maxUint(n)}
}

// Count returns the wrapped byte count.
func (c BytesCount) Count() MaxCountUint { return c.count }

// Count returns the wrapped code point count.
func (c CharsCount) Count() MaxCountUint { return c.count }

// Count returns the wrapped item count.
func (c ItemsCount) Count() MaxCountUint { return c.count }

// Compare orders byte counts numerically.
func (c BytesCount) Compare(o BytesCount) int { return cmp.Compare(c.count, o.count) }

// Compare orders code point counts numerically.
func (c CharsCount) Compare(o CharsCount) int { return cmp.Compare(c.count, o.count) }

// Compare orders item counts numerically.
func (c ItemsCount) Compare(o ItemsCount) int { return cmp.Compare(c.count, o.count) }
