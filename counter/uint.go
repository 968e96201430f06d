package counter

import "math/bits"

// MaxCountUint is the widest unsigned representation used for all stored
// counts. Every supported source width converts into it without loss.
type MaxCountUint = uint64

// CountUint is the set of unsigned integer types accepted as raw counts.
// Signed types are deliberately excluded so a negative value can never be
// reinterpreted as a huge count; passing one is a compile error, not a
// runtime condition.
type CountUint interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// maxUint widens n into MaxCountUint. Lossless for every CountUint type.
func maxUint[N CountUint](n N) MaxCountUint {
	return MaxCountUint(n)
}

// SaturatingAdd adds two counts, saturating at the maximum representable
// value. Lifetime totals accumulate with it so an overflow clamps instead of
// wrapping.
func SaturatingAdd(a, b MaxCountUint) MaxCountUint {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^MaxCountUint(0)
	}

	return sum
}

// SaturatingMul multiplies two counts, saturating at the maximum
// representable value. Used when widening runtime-measured footprints
// (element size times element count), where the product can in principle
// exceed the count range.
func SaturatingMul(a, b MaxCountUint) MaxCountUint {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return ^MaxCountUint(0)
	}

	return lo
}
