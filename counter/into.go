package counter

// IntoCounter is anything with a default counter interpretation. The three
// concrete kinds convert to themselves, so registration entry points accept
// either an explicit counter or any convertible value.
type IntoCounter interface {
	IntoCounter() Counter
}

// IntoCounter returns the counter itself.
func (c BytesCount) IntoCounter() Counter { return c }

// IntoCounter returns the counter itself.
func (c CharsCount) IntoCounter() Counter { return c }

// IntoCounter returns the counter itself.
func (c ItemsCount) IntoCounter() Counter { return c }

// Countable is the set of raw values Into accepts: unsigned integers and
// byte-like sequences. Anything else is a compile error, never a runtime
// failure.
type Countable interface {
	uint | uint8 | uint16 | uint32 | uint64 | uintptr | string | []byte
}

// Into converts a raw value into its default counter kind: a bare unsigned
// count becomes an ItemsCount, a string or byte slice becomes a BytesCount
// of its length.
func Into[V Countable](v V) Counter {
	switch v := any(v).(type) {
	case uint:
		return Items(v)
	case uint8:
		return Items(v)
	case uint16:
		return Items(v)
	case uint32:
		return Items(v)
	case uint64:
		return Items(v)
	case uintptr:
		return Items(v)
	case string:
		return BytesOfString(v)
	case []byte:
		return Bytes(uint(len(v)))
	default:
		// Countable is a closed set; the switch above is exhaustive.
		panic("counter: unreachable")
	}
}
