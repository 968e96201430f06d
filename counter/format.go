package counter

import (
	"fmt"
	"strconv"
	"strings"
)

// BytesFormat selects the numerical base used when rendering byte counts
// and byte rates. It is a display setting only: stored counts and
// accumulation arithmetic never change with it.
type BytesFormat uint8

const (
	// BytesFormatDecimal scales by powers of 1000 (KB, MB, GB). Default.
	BytesFormatDecimal BytesFormat = iota

	// BytesFormatBinary scales by powers of 1024 (KiB, MiB, GiB).
	BytesFormatBinary
)

func (f BytesFormat) String() string {
	switch f {
	case BytesFormatBinary:
		return "binary"
	default:
		return "decimal"
	}
}

// ParseBytesFormat parses the two externally selectable format names.
func ParseBytesFormat(s string) (BytesFormat, error) {
	switch s {
	case "decimal":
		return BytesFormatDecimal, nil
	case "binary":
		return BytesFormatBinary, nil
	default:
		return BytesFormatDecimal, fmt.Errorf("invalid bytes format %q (expected decimal or binary)", s)
	}
}

var (
	decimalByteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	binaryByteUnits  = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	charUnits        = []string{"char", "Kchar", "Mchar", "Gchar", "Tchar", "Pchar", "Echar"}
	itemUnits        = []string{"item", "Kitem", "Mitem", "Gitem", "Titem", "Pitem", "Eitem"}
)

// FormatBytes renders a byte count scaled per f, e.g. 1_000_000 decimal is
// "1 MB" and 1_048_576 binary is "1 MiB".
func FormatBytes(n MaxCountUint, f BytesFormat) string {
	return scaled(float64(n), f.base(), f.byteUnits())
}

// FormatCount renders a count of the given kind. Chars and items always
// scale decimally; bytes honor f.
func FormatCount(kind KnownCounterKind, n MaxCountUint, f BytesFormat) string {
	return scaledKind(kind, float64(n), f)
}

// FormatRate renders a per-second rate of the given kind, e.g. "1 MB/s" or
// "5.2 Kitem/s".
func FormatRate(kind KnownCounterKind, perSec float64, f BytesFormat) string {
	return scaledKind(kind, perSec, f) + "/s"
}

func (f BytesFormat) base() float64 {
	if f == BytesFormatBinary {
		return 1024
	}

	return 1000
}

func (f BytesFormat) byteUnits() []string {
	if f == BytesFormatBinary {
		return binaryByteUnits
	}

	return decimalByteUnits
}

func scaledKind(kind KnownCounterKind, v float64, f BytesFormat) string {
	switch kind {
	case KindBytes:
		return scaled(v, f.base(), f.byteUnits())
	case KindChars:
		return scaled(v, 1000, charUnits)
	default:
		return scaled(v, 1000, itemUnits)
	}
}

// scaled picks the largest unit keeping the value at or above one, then
// renders with four significant digits, trailing zeros trimmed.
func scaled(v, base float64, units []string) string {
	if v < 0 {
		v = 0
	}

	i := 0
	for v >= base && i < len(units)-1 {
		v /= base
		i++
	}

	return sigDigits(v) + " " + units[i]
}

func sigDigits(v float64) string {
	var prec int

	switch {
	case v >= 1000:
		prec = 0
	case v >= 100:
		prec = 1
	case v >= 10:
		prec = 2
	default:
		prec = 3
	}

	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}

	return s
}
