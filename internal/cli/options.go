package cli

import (
	"fmt"

	"github.com/ethpandaops/benchoor/counter"
	"github.com/ethpandaops/benchoor/internal/report"
	"github.com/ethpandaops/benchoor/internal/sampler"
	"github.com/ethpandaops/benchoor/internal/timer"
)

// SortAttr selects the attribute benchmarks are ordered by.
type SortAttr uint8

const (
	// SortKind orders sibling benchmarks before nested groups. Default.
	SortKind SortAttr = iota

	// SortName orders alphabetically by name.
	SortName

	// SortLocation orders by source file and line of registration.
	SortLocation
)

func (a SortAttr) String() string {
	switch a {
	case SortName:
		return "name"
	case SortLocation:
		return "location"
	default:
		return "kind"
	}
}

// ParseSortAttr parses a sorting attribute name.
func ParseSortAttr(s string) (SortAttr, error) {
	switch s {
	case "kind":
		return SortKind, nil
	case "name":
		return SortName, nil
	case "location":
		return SortLocation, nil
	default:
		return SortKind, fmt.Errorf("invalid sort attribute %q (expected kind, name or location)", s)
	}
}

// Options is the fully resolved configuration a run executes with. Every
// field is validated before any benchmark is invoked.
type Options struct {
	// Filter restricts runs to benchmarks whose path matches.
	Filter string

	// Exact matches Filter and Skip patterns against the full path instead
	// of by substring.
	Exact bool

	// Skip drops benchmarks whose path matches any pattern.
	Skip []string

	// Test runs every selected benchmark exactly once.
	Test bool

	// List prints selected benchmark paths without running them.
	List bool

	// Ignored runs only benchmarks registered as ignored.
	Ignored bool

	// IncludeIgnored runs ignored and regular benchmarks alike.
	IncludeIgnored bool

	// Sort is the ordering attribute; SortDescending flips it.
	Sort           SortAttr
	SortDescending bool

	Color       report.ColorMode
	Format      report.Format
	BytesFormat counter.BytesFormat
	Timer       timer.Kind
	Sampling    sampler.Config

	LogLevel string
}

// DefaultOptions mirrors the defaults of the flag surface.
func DefaultOptions() *Options {
	return &Options{
		Sort:        SortKind,
		Color:       report.ColorAuto,
		Format:      report.FormatPretty,
		BytesFormat: counter.BytesFormatDecimal,
		Timer:       timer.KindOS,
		LogLevel:    "warn",
	}
}
