// Package report renders benchmark results as an aligned table (pretty) or
// one line per benchmark (terse), with per-kind throughput rows.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ethpandaops/benchoor/counter"
	"github.com/ethpandaops/benchoor/internal/sampler"
)

// Format selects the output layout.
type Format uint8

const (
	// FormatPretty renders an aligned table with throughput sub-rows.
	FormatPretty Format = iota

	// FormatTerse renders one compact line per benchmark.
	FormatTerse
)

func (f Format) String() string {
	switch f {
	case FormatTerse:
		return "terse"
	default:
		return "pretty"
	}
}

// ParseFormat parses a format name from the CLI or environment.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "pretty":
		return FormatPretty, nil
	case "terse":
		return FormatTerse, nil
	default:
		return FormatPretty, fmt.Errorf("invalid format %q (expected pretty or terse)", s)
	}
}

// Row is one line of the report: a group heading or a finished benchmark.
type Row struct {
	// Path is the full benchmark path, e.g. "strings::count_runes".
	Path string

	// Name is the last path segment, rendered at Depth indentation.
	Name string

	// Depth is the nesting level in the group tree.
	Depth int

	// IsGroup marks group headings, which carry no result.
	IsGroup bool

	// Result holds the sampling outcome for benchmark rows. Nil in list
	// mode and for groups.
	Result *sampler.Result
}

// Reporter writes rows in a fixed format.
type Reporter struct {
	w           io.Writer
	format      Format
	color       bool
	bytesFormat counter.BytesFormat
}

// New creates a reporter. color enables ANSI escapes.
func New(w io.Writer, format Format, color bool, bytesFormat counter.BytesFormat) *Reporter {
	return &Reporter{w: w, format: format, color: color, bytesFormat: bytesFormat}
}

var statColumns = []string{"fastest", "slowest", "median", "mean"}

// Report renders all rows.
func (r *Reporter) Report(title string, rows []Row) {
	if r.format == FormatTerse {
		r.reportTerse(rows)

		return
	}

	r.reportPretty(title, rows)
}

// List prints benchmark paths only, one per line.
func (r *Reporter) List(rows []Row) {
	for _, row := range rows {
		if row.IsGroup {
			continue
		}

		fmt.Fprintln(r.w, row.Path)
	}
}

func (r *Reporter) reportPretty(title string, rows []Row) {
	const indent = "   "

	// Build every cell first so columns can be aligned.
	type line struct {
		name  string
		cells []string
		group bool
		rate  bool
	}

	lines := make([]line, 0, len(rows)*2)

	for _, row := range rows {
		name := strings.Repeat(indent, row.Depth) + row.Name

		if row.IsGroup || row.Result == nil {
			lines = append(lines, line{name: name, group: row.IsGroup})

			continue
		}

		stats := row.Result.Stats()
		times := []time.Duration{stats.Fastest, stats.Slowest, stats.Median, stats.Mean}

		cells := make([]string, len(times))
		for i, d := range times {
			cells[i] = formatDuration(d)
		}

		lines = append(lines, line{name: name, cells: cells})

		// One throughput sub-row per registered kind, always in canonical
		// kind order.
		for _, kind := range row.Result.Set.Kinds() {
			perIter, ok := row.Result.CountPerIter(kind)
			if !ok {
				continue
			}

			cells := make([]string, len(times))
			for i, d := range times {
				cells[i] = counter.FormatRate(kind, rate(perIter, d), r.bytesFormat)
			}

			lines = append(lines, line{name: strings.Repeat(indent, row.Depth+1), cells: cells, rate: true})
		}
	}

	// Column widths.
	nameWidth := len(title)
	for _, l := range lines {
		if len(l.name) > nameWidth {
			nameWidth = len(l.name)
		}
	}

	widths := make([]int, len(statColumns))
	for i, h := range statColumns {
		widths[i] = len(h)
	}

	for _, l := range lines {
		for i, c := range l.cells {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	// Pad before painting so escape codes never skew column widths.
	fmt.Fprintf(r.w, "%-*s", nameWidth, title)

	for i, h := range statColumns {
		fmt.Fprintf(r.w, "  %s", r.paint(fmt.Sprintf("%*s", widths[i], h), ansiBold))
	}

	fmt.Fprintln(r.w)

	for _, l := range lines {
		name := fmt.Sprintf("%-*s", nameWidth, l.name)
		if l.group {
			name = r.paint(name, ansiCyan)
		}

		fmt.Fprint(r.w, name)

		for i, c := range l.cells {
			c = fmt.Sprintf("%*s", widths[i], c)
			if l.rate {
				c = r.paint(c, ansiDim)
			}

			fmt.Fprintf(r.w, "  %s", c)
		}

		fmt.Fprintln(r.w)
	}
}

func (r *Reporter) reportTerse(rows []Row) {
	for _, row := range rows {
		if row.IsGroup || row.Result == nil {
			continue
		}

		stats := row.Result.Stats()

		parts := []string{
			"fastest=" + formatDuration(stats.Fastest),
			"slowest=" + formatDuration(stats.Slowest),
			"median=" + formatDuration(stats.Median),
			"mean=" + formatDuration(stats.Mean),
		}

		for _, kind := range row.Result.Set.Kinds() {
			perIter, ok := row.Result.CountPerIter(kind)
			if !ok {
				continue
			}

			parts = append(parts,
				kind.String()+"="+counter.FormatRate(kind, rate(perIter, stats.Mean), r.bytesFormat))
		}

		fmt.Fprintf(r.w, "%s: %s\n", row.Path, strings.Join(parts, " "))
	}
}

// rate converts a per-iteration count and per-iteration time into a
// per-second rate.
func rate(perIter float64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}

	return perIter / d.Seconds()
}

// ANSI escapes used by pretty output.
const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiCyan  = "\x1b[36m"
)

func (r *Reporter) paint(s, code string) string {
	if !r.color || s == "" {
		return s
	}

	return code + s + ansiReset
}

// formatDuration renders a duration with four significant digits and a
// fitting unit, e.g. "1.234 µs".
func formatDuration(d time.Duration) string {
	ns := float64(d.Nanoseconds())

	switch {
	case ns < 1e3:
		return sig4(ns) + " ns"
	case ns < 1e6:
		return sig4(ns/1e3) + " µs"
	case ns < 1e9:
		return sig4(ns/1e6) + " ms"
	default:
		return sig4(ns/1e9) + " s"
	}
}

func sig4(v float64) string {
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
