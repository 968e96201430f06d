// Package benchoor is a micro-benchmark harness. Benchmarks register
// themselves on a Runner, optionally attach counters describing how much
// work one iteration performs, and the harness samples them and reports
// per-iteration times plus throughput.
//
//	func main() {
//		r := benchoor.New()
//
//		r.Bench("rune_count", func(b *benchoor.Bencher) {
//			b.Counter(counter.BytesOfString(text))
//			b.Bench(func() {
//				utf8.RuneCountInString(text)
//			})
//		})
//
//		r.Main()
//	}
package benchoor

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/ethpandaops/benchoor/counter"
	"github.com/ethpandaops/benchoor/internal/cli"
)

// pathSeparator joins group and benchmark names into a full path.
const pathSeparator = "::"

// BenchFunc is the registered body of a benchmark. It receives a Bencher,
// attaches counters and hands the measured closure to Bencher.Bench.
type BenchFunc func(b *Bencher)

type entry struct {
	name     string
	groups   []string
	file     string
	line     int
	ignored  bool
	order    int
	counters []counter.Counter
	fn       BenchFunc
}

func (e *entry) path() string {
	if len(e.groups) == 0 {
		return e.name
	}

	return strings.Join(e.groups, pathSeparator) + pathSeparator + e.name
}

// BenchOption configures a registered benchmark.
type BenchOption func(*entry)

// Ignore registers the benchmark as ignored: it is skipped unless --ignored
// or --include-ignored selects it.
func Ignore() BenchOption {
	return func(e *entry) {
		e.ignored = true
	}
}

// WithCounter attaches a counter at registration time, before the benchmark
// body runs. The body may still replace it per kind.
func WithCounter(c counter.IntoCounter) BenchOption {
	return func(e *entry) {
		e.counters = append(e.counters, c.IntoCounter())
	}
}

// Runner owns the registered benchmarks of one binary.
type Runner struct {
	entries []*entry
}

// New creates an empty runner.
func New() *Runner {
	return &Runner{}
}

// Bench registers a benchmark at the top level.
func (r *Runner) Bench(name string, fn BenchFunc, opts ...BenchOption) {
	r.benchAt(2, nil, name, fn, opts...)
}

// Group returns a registrar whose benchmarks are nested under name.
func (r *Runner) Group(name string) *Group {
	return &Group{r: r, path: []string{name}}
}

func (r *Runner) benchAt(skip int, groups []string, name string, fn BenchFunc, opts ...BenchOption) {
	e := &entry{
		name:   name,
		groups: groups,
		order:  len(r.entries),
		fn:     fn,
	}

	if _, file, line, ok := runtime.Caller(skip); ok {
		e.file = file
		e.line = line
	}

	for _, opt := range opts {
		opt(e)
	}

	r.entries = append(r.entries, e)
}

// Group registers benchmarks under a shared path prefix. Groups nest.
type Group struct {
	r    *Runner
	path []string
}

// Bench registers a benchmark inside the group.
func (g *Group) Bench(name string, fn BenchFunc, opts ...BenchOption) {
	g.r.benchAt(2, g.path, name, fn, opts...)
}

// Group returns a registrar nested one level deeper.
func (g *Group) Group(name string) *Group {
	return &Group{r: g.r, path: append(append([]string{}, g.path...), name)}
}

// Main parses the command line and runs the selected action. It exits the
// process on configuration errors.
func (r *Runner) Main() {
	err := cli.Execute(os.Args[1:], func(opts *cli.Options) error {
		return r.run(opts, os.Stdout, opts.Color.Enabled(os.Stdout))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Default runner, for binaries with a single registration site.
var defaultRunner = New()

// Bench registers a benchmark on the default runner.
func Bench(name string, fn BenchFunc, opts ...BenchOption) {
	defaultRunner.benchAt(2, nil, name, fn, opts...)
}

// DefaultRunner returns the default runner, e.g. to register groups on it.
func DefaultRunner() *Runner {
	return defaultRunner
}

// Main runs the default runner.
func Main() {
	defaultRunner.Main()
}
