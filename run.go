package benchoor

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/benchoor/internal/cli"
	"github.com/ethpandaops/benchoor/internal/report"
	"github.com/ethpandaops/benchoor/internal/sampler"
	"github.com/ethpandaops/benchoor/internal/timer"
)

// reportTitle heads the first column of pretty output.
const reportTitle = "benchoor"

// run executes the resolved action: list, test or a full benchmark run.
func (r *Runner) run(opts *cli.Options, w io.Writer, color bool) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", opts.LogLevel, err)
	}

	log.SetLevel(level)

	selected := r.selectEntries(opts)
	root := buildTree(selected)
	root.sortChildren(opts.Sort, opts.SortDescending)

	reporter := report.New(w, opts.Format, color, opts.BytesFormat)

	if opts.List {
		reporter.List(root.rows(nil))

		return nil
	}

	tm := timer.New(log, opts.Timer)

	cfg := opts.Sampling
	if opts.Test {
		// One iteration per benchmark, just to prove it runs.
		cfg = sampler.Config{SampleCount: 1, SampleSize: 1}
	}

	s := sampler.New(log, tm, cfg)

	results := make(map[*entry]*sampler.Result, len(selected))

	for _, e := range root.benchOrder() {
		log.WithField("bench", e.path()).Debug("Running benchmark")

		results[e] = r.runEntry(log, s, tm, e)

		if opts.Test {
			fmt.Fprintf(w, "test %s ... ok\n", e.path())
		}
	}

	if opts.Test {
		return nil
	}

	reporter.Report(reportTitle, root.rows(results))

	return nil
}

// runEntry executes one benchmark body against a fresh Bencher.
func (r *Runner) runEntry(log logrus.FieldLogger, s *sampler.Sampler, tm *timer.Timer, e *entry) *sampler.Result {
	b := &Bencher{
		log: log.WithField("bench", e.path()),
		s:   s,
		tm:  tm,
	}

	for _, c := range e.counters {
		b.coll.InsertCounter(c)
	}

	e.fn(b)

	if b.result == nil {
		b.log.Warn("Benchmark body never called Bench")

		return &sampler.Result{}
	}

	return b.result
}

// selectEntries applies the filter, skip patterns and ignored selection.
func (r *Runner) selectEntries(opts *cli.Options) []*entry {
	selected := make([]*entry, 0, len(r.entries))

	for _, e := range r.entries {
		path := e.path()

		if !matches(opts.Filter, path, opts.Exact) {
			continue
		}

		if skipped(opts.Skip, path, opts.Exact) {
			continue
		}

		switch {
		case opts.Ignored:
			if !e.ignored {
				continue
			}
		case opts.IncludeIgnored:
			// Everything runs.
		default:
			if e.ignored {
				continue
			}
		}

		selected = append(selected, e)
	}

	return selected
}

// matches applies a filter pattern: substring by default, whole path with
// exact matching.
func matches(pattern, path string, exact bool) bool {
	if pattern == "" {
		return true
	}

	if exact {
		return path == pattern
	}

	return strings.Contains(path, pattern)
}

func skipped(patterns []string, path string, exact bool) bool {
	for _, p := range patterns {
		if p != "" && matches(p, path, exact) {
			return true
		}
	}

	return false
}

// node is the group tree built from selected entries for sorting and
// rendering.
type node struct {
	name     string
	path     string
	entry    *entry
	children []*node

	// Sorting attributes; groups inherit them from their first registered
	// descendant.
	order int
	file  string
	line  int
}

func buildTree(entries []*entry) *node {
	root := &node{}

	for _, e := range entries {
		cur := root

		for i, g := range e.groups {
			path := strings.Join(e.groups[:i+1], pathSeparator)

			child := cur.child(g)
			if child == nil {
				child = &node{
					name:  g,
					path:  path,
					order: e.order,
					file:  e.file,
					line:  e.line,
				}
				cur.children = append(cur.children, child)
			}

			cur = child
		}

		cur.children = append(cur.children, &node{
			name:  e.name,
			path:  e.path(),
			entry: e,
			order: e.order,
			file:  e.file,
			line:  e.line,
		})
	}

	return root
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.entry == nil && c.name == name {
			return c
		}
	}

	return nil
}

// sortChildren orders siblings recursively. Kind puts benchmarks before
// nested groups and keeps registration order within each; name is
// alphabetical; location follows source file and line.
func (n *node) sortChildren(attr cli.SortAttr, descending bool) {
	less := func(a, b *node) bool {
		switch attr {
		case cli.SortName:
			return a.name < b.name
		case cli.SortLocation:
			if a.file != b.file {
				return a.file < b.file
			}

			return a.line < b.line
		default:
			aGroup := a.entry == nil
			bGroup := b.entry == nil

			if aGroup != bGroup {
				return !aGroup
			}

			return a.order < b.order
		}
	}

	sort.SliceStable(n.children, func(i, j int) bool {
		if descending {
			return less(n.children[j], n.children[i])
		}

		return less(n.children[i], n.children[j])
	})

	for _, c := range n.children {
		c.sortChildren(attr, descending)
	}
}

// benchOrder returns the benchmarks in rendered order.
func (n *node) benchOrder() []*entry {
	var out []*entry

	var walk func(*node)
	walk = func(nd *node) {
		if nd.entry != nil {
			out = append(out, nd.entry)

			return
		}

		for _, c := range nd.children {
			walk(c)
		}
	}

	walk(n)

	return out
}

// rows flattens the tree into report rows; results may be nil in list mode.
func (n *node) rows(results map[*entry]*sampler.Result) []report.Row {
	var out []report.Row

	var walk func(*node, int)
	walk = func(nd *node, depth int) {
		for _, c := range nd.children {
			row := report.Row{
				Path:  c.path,
				Name:  c.name,
				Depth: depth,
			}

			if c.entry == nil {
				row.IsGroup = true
			} else if results != nil {
				row.Result = results[c.entry]
			}

			out = append(out, row)

			walk(c, depth+1)
		}
	}

	walk(n, 0)

	return out
}
