package benchoor

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/benchoor/counter"
	"github.com/ethpandaops/benchoor/internal/cli"
	"github.com/ethpandaops/benchoor/internal/report"
	"github.com/ethpandaops/benchoor/internal/sampler"
	"github.com/ethpandaops/benchoor/internal/timer"
)

func noop(b *Bencher) {
	b.Bench(func() {})
}

func quickOptions() *cli.Options {
	opts := cli.DefaultOptions()
	opts.Sampling = sampler.Config{SampleCount: 2, SampleSize: 1}
	opts.Format = report.FormatTerse

	return opts
}

func TestRegistration_Paths(t *testing.T) {
	r := New()
	r.Bench("top", noop)

	g := r.Group("outer")
	g.Bench("a", noop)
	g.Group("inner").Bench("b", noop)

	require.Len(t, r.entries, 3)
	assert.Equal(t, "top", r.entries[0].path())
	assert.Equal(t, "outer::a", r.entries[1].path())
	assert.Equal(t, "outer::inner::b", r.entries[2].path())
}

func TestRegistration_CapturesLocation(t *testing.T) {
	r := New()
	r.Bench("here", noop)

	e := r.entries[0]
	assert.Contains(t, e.file, "benchoor_test.go")
	assert.Greater(t, e.line, 0)
}

func TestSelectEntries_Filter(t *testing.T) {
	r := New()
	r.Bench("alpha", noop)
	r.Group("parse").Bench("json", noop)
	r.Group("parse").Bench("yaml", noop)

	opts := quickOptions()
	opts.Filter = "parse"

	selected := r.selectEntries(opts)
	require.Len(t, selected, 2)

	opts.Filter = "parse::json"
	opts.Exact = true

	selected = r.selectEntries(opts)
	require.Len(t, selected, 1)
	assert.Equal(t, "parse::json", selected[0].path())

	// Exact requires the whole path.
	opts.Filter = "json"

	selected = r.selectEntries(opts)
	assert.Empty(t, selected)
}

func TestSelectEntries_Skip(t *testing.T) {
	r := New()
	r.Bench("fast", noop)
	r.Bench("slow_io", noop)
	r.Bench("slow_cpu", noop)

	opts := quickOptions()
	opts.Skip = []string{"slow"}

	selected := r.selectEntries(opts)
	require.Len(t, selected, 1)
	assert.Equal(t, "fast", selected[0].path())
}

func TestSelectEntries_Ignored(t *testing.T) {
	r := New()
	r.Bench("normal", noop)
	r.Bench("flaky", noop, Ignore())

	opts := quickOptions()

	selected := r.selectEntries(opts)
	require.Len(t, selected, 1)
	assert.Equal(t, "normal", selected[0].path())

	opts.Ignored = true

	selected = r.selectEntries(opts)
	require.Len(t, selected, 1)
	assert.Equal(t, "flaky", selected[0].path())

	opts.Ignored = false
	opts.IncludeIgnored = true

	selected = r.selectEntries(opts)
	assert.Len(t, selected, 2)
}

func TestSort_Name(t *testing.T) {
	r := New()
	r.Bench("zeta", noop)
	r.Bench("alpha", noop)
	r.Bench("mid", noop)

	root := buildTree(r.selectEntries(quickOptions()))
	root.sortChildren(cli.SortName, false)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, benchPaths(root))

	root.sortChildren(cli.SortName, true)
	assert.Equal(t, []string{"zeta", "mid", "alpha"}, benchPaths(root))
}

func TestSort_KindPutsBenchesBeforeGroups(t *testing.T) {
	r := New()
	r.Group("grp").Bench("inner", noop)
	r.Bench("plain", noop)

	root := buildTree(r.selectEntries(quickOptions()))
	root.sortChildren(cli.SortKind, false)

	assert.Equal(t, []string{"plain", "grp::inner"}, benchPaths(root))
}

func TestSort_Location(t *testing.T) {
	r := New()
	r.Bench("second", noop) // registered first, earlier line
	r.Bench("first", noop)

	root := buildTree(r.selectEntries(quickOptions()))
	root.sortChildren(cli.SortLocation, true)

	// Descending location puts the later registration first.
	assert.Equal(t, []string{"first", "second"}, benchPaths(root))
}

func benchPaths(root *node) []string {
	entries := root.benchOrder()

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.path())
	}

	return paths
}

func TestRun_EndToEnd(t *testing.T) {
	r := New()

	r.Group("text").Bench("count", func(b *Bencher) {
		b.Counter(counter.Bytes(uint(1000)))
		b.Counter(counter.Items(uint(1)))
		b.Bench(func() {
			_ = strings.Repeat("x", 10)
		})
	})

	var sb strings.Builder

	require.NoError(t, r.run(quickOptions(), &sb, false))

	out := sb.String()
	assert.Contains(t, out, "text::count")
	assert.Contains(t, out, "bytes=")
	assert.Contains(t, out, "items=")
	assert.Contains(t, out, "mean=")
}

func TestRun_List(t *testing.T) {
	r := New()
	r.Bench("a", noop)
	r.Group("g").Bench("b", noop)

	opts := quickOptions()
	opts.List = true

	var sb strings.Builder

	require.NoError(t, r.run(opts, &sb, false))
	assert.Equal(t, "a\ng::b\n", sb.String())
}

func TestRun_TestMode(t *testing.T) {
	ran := 0

	r := New()
	r.Bench("once", func(b *Bencher) {
		b.Bench(func() { ran++ })
	})

	opts := quickOptions()
	opts.Test = true

	var sb strings.Builder

	require.NoError(t, r.run(opts, &sb, false))
	assert.Equal(t, 1, ran)
	assert.Contains(t, sb.String(), "test once ... ok")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	r := New()

	opts := quickOptions()
	opts.LogLevel = "chatty"

	var sb strings.Builder

	err := r.run(opts, &sb, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing log level")
}

func TestWithCounterOption(t *testing.T) {
	r := New()
	r.Bench("sized", func(b *Bencher) {
		b.Bench(func() {})
	}, WithCounter(counter.Bytes(uint(4096))))

	var sb strings.Builder

	require.NoError(t, r.run(quickOptions(), &sb, false))
	assert.Contains(t, sb.String(), "bytes=")
}

func testBencher() *Bencher {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	tm := timer.New(log, timer.KindOS)

	return &Bencher{
		log: log,
		s:   sampler.New(log, tm, sampler.Config{SampleCount: 2, SampleSize: 1}),
		tm:  tm,
	}
}

func TestBencher_DoubleBenchPanics(t *testing.T) {
	b := testBencher()
	b.Bench(func() {})

	assert.Panics(t, func() {
		b.Bench(func() {})
	})
}

func TestBencher_CounterReplacement(t *testing.T) {
	b := testBencher()
	b.Counter(counter.Items(uint(1)))
	b.Counter(counter.Items(uint(7)))
	b.Bench(func() {})

	// 2 samples of 1 iteration, each counting the latest registration.
	assert.Equal(t, counter.MaxCountUint(14), b.result.Totals[counter.KindItems])
}

func TestWithInputs_PerInputCounter(t *testing.T) {
	b := testBencher()

	inputs := []string{"hé", "héllo"}
	i := 0

	ib := WithInputs(b, func() string {
		s := inputs[i%len(inputs)]
		i++

		return s
	})

	var seen []string

	ib.InputCounter(func(s string) counter.Counter {
		return counter.CharsOfString(s)
	}).Bench(func(s string) {
		seen = append(seen, s)
	})

	require.Equal(t, []string{"hé", "héllo"}, seen)

	// 2 code points for the first input plus 5 for the second.
	assert.Equal(t, counter.MaxCountUint(7), b.result.Totals[counter.KindChars])
	assert.True(t, b.result.Set.Contains(counter.KindChars))
	assert.GreaterOrEqual(t, b.result.ExtElapsed, time.Duration(0))
}
