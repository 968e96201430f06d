package sampler

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/benchoor/counter"
	"github.com/ethpandaops/benchoor/internal/timer"
)

func testSampler(cfg Config) *Sampler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return New(log, timer.New(log, timer.KindOS), cfg)
}

// fixedSample returns a SampleFunc with constant per-sample timings.
func fixedSample(measured, ext time.Duration) SampleFunc {
	return func(iters uint32) Report {
		return Report{Measured: measured, Ext: ext}
	}
}

func TestRun_PinnedSizeAndCount(t *testing.T) {
	s := testSampler(Config{SampleSize: 10, SampleCount: 5})

	res := s.Run(fixedSample(time.Millisecond, 0))

	assert.Len(t, res.Samples, 5)
	assert.Equal(t, uint64(50), res.Iters)
	assert.Equal(t, 5*time.Millisecond, res.Elapsed)

	for _, sm := range res.Samples {
		assert.Equal(t, uint32(10), sm.Iters)
		assert.Equal(t, time.Millisecond, sm.Elapsed)
	}
}

func TestRun_MinTimeExtendsSampling(t *testing.T) {
	s := testSampler(Config{
		SampleSize:  1,
		SampleCount: 5,
		MinTime:     12 * time.Millisecond,
	})

	res := s.Run(fixedSample(time.Millisecond, 0))

	// Whole rounds of 5 samples until at least 12ms was spent.
	assert.Len(t, res.Samples, 15)
	assert.Equal(t, 15*time.Millisecond, res.Elapsed)
}

func TestRun_MaxTimeStopsEarly(t *testing.T) {
	s := testSampler(Config{
		SampleSize:  1,
		SampleCount: 5,
		MaxTime:     3 * time.Millisecond,
	})

	res := s.Run(fixedSample(time.Millisecond, 0))

	assert.Len(t, res.Samples, 3)
}

func TestRun_MaxTimeBeatsMinTime(t *testing.T) {
	s := testSampler(Config{
		SampleSize:  1,
		SampleCount: 2,
		MinTime:     time.Hour,
		MaxTime:     4 * time.Millisecond,
	})

	res := s.Run(fixedSample(time.Millisecond, 0))

	assert.Len(t, res.Samples, 4)
}

func TestRun_SkipExtTime(t *testing.T) {
	// 1ms in-body plus 1ms external per sample; a 4ms budget covers two
	// samples when external time counts, four when it is skipped.
	cfg := Config{SampleSize: 1, SampleCount: 100, MaxTime: 4 * time.Millisecond}

	res := testSampler(cfg).Run(fixedSample(time.Millisecond, time.Millisecond))
	assert.Len(t, res.Samples, 2)

	cfg.SkipExtTime = true

	res = testSampler(cfg).Run(fixedSample(time.Millisecond, time.Millisecond))
	assert.Len(t, res.Samples, 4)
}

func TestRun_AccumulatesTotals(t *testing.T) {
	s := testSampler(Config{SampleSize: 2, SampleCount: 3})

	var set counter.CounterSet

	var coll counter.CounterCollection
	coll.InsertCounter(counter.Bytes(uint(64)))
	set = coll.Set()

	res := s.Run(func(iters uint32) Report {
		var r Report
		r.Measured = time.Millisecond
		r.Counts.AddCollection(&coll, uint64(iters))
		r.Set = set

		return r
	})

	assert.Equal(t, counter.MaxCountUint(64*2*3), res.Totals[counter.KindBytes])
	assert.True(t, res.Set.Contains(counter.KindBytes))
	assert.False(t, res.Set.Contains(counter.KindItems))
}

func TestRun_AutoTunesSampleSize(t *testing.T) {
	s := testSampler(Config{SampleCount: 3})

	res := s.Run(func(iters uint32) Report {
		return Report{Measured: time.Duration(iters) * time.Microsecond}
	})

	require.Len(t, res.Samples, 3)

	// All recorded samples share the tuned size.
	size := res.Samples[0].Iters
	assert.GreaterOrEqual(t, size, uint32(1))

	for _, sm := range res.Samples {
		assert.Equal(t, size, sm.Iters)
	}
}

func TestTotals_AddCollection(t *testing.T) {
	var coll counter.CounterCollection
	coll.InsertCounter(counter.Items(uint(5)))
	coll.InsertCounter(counter.Chars(uint(3)))

	var tot Totals
	tot.AddCollection(&coll, 10)
	tot.AddCollection(&coll, 10)

	assert.Equal(t, counter.MaxCountUint(100), tot[counter.KindItems])
	assert.Equal(t, counter.MaxCountUint(60), tot[counter.KindChars])
	assert.Equal(t, counter.MaxCountUint(0), tot[counter.KindBytes])
}

func TestTotals_Saturate(t *testing.T) {
	max := ^counter.MaxCountUint(0)

	var coll counter.CounterCollection
	coll.InsertCounter(counter.Bytes(max))

	var tot Totals
	tot.AddCollection(&coll, 2)

	assert.Equal(t, max, tot[counter.KindBytes])
}

func TestStats(t *testing.T) {
	res := Result{
		Samples: []Sample{
			{Iters: 1, Elapsed: 4 * time.Millisecond},
			{Iters: 1, Elapsed: 2 * time.Millisecond},
			{Iters: 1, Elapsed: 8 * time.Millisecond},
			{Iters: 1, Elapsed: 6 * time.Millisecond},
		},
		Iters:   4,
		Elapsed: 20 * time.Millisecond,
	}

	st := res.Stats()

	assert.Equal(t, 2*time.Millisecond, st.Fastest)
	assert.Equal(t, 8*time.Millisecond, st.Slowest)
	assert.Equal(t, 5*time.Millisecond, st.Median)
	assert.Equal(t, 5*time.Millisecond, st.Mean)
	assert.Equal(t, 4, st.Samples)
}

func TestStats_Empty(t *testing.T) {
	var res Result

	assert.Equal(t, Stats{}, res.Stats())
}

func TestCountPerIter(t *testing.T) {
	var coll counter.CounterCollection
	coll.InsertCounter(counter.Bytes(uint(10)))

	res := Result{Iters: 4, Set: coll.Set()}
	res.Totals[counter.KindBytes] = 40

	per, ok := res.CountPerIter(counter.KindBytes)
	require.True(t, ok)
	assert.Equal(t, 10.0, per)

	_, ok = res.CountPerIter(counter.KindItems)
	assert.False(t, ok)
}
