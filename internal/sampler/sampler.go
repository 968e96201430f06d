// Package sampler drives benchmark iterations in timed samples and
// accumulates per-kind counter totals across the run.
package sampler

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/benchoor/counter"
	"github.com/ethpandaops/benchoor/internal/timer"
)

// DefaultSampleCount is the number of samples collected when the
// configuration does not pin one.
const DefaultSampleCount = 100

// maxAutoSampleSize bounds the auto-tuning ramp.
const maxAutoSampleSize = 1 << 20

// Config controls how a single benchmark is sampled.
type Config struct {
	// SampleCount is the number of samples to collect. 0 means
	// DefaultSampleCount.
	SampleCount uint32

	// SampleSize is the number of iterations per sample. 0 auto-tunes
	// against the timer's precision.
	SampleSize uint32

	// MinTime keeps collecting additional rounds of samples until this much
	// time was spent on the benchmark.
	MinTime time.Duration

	// MaxTime stops sampling once this much time was spent, with priority
	// over MinTime and SampleCount.
	MaxTime time.Duration

	// SkipExtTime counts only time inside the benchmarked function toward
	// MinTime/MaxTime, excluding input generation and other overhead.
	SkipExtTime bool
}

// Sample is one timed batch of iterations.
type Sample struct {
	Iters   uint32
	Elapsed time.Duration
}

// Totals holds the lifetime per-kind counter totals of a run. Unlike the
// per-iteration registration (which replaces), totals only ever grow.
type Totals [counter.NumKnownKinds]counter.MaxCountUint

// Add accumulates other into t, saturating on overflow.
func (t *Totals) Add(other Totals) {
	for i := range t {
		t[i] = counter.SaturatingAdd(t[i], other[i])
	}
}

// AddCollection accumulates the collection's current per-iteration values
// over iters iterations.
func (t *Totals) AddCollection(c *counter.CounterCollection, iters uint64) {
	for _, k := range c.Set().Kinds() {
		a, ok := c.Get(k)
		if !ok {
			continue
		}

		t[k] = counter.SaturatingAdd(t[k], counter.SaturatingMul(a.Count(), iters))
	}
}

// Report is what one sample execution hands back to the sampler.
type Report struct {
	// Measured is the time spent inside the benchmarked function.
	Measured time.Duration

	// Ext is the time spent around it (input generation, bookkeeping).
	Ext time.Duration

	// Counts are the counter amounts accumulated during this sample.
	Counts Totals

	// Set is the kinds that were registered while sampling.
	Set counter.CounterSet
}

// SampleFunc executes iters iterations and reports timings and counts.
type SampleFunc func(iters uint32) Report

// Result is the outcome of sampling one benchmark.
type Result struct {
	Samples    []Sample
	Iters      uint64
	Elapsed    time.Duration
	ExtElapsed time.Duration
	Totals     Totals
	Set        counter.CounterSet
}

// Sampler runs sampling sessions with one timer and configuration.
type Sampler struct {
	log logrus.FieldLogger
	tm  *timer.Timer
	cfg Config
}

// New creates a sampler.
func New(log logrus.FieldLogger, tm *timer.Timer, cfg Config) *Sampler {
	return &Sampler{
		log: log.WithField("component", "sampler"),
		tm:  tm,
		cfg: cfg,
	}
}

// Timer returns the timer samples are measured with.
func (s *Sampler) Timer() *timer.Timer {
	return s.tm
}

// Run drives a full sampling session: warm-up and size tuning first, then
// rounds of recorded samples until the sample count and time bounds are
// satisfied.
func (s *Sampler) Run(sample SampleFunc) Result {
	size := s.cfg.SampleSize
	if size == 0 {
		size = s.tuneSampleSize(sample)
	}

	count := s.cfg.SampleCount
	if count == 0 {
		count = DefaultSampleCount
	}

	var res Result

	budget := func() time.Duration {
		if s.cfg.SkipExtTime {
			return res.Elapsed
		}

		return res.Elapsed + res.ExtElapsed
	}

	record := func() bool {
		if s.cfg.MaxTime > 0 && budget() >= s.cfg.MaxTime {
			return false
		}

		r := sample(size)

		res.Samples = append(res.Samples, Sample{Iters: size, Elapsed: r.Measured})
		res.Iters += uint64(size)
		res.Elapsed += r.Measured
		res.ExtElapsed += r.Ext
		res.Totals.Add(r.Counts)
		res.Set |= r.Set

		return true
	}

	for {
		for i := uint32(0); i < count; i++ {
			if !record() {
				return res
			}
		}

		// MaxTime has priority: a satisfied MinTime never extends past it.
		if s.cfg.MinTime == 0 || budget() >= s.cfg.MinTime {
			return res
		}

		if s.cfg.MaxTime > 0 && budget() >= s.cfg.MaxTime {
			return res
		}
	}
}

// tuneSampleSize ramps the per-sample iteration count geometrically until a
// sample takes long enough to be measurable well above timer precision.
// Tuning samples are warm-up: they are not recorded.
func (s *Sampler) tuneSampleSize(sample SampleFunc) uint32 {
	target := s.tm.Precision() * 100
	if target < time.Microsecond {
		target = time.Microsecond
	}

	size := uint32(1)
	for {
		r := sample(size)
		if r.Measured >= target || size >= maxAutoSampleSize {
			s.log.WithFields(logrus.Fields{
				"sample_size": size,
				"elapsed":     r.Measured,
			}).Debug("Sample size tuned")

			return size
		}

		size *= 2
	}
}
