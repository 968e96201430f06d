package benchoor

import (
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/benchoor/counter"
	"github.com/ethpandaops/benchoor/internal/sampler"
	"github.com/ethpandaops/benchoor/internal/timer"
)

// Bencher drives one benchmark: counters are attached to it, then Bench
// runs the measured closure through the sampling engine. Each benchmark
// invocation gets its own Bencher; nothing is shared.
type Bencher struct {
	log logrus.FieldLogger
	s   *sampler.Sampler
	tm  *timer.Timer

	coll   counter.CounterCollection
	result *sampler.Result
}

// Counter registers a counter for this benchmark, accepting an explicit
// counter or any value with a default interpretation. Registering a second
// counter of the same kind replaces the first.
func (b *Bencher) Counter(c counter.IntoCounter) *Bencher {
	b.coll.InsertCounter(c.IntoCounter())

	return b
}

// Bench measures f, running it once per iteration until sampling completes.
// It must be called exactly once per benchmark.
func (b *Bencher) Bench(f func()) {
	if b.result != nil {
		panic("benchoor: Bench called twice in one benchmark")
	}

	res := b.s.Run(func(iters uint32) sampler.Report {
		var rep sampler.Report

		start := b.tm.Now()

		for i := uint32(0); i < iters; i++ {
			f()
		}

		rep.Measured = b.tm.Since(start)
		rep.Counts.AddCollection(&b.coll, uint64(iters))
		rep.Set = b.coll.Set()

		return rep
	})

	b.result = &res
}

// InputBencher runs a benchmark against freshly generated inputs, with an
// optional per-input counter hook.
type InputBencher[T any] struct {
	b    *Bencher
	gen  func() T
	hook func(T) counter.Counter
}

// WithInputs prepares b to benchmark against inputs produced by gen. Each
// iteration gets a fresh input; generation time is reported as external to
// the measured function.
func WithInputs[T any](b *Bencher, gen func() T) *InputBencher[T] {
	return &InputBencher[T]{b: b, gen: gen}
}

// InputCounter derives a counter from each generated input, re-registering
// it before every iteration. The latest registration per kind is the one
// accumulated for that iteration.
func (ib *InputBencher[T]) InputCounter(hook func(T) counter.Counter) *InputBencher[T] {
	ib.hook = hook

	return ib
}

// Bench measures f against a fresh input per iteration. It must be called
// exactly once per benchmark.
func (ib *InputBencher[T]) Bench(f func(T)) {
	b := ib.b

	if b.result != nil {
		panic("benchoor: Bench called twice in one benchmark")
	}

	res := b.s.Run(func(iters uint32) sampler.Report {
		var rep sampler.Report

		for i := uint32(0); i < iters; i++ {
			extStart := b.tm.Now()

			in := ib.gen()
			if ib.hook != nil {
				b.coll.InsertCounter(ib.hook(in))
			}

			rep.Ext += b.tm.Since(extStart)

			start := b.tm.Now()
			f(in)
			rep.Measured += b.tm.Since(start)

			// Totals accumulate the currently registered value every
			// iteration; only the registration itself is replaced.
			rep.Counts.AddCollection(&b.coll, 1)
		}

		rep.Set = b.coll.Set()

		return rep
	})

	b.result = &res
}
