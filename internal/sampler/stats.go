package sampler

import (
	"sort"
	"time"

	"github.com/ethpandaops/benchoor/counter"
)

// Stats summarizes the per-iteration times of a sampling run.
type Stats struct {
	Fastest time.Duration
	Slowest time.Duration
	Median  time.Duration
	Mean    time.Duration

	Iters   uint64
	Samples int
}

// Stats computes per-iteration timing statistics over the recorded samples.
func (r *Result) Stats() Stats {
	if len(r.Samples) == 0 || r.Iters == 0 {
		return Stats{}
	}

	perIter := make([]time.Duration, 0, len(r.Samples))

	for _, s := range r.Samples {
		if s.Iters == 0 {
			continue
		}

		perIter = append(perIter, s.Elapsed/time.Duration(s.Iters))
	}

	if len(perIter) == 0 {
		return Stats{}
	}

	sort.Slice(perIter, func(i, j int) bool { return perIter[i] < perIter[j] })

	n := len(perIter)

	median := perIter[n/2]
	if n%2 == 0 {
		median = (perIter[n/2-1] + perIter[n/2]) / 2
	}

	return Stats{
		Fastest: perIter[0],
		Slowest: perIter[n-1],
		Median:  median,
		Mean:    r.Elapsed / time.Duration(r.Iters),
		Iters:   r.Iters,
		Samples: n,
	}
}

// CountPerIter returns the mean per-iteration count for kind, if the kind
// was registered during the run.
func (r *Result) CountPerIter(kind counter.KnownCounterKind) (float64, bool) {
	if r.Iters == 0 || !r.Set.Contains(kind) {
		return 0, false
	}

	return float64(r.Totals[kind]) / float64(r.Iters), true
}
