// Package timer provides the monotonic timestamps used to measure samples,
// either through the OS clock or the CPU timestamp counter.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Kind selects the measurement clock.
type Kind uint8

const (
	// KindOS uses the operating system's monotonic clock.
	KindOS Kind = iota

	// KindTSC uses the CPU timestamp counter, calibrated against the OS
	// clock. Falls back to KindOS where no cycle counter is available.
	KindTSC
)

func (k Kind) String() string {
	switch k {
	case KindTSC:
		return "tsc"
	default:
		return "os"
	}
}

// ParseKind parses a timer name from the CLI or environment.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "os":
		return KindOS, nil
	case "tsc":
		return KindTSC, nil
	default:
		return KindOS, fmt.Errorf("invalid timer %q (expected os or tsc)", s)
	}
}

// Stamp is an opaque instant captured by a Timer. Stamps from different
// timers are not comparable.
type Stamp struct {
	t   time.Time
	tsc uint64
}

// Timer captures instants and turns stamp pairs into durations.
type Timer struct {
	log          logrus.FieldLogger
	kind         Kind
	cyclesPerSec float64

	precOnce sync.Once
	prec     time.Duration
}

// calibration window for the TSC frequency measurement.
const calibrationWindow = 2 * time.Millisecond

// New creates a timer of the requested kind. If the TSC is unavailable on
// this platform the timer falls back to the OS clock with a warning.
func New(log logrus.FieldLogger, kind Kind) *Timer {
	log = log.WithField("component", "timer")

	if kind == KindTSC {
		freq, ok := calibrateTSC()
		if ok {
			log.WithField("cycles_per_sec", freq).Debug("TSC calibrated")

			return &Timer{log: log, kind: KindTSC, cyclesPerSec: freq}
		}

		log.Warn("TSC unavailable on this platform, falling back to OS timer")
	}

	return &Timer{log: log, kind: KindOS}
}

// Kind returns the clock actually in use after any fallback.
func (t *Timer) Kind() Kind {
	return t.kind
}

// Now captures the current instant.
func (t *Timer) Now() Stamp {
	if t.kind == KindTSC {
		return Stamp{tsc: readTSC()}
	}

	return Stamp{t: time.Now()}
}

// Since returns the elapsed time between start and now.
func (t *Timer) Since(start Stamp) time.Duration {
	return t.Between(start, t.Now())
}

// Between returns the elapsed time between two stamps from this timer.
func (t *Timer) Between(start, end Stamp) time.Duration {
	if t.kind == KindTSC {
		cycles := end.tsc - start.tsc

		return time.Duration(float64(cycles) / t.cyclesPerSec * float64(time.Second))
	}

	return end.t.Sub(start.t)
}

// Precision returns the smallest non-zero duration this timer can observe,
// measured once and cached. The sampling engine sizes samples so that each
// one is comfortably above this.
func (t *Timer) Precision() time.Duration {
	t.precOnce.Do(func() {
		t.prec = t.measurePrecision()
	})

	return t.prec
}

const precisionTrials = 100

func (t *Timer) measurePrecision() time.Duration {
	min := time.Duration(0)

	for i := 0; i < precisionTrials; i++ {
		start := t.Now()

		var d time.Duration
		for d <= 0 {
			d = t.Since(start)
		}

		if min == 0 || d < min {
			min = d
		}
	}

	if min <= 0 {
		min = time.Nanosecond
	}

	return min
}

// calibrateTSC measures the TSC frequency against the OS clock. Returns
// false when the platform has no readable cycle counter.
func calibrateTSC() (float64, bool) {
	if !tscAvailable() {
		return 0, false
	}

	startCycles := readTSC()
	startTime := time.Now()

	for time.Since(startTime) < calibrationWindow {
	}

	elapsed := time.Since(startTime)
	cycles := readTSC() - startCycles

	if cycles == 0 || elapsed <= 0 {
		return 0, false
	}

	return float64(cycles) / elapsed.Seconds(), true
}
