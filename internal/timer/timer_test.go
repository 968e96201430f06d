package timer

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return log
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("os")
	require.NoError(t, err)
	assert.Equal(t, KindOS, k)

	k, err = ParseKind("tsc")
	require.NoError(t, err)
	assert.Equal(t, KindTSC, k)

	_, err = ParseKind("sundial")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timer")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "os", KindOS.String())
	assert.Equal(t, "tsc", KindTSC.String())
}

func TestOSTimer_Monotonic(t *testing.T) {
	tm := New(testLogger(), KindOS)
	require.Equal(t, KindOS, tm.Kind())

	start := tm.Now()
	time.Sleep(time.Millisecond)
	elapsed := tm.Since(start)

	assert.Greater(t, elapsed, time.Duration(0))
	assert.Less(t, elapsed, time.Second)
}

func TestTSCTimer_MeasuresOrFallsBack(t *testing.T) {
	tm := New(testLogger(), KindTSC)

	// Either the real TSC or the OS fallback; both must measure time.
	start := tm.Now()
	time.Sleep(time.Millisecond)
	elapsed := tm.Since(start)

	assert.Greater(t, elapsed, 500*time.Microsecond)
	assert.Less(t, elapsed, time.Second)
}

func TestPrecision(t *testing.T) {
	tm := New(testLogger(), KindOS)

	p := tm.Precision()
	assert.Greater(t, p, time.Duration(0))
	assert.Less(t, p, 100*time.Millisecond)

	// Cached on repeat calls.
	assert.Equal(t, p, tm.Precision())
}

func TestBetween(t *testing.T) {
	tm := New(testLogger(), KindOS)

	a := tm.Now()
	time.Sleep(time.Millisecond)
	b := tm.Now()

	assert.Greater(t, tm.Between(a, b), time.Duration(0))
}
