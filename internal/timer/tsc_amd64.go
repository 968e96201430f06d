//go:build amd64

package timer

// readTSC reads the CPU timestamp counter. Implemented in tsc_amd64.s.
func readTSC() uint64

func tscAvailable() bool {
	return true
}
