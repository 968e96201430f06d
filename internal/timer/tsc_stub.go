//go:build !amd64

package timer

func readTSC() uint64 {
	return 0
}

func tscAvailable() bool {
	return false
}
