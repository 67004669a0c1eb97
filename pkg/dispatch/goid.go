package dispatch

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID returns the runtime id of the calling goroutine, parsed from the
// stack header ("goroutine 123 [running]:"). The runtime deliberately hides
// goroutine ids, but self-deadlock detection in Stop needs a stable identity
// for the delivery goroutine and this is the only way to get one.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
