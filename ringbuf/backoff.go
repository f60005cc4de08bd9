package ringbuf

import (
	"time"
	_ "unsafe" // for go:linkname
)

// delay is the same adaptive spin/sleep backoff as the root package's
// backoff.go (itself lifted from the teacher's map_util.go), duplicated
// here because ringbuf is an independent package with no dependency on
// synclock's unexported helpers.
//
//go:nosplit
func delay(spins *int) {
	if runtime_canSpin(*spins) {
		*spins++
		runtime_doSpin()
		return
	}
	*spins = 0
	time.Sleep(50 * time.Microsecond)
}

//go:linkname runtime_canSpin sync.runtime_canSpin
func runtime_canSpin(i int) bool

//go:linkname runtime_doSpin sync.runtime_doSpin
func runtime_doSpin()
