package synclock

import (
	"time"
	_ "unsafe" // for go:linkname
)

// noCopy may be embedded in structs that must not be copied after first
// use. go vet's -copylocks check flags any accidental copy.
//
// See https://golang.org/issues/8005#issuecomment-190753527
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// delay implements the spec's optional PAUSE hint (§1, §9): a short spin
// that keeps a core busy without yielding it while the runtime allows
// spinning, then a short sleep (which resets spins) under sustained
// contention. spins is
// owned by the caller and must be reset to zero after every successful
// acquire.
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
