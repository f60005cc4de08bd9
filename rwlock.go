package synclock

import (
	"fmt"
	"sync/atomic"
)

// writerBit marks a writer present (spec.md §3: "Top bit = writer-present
// flag; low 31 bits = reader count").
const writerBit uint32 = 1 << 31

// RWLock is the simple reader-writer lock of spec.md §4.2: one 32-bit
// word, no fairness guarantee, writers may starve under sustained reader
// pressure (accepted per spec.md §4.2). Adapted from the teacher's
// RWLock/RWLock32 (rw_lock.go), generalized to the spec's exact bit
// layout and usage-error semantics, and grounded algorithmically on
// original_source/src/p64_rwlock.c.
type RWLock struct {
	_     noCopy
	state atomic.Uint32
}

// RLock acquires a read lock, waiting for any present writer to leave.
func (rw *RWLock) RLock() {
	var spins int
	for {
		l := rw.state.Load()
		for l&writerBit != 0 {
			delay(&spins)
			l = rw.state.Load()
		}
		if rw.state.CompareAndSwap(l, l+1) {
			return
		}
		delay(&spins)
	}
}

// RUnlock releases a read lock. Releasing without a matching RLock (the
// writer bit set, or a zero reader count) is a usage error and panics,
// matching p64_rwlock_release_rd's "Invalid read release of RW lock" abort.
func (rw *RWLock) RUnlock() {
	fullFence() // load-store fence: release_rd performed loads only (spec.md §4.2)
	prev := rw.state.Add(^uint32(0)) + 1 // pre-decrement value, mirrors fetch_sub
	if prev&writerBit != 0 || prev == 0 {
		panic(fmt.Sprintf("synclock: invalid RUnlock of RWLock %p", rw))
	}
}

// Lock acquires the write lock: wait for any writer to leave, claim the
// writer bit, then wait for present readers to drain.
func (rw *RWLock) Lock() {
	var spins int
	for {
		l := rw.state.Load()
		for l&writerBit != 0 {
			delay(&spins)
			l = rw.state.Load()
		}
		if rw.state.CompareAndSwap(l, l|writerBit) {
			break
		}
		delay(&spins)
	}
	for rw.state.Load() != writerBit {
		delay(&spins)
	}
}

// Unlock releases the write lock. The lock must read exactly writerBit
// (no readers, writer bit set) or this is a usage error and panics,
// matching p64_rwlock_release_wr's abort.
func (rw *RWLock) Unlock() {
	if rw.state.Load() != writerBit {
		panic(fmt.Sprintf("synclock: invalid Unlock of RWLock %p", rw))
	}
	rw.state.Store(0)
	sendEvent()
}
