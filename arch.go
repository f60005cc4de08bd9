package synclock

import "sync/atomic"

// This file stands in for the spec's arch layer (§2.1): thin wrappers over
// atomic load/store/RMW with explicit orderings, plus the three optional
// microarchitectural hints PAUSE, WAIT_FOR_EVENT and SEND_EVENT.
//
// Go's memory model only exposes sequentially-consistent atomics (the
// sync/atomic package); there is no portable relaxed/acquire/release
// ordering distinction to wrap, so every lock in this package uses
// sync/atomic directly and relies on the fact that Go's sequentially
// consistent atomics are always at least as strong as the acquire/release
// pairing spec.md §5 requires. WAIT_FOR_EVENT and SEND_EVENT have no
// portable Go equivalent (there is no instruction that suspends a
// goroutine until a monitored address changes); per spec.md §9
// ("An implementation without them must still implement the same
// contracts using a yield or backoff loop") every wait in this package is
// the delay() backoff loop in backoff.go, and sendEvent is a no-op: the
// release side's atomic store is already the synchronizes-with edge a
// waiter needs, independent of whether anyone is asked to wake up.

// fullFence is the explicit full-fence primitive: a round-trip through an
// atomic location forces the runtime's memory model to order everything
// before it ahead of everything after it. It is used by the reader-writer
// lock's release_rd path, which per spec.md §4.2 performs only loads and
// needs a load-store fence before the reader-count decrement is visible.
var fenceWord atomic.Uint32

func fullFence() {
	fenceWord.Add(1)
}

// sendEvent is the SEND_EVENT hint: wake any goroutine parked in
// waitForEvent. It is a documented no-op — see the comment at the top of
// this file.
func sendEvent() {}

// waitForEvent is the WAIT_FOR_EVENT hint: spin until cond reports true,
// backing off via delay() instead of suspending on a monitored address.
func waitForEvent(cond func() bool) {
	var spins int
	for !cond() {
		delay(&spins)
	}
}
