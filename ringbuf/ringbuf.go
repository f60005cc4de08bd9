// Package ringbuf implements the bounded, cache-line-aligned ring buffer
// of spec.md §5: fixed capacity, a choice of single- or multi-producer
// enqueue and single- or multi-consumer (blocking, non-blocking, or
// lock-free) dequeue, selected per instance by a set of Flag bits — the
// same shape as original_source/src/p64_ringbuf.c's P64_RINGBUF_F_* flags.
//
// Element storage uses a Go generic parameter (Ring[T any]) in place of
// the original's (void *ring[], size_t esize) pair: grounded on
// other_examples/uniyakcom-beat__spsc.go, whose SPSCRing[T any] is the
// same translation of a fixed-capacity slot array into idiomatic Go.
package ringbuf

import (
	"errors"
	"math/bits"
	"sync/atomic"

	"github.com/dfreeman/synclock/internal/opt"
)

// Flag selects producer and consumer concurrency handling, mirroring
// P64_RINGBUF_F_SPENQ/MPENQ/SCDEQ/MCDEQ/NBENQ/NBDEQ/LFDEQ.
type Flag uint32

const (
	SPEnq Flag = 1 << iota // single producer: Enqueue calls never overlap
	MPEnq                  // multi producer, blocking release (FIFO commit order)
	NBEnq                  // multi producer, non-blocking release (out-of-order commit)
	SCDeq                  // single consumer: Dequeue calls never overlap
	MCDeq                  // multi consumer, blocking release
	NBDeq                  // multi consumer, non-blocking release
	LFDeq                  // multi consumer, lock-free (no release step at all)
)

// pendMax bounds how far a producer/consumer may complete out of order
// before it must fall back to waiting: the width of the pending bitmask
// used by the non-blocking release path. Matches PENDMAX in
// original_source/src/p64_ringbuf.c.
const pendMax = 32

var (
	// ErrInvalidCapacity reports a zero capacity argument to New.
	ErrInvalidCapacity = errors.New("ringbuf: capacity must be positive")
	// ErrInvalidFlags reports an unsupported or contradictory Flag
	// combination, matching p64_ringbuf_alloc's invalid_combo0..3 checks.
	ErrInvalidFlags = errors.New("ringbuf: invalid flag combination")
)

// endpoint is one side (producer or consumer) of the ring: a reservation
// counter, a pending-commit bitmask for out-of-order release, and the
// published counter the other side reads against. Padded on both sides by
// opt.CacheLineSize_ so that a Ring's producer and consumer endpoints,
// which are updated by disjoint sets of goroutines, never share a cache
// line and false-share.
type endpoint struct {
	_         [opt.CacheLineSize_]byte
	reserve   atomic.Uint32 // next slot index to hand out
	pending   atomic.Uint32 // NBEnq/NBDeq: bitmask of reserved-but-uncommitted slots, relative to published
	published atomic.Uint32 // slots visible to the other side
	_         [opt.CacheLineSize_]byte
}

// Ring is a bounded FIFO of capacity elements of type T, safe for
// concurrent use according to the Flag combination passed to New.
type Ring[T any] struct {
	_        noCopy
	mask     uint32
	capacity uint32
	prodFlag Flag
	consFlag Flag
	prod     endpoint
	cons     endpoint
	buf      []T
}

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New allocates a ring buffer holding capacity elements (rounded up
// internally to a power of two the same way p64_ringbuf_alloc rounds
// nelems) and configured by flags. Supplying neither a producer flag nor
// a consumer flag defaults to SPEnq|SCDeq, the cheapest configuration.
func New[T any](capacity uint32, flags Flag) (*Ring[T], error) {
	if capacity == 0 {
		return nil, ErrInvalidCapacity
	}
	prodFlag, consFlag, err := splitFlags(flags)
	if err != nil {
		return nil, err
	}
	size := nextPow2(capacity)
	r := &Ring[T]{
		mask:     size - 1,
		capacity: capacity,
		prodFlag: prodFlag,
		consFlag: consFlag,
		buf:      make([]T, size),
	}
	return r, nil
}

func splitFlags(flags Flag) (prod, cons Flag, err error) {
	const prodMask = SPEnq | MPEnq | NBEnq
	const consMask = SCDeq | MCDeq | NBDeq | LFDeq
	if flags&^(prodMask|consMask) != 0 {
		return 0, 0, ErrInvalidFlags
	}
	// SPEnq and NBEnq enqueue modes are mutually exclusive, as are any
	// two consumer modes — p64_ringbuf_alloc's invalid_combo0..3.
	p := flags & prodMask
	if bits.OnesCount32(uint32(p)) > 1 {
		return 0, 0, ErrInvalidFlags
	}
	c := flags & consMask
	if bits.OnesCount32(uint32(c)) > 1 {
		return 0, 0, ErrInvalidFlags
	}
	if p == 0 {
		p = SPEnq
	}
	if c == 0 {
		c = SCDeq
	}
	return p, c, nil
}

func nextPow2(n uint32) uint32 {
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len32(n)
}

// Cap reports the ring's usable capacity.
func (r *Ring[T]) Cap() uint32 { return r.capacity }

// Enqueue blocks (spinning) until a free slot is available, then
// publishes v. It reports false only if closed is introduced in a future
// version; today it always returns true once it returns.
func (r *Ring[T]) Enqueue(v T) bool {
	slot, ok := r.acquire(&r.prod, r.prodFlag, r.consumerFrontier, r.full, true)
	if !ok {
		return false
	}
	r.buf[slot&r.mask] = v
	r.release(&r.prod, r.prodFlag, slot)
	return true
}

// TryEnqueue attempts to publish v without blocking; it reports false if
// the ring is currently full.
func (r *Ring[T]) TryEnqueue(v T) bool {
	slot, ok := r.acquire(&r.prod, r.prodFlag, r.consumerFrontier, r.full, false)
	if !ok {
		return false
	}
	r.buf[slot&r.mask] = v
	r.release(&r.prod, r.prodFlag, slot)
	return true
}

// full reports whether cur reserved slots (relative to the consumer
// frontier lim) already fill the ring's capacity; used to gate producer
// reservations. The unsigned subtraction wraps the same way the ring
// indices themselves wrap, so it stays correct across uint32 overflow.
func (r *Ring[T]) full(cur, lim uint32) bool {
	return cur-lim >= r.capacity
}

// empty reports whether there is nothing left for a consumer to reserve:
// the consumer has already reserved everything the producer frontier
// lim has made available.
func (r *Ring[T]) empty(cur, lim uint32) bool {
	return cur == lim
}

// consumerFrontier reports how far the consumer side has advanced, for
// the producer's capacity check. LFDeq has no release/publish step (a
// lock-free dequeue commits by CAS on the reservation counter itself), so
// its frontier is the reservation counter rather than a separately
// published one.
func (r *Ring[T]) consumerFrontier() uint32 {
	if r.consFlag == LFDeq {
		return r.cons.reserve.Load()
	}
	return r.cons.published.Load()
}

// Dequeue blocks (spinning) until an element is available, then returns
// it.
func (r *Ring[T]) Dequeue() (v T, ok bool) {
	if r.consFlag == LFDeq {
		return r.lockFreeDequeue(true)
	}
	slot, got := r.acquire(&r.cons, r.consFlag, func() uint32 { return r.prod.published.Load() }, r.empty, true)
	if !got {
		return v, false
	}
	v = r.buf[slot&r.mask]
	r.release(&r.cons, r.consFlag, slot)
	return v, true
}

// TryDequeue attempts to take an element without blocking; it reports
// false if the ring is currently empty.
func (r *Ring[T]) TryDequeue() (v T, ok bool) {
	if r.consFlag == LFDeq {
		return r.lockFreeDequeue(false)
	}
	slot, got := r.acquire(&r.cons, r.consFlag, func() uint32 { return r.prod.published.Load() }, r.empty, false)
	if !got {
		return v, false
	}
	v = r.buf[slot&r.mask]
	r.release(&r.cons, r.consFlag, slot)
	return v, true
}

// acquire reserves the next slot on side e, bounded by the other side's
// frontier (limit) and gated by blocked, which decides whether that
// reservation must wait. The producer and consumer sides need different
// gates, not the same one run in both directions: the producer is always
// at or ahead of the consumer's frontier, so "full" is a magnitude check
// (cur-limit() >= capacity) that relies on that ordering; the consumer is
// the side that can be behind the producer's frontier, so the same
// subtraction would underflow a uint32 and read as "always full" the
// moment there is real work waiting. The consumer's gate is instead the
// equality check "have I already reserved everything published so far"
// (cur == limit()), which needs no ordering assumption. For single-actor
// flags (SPEnq/SCDeq) reservation is a plain load-and-store since there is
// only one caller; otherwise it is a CAS retry loop, reserving by
// compare-and-swap instead of the unconditional fetch-add TicketLock.Lock
// uses (ticketlock.go) because a blocked reservation must be refused
// rather than handed out as an unbounded ticket.
func (r *Ring[T]) acquire(e *endpoint, flag Flag, limit func() uint32, blocked func(cur, lim uint32) bool, block bool) (uint32, bool) {
	single := flag == SPEnq || flag == SCDeq
	var spins int
	for {
		cur := e.reserve.Load()
		if blocked(cur, limit()) {
			if !block {
				return 0, false
			}
			delay(&spins)
			continue
		}
		if single {
			e.reserve.Store(cur + 1)
			return cur, true
		}
		if e.reserve.CompareAndSwap(cur, cur+1) {
			return cur, true
		}
		delay(&spins)
	}
}

// release publishes slot. Single-actor and blocking-multi modes publish
// strictly in order (a multi-actor blocking release spins for its turn,
// same as the FIFO ticket wait in TicketLock.Lock); non-blocking modes
// instead mark slot ready in the pending bitmask and fold in whatever
// prefix of contiguous ready slots is available, letting commits finish
// out of order without ever blocking a releaser.
func (r *Ring[T]) release(e *endpoint, flag Flag, slot uint32) {
	single := flag == SPEnq || flag == SCDeq
	nonblocking := flag == NBEnq || flag == NBDeq
	if single {
		e.published.Store(slot + 1)
		return
	}
	if !nonblocking {
		var spins int
		for e.published.Load() != slot {
			delay(&spins)
		}
		e.published.Store(slot + 1)
		return
	}
	r.releaseNonBlocking(e, slot)
}

// releaseNonBlocking marks slot-published.Load() ready in the pending
// bitmask, then folds in as many contiguous ready bits from the bottom as
// are set — using bits.TrailingZeros32 the same way
// original_source/src/p64_ringbuf.c's release_slots uses ctz — advancing
// published by that many slots in one step.
func (r *Ring[T]) releaseNonBlocking(e *endpoint, slot uint32) {
	var spins int
	for {
		published := e.published.Load()
		offset := slot - published
		if offset >= pendMax {
			// Too far ahead of the published frontier to track in the
			// bitmask; wait for it to catch up before marking pending.
			delay(&spins)
			continue
		}
		bit := uint32(1) << offset
		old := e.pending.Or(bit)
		ready := old | bit
		run := uint32(bits.TrailingZeros32(^ready))
		if run == 0 {
			return
		}
		if e.published.CompareAndSwap(published, published+run) {
			for {
				old := e.pending.Load()
				if e.pending.CompareAndSwap(old, old>>run) {
					break
				}
			}
			return
		}
	}
}

// lockFreeDequeue speculatively reads the slot at the current head, then
// commits by CAS on the head counter; a losing CAS means another consumer
// already took that slot, so the read is discarded and retried. This
// never blocks, matching P64_RINGBUF_F_LFDEQ's guarantee that a delayed
// consumer cannot stall any other consumer.
func (r *Ring[T]) lockFreeDequeue(block bool) (v T, ok bool) {
	var spins int
	for {
		head := r.cons.reserve.Load()
		tail := r.prod.published.Load()
		if head == tail {
			if !block {
				return v, false
			}
			delay(&spins)
			continue
		}
		candidate := r.buf[head&r.mask]
		if r.cons.reserve.CompareAndSwap(head, head+1) {
			return candidate, true
		}
		delay(&spins)
	}
}
