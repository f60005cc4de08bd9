package synclock

import "sync/atomic"

// ticketStep is the fetch-add increment that hands out the next ticket.
// Packing next_ticket and now_serving into the two halves of one 32-bit
// word (spec.md §3, §4.3) only works without carry from the low half into
// the high half if the two counters occupy disjoint bit ranges that the
// fetch-add never crosses; putting next_ticket in the high 16 bits and
// now_serving in the low 16 bits (the layout Linux's ticket spinlock uses)
// gives exactly that: Lock's fetch-add of 1<<16 can never touch the low
// 16 bits, and Unlock increments the low 16 bits modulo 1<<16 with a CAS,
// so a wrapping now_serving never carries into the high 16 bits.
const ticketStep uint32 = 1 << 16

// TicketLock is the FIFO ticket lock of spec.md §4.3: a single packed
// 32-bit word holding next_ticket (high 16 bits) and now_serving (low 16
// bits). Adapted from the teacher's TicketLock (two separate atomic.Uint32
// counters, ticket_lock.go) and ahrav-go-locks' packed-word TryLock, which
// together motivate packing both counters into one word as the spec's
// data model requires.
type TicketLock struct {
	_    noCopy
	word atomic.Uint32
}

// Lock takes a ticket and spins until it is being served.
func (t *TicketLock) Lock() {
	ticket := (t.word.Add(ticketStep) - ticketStep) >> 16
	var spins int
	for uint32(t.word.Load()&0xFFFF) != ticket {
		delay(&spins)
	}
}

// Unlock advances now_serving, admitting the next waiting ticket holder.
func (t *TicketLock) Unlock() {
	for {
		old := t.word.Load()
		if t.word.CompareAndSwap(old, old&^0xFFFF|(old+1)&0xFFFF) {
			break
		}
	}
	sendEvent()
}
