package synclock

import "sync/atomic"

// TFRWLock is the task-fair reader-writer lock of spec.md §3/§4.4: readers
// and writers share a single FIFO ticket queue. Every acquirer — reader or
// writer — takes one ticket and proceeds once it is served; a writer's
// acquire additionally blocks until every reader admitted ahead of it has
// released, so "batches of readers alternate with individual writers in
// arrival order" (spec.md §4.4).
//
// Neither original_source/ nor the teacher carries a task-fair lock, so
// this is an original design built on the idioms the pack does supply: the
// FIFO ticket of TicketLock (ticketlock.go) for ordering, kept here as two
// separate words (next, served) rather than one packed word, and
// the writer-waits-for-readers-to-drain pattern of RWLock.Lock
// (rwlock.go / original_source/src/p64_rwlock.c) for the drain condition.
// See DESIGN.md for the reasoning behind this choice.
type TFRWLock struct {
	_ noCopy

	next   atomic.Uint32 // next ticket to hand out, readers and writers share this sequence
	served atomic.Uint32 // ticket currently allowed to proceed
	active atomic.Int32  // number of admitted readers that have not yet released
}

// AcquireRead takes a ticket, waits for its turn, then immediately admits
// the next waiter — so a run of consecutive readers is served back-to-back
// as one batch while still incrementing active for each of them.
func (l *TFRWLock) AcquireRead() {
	my := l.next.Add(1) - 1
	var spins int
	for l.served.Load() != my {
		delay(&spins)
	}
	l.active.Add(1)
	l.served.Add(1)
}

// ReleaseRead leaves the lock.
func (l *TFRWLock) ReleaseRead() {
	l.active.Add(-1)
	sendEvent()
}

// AcquireWrite takes a ticket, waits for its turn, then waits for every
// reader admitted ahead of it to release — so AcquireWrite does not return
// until the lock is genuinely exclusive. The returned ticket must be
// passed to ReleaseWrite.
func (l *TFRWLock) AcquireWrite() (ticket uint32) {
	my := l.next.Add(1) - 1
	var spins int
	for l.served.Load() != my {
		delay(&spins)
	}
	for l.active.Load() != 0 {
		delay(&spins)
	}
	return my
}

// ReleaseWrite admits the next waiting ticket holder.
func (l *TFRWLock) ReleaseWrite(ticket uint32) {
	_ = ticket // kept for symmetry with p64_tfrwlock_release_wr(lock, ticket)
	l.served.Add(1)
	sendEvent()
}
