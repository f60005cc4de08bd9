package bench

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/dfreeman/synclock"
)

// LockKind selects which of the six lock types under test guards each
// Object, matching bm_lock.c's <locktype> argument.
type LockKind int

const (
	KindSpinlock LockKind = iota
	KindRWLock
	KindTicketLock
	KindTFRWLock
	KindPFRWLock
	KindCLHLock
)

func (k LockKind) String() string {
	switch k {
	case KindSpinlock:
		return "spinlock"
	case KindRWLock:
		return "rwlock"
	case KindTicketLock:
		return "ticketlock"
	case KindTFRWLock:
		return "tfrwlock"
	case KindPFRWLock:
		return "pfrwlock"
	case KindCLHLock:
		return "clhlock"
	default:
		return "unknown"
	}
}

// Object is one shared, lock-guarded counter, cache-line padded on every
// side so that false sharing between adjacent Objects never distorts the
// benchmark's timing, matching struct object's layout in
// original_source/benchmarks/bm_lock.c.
type Object struct {
	_ cpu.CacheLinePad

	kind LockKind
	sl   synclock.Spinlock
	rw   synclock.RWLock
	tkt  synclock.TicketLock
	tfrw synclock.TFRWLock
	pfrw synclock.PFRWLock
	clh  *synclock.CLHLock

	// countRd/countWr are the shared state a critical section audits for
	// correctness, matching struct object's count_rd/count_wr in
	// original_source/benchmarks/bm_lock.c: if the lock under test is
	// doing its job, at most one of countWr!=0 or countRd!=0 can ever
	// hold at a time, and countWr never exceeds 1.
	countRd atomic.Int32
	countWr atomic.Int32

	_ cpu.CacheLinePad
}

// csResult is one critical section's correctness audit, accumulated by
// the calling worker into its own per-thread totals — bm_lock.c's
// thr_execute keeps numfailrd/numfailwr/nummultrd as thread-local
// counters, not object state, since they are a per-thread tally of
// observations made against the shared object.
type csResult struct {
	failRd, failWr, multiRd uint64
}

// NewObject constructs an Object guarded by the given lock kind.
func NewObject(kind LockKind) *Object {
	o := &Object{kind: kind}
	if kind == KindCLHLock {
		o.clh = synclock.NewCLHLock()
	}
	return o
}

// ReadCS performs a shared critical section, returning the caller's tally
// of correctness observations made while holding it.
func (o *Object) ReadCS() csResult {
	switch o.kind {
	case KindSpinlock:
		o.sl.Lock()
		defer o.sl.Unlock()
	case KindRWLock:
		o.rw.RLock()
		defer o.rw.RUnlock()
	case KindTicketLock:
		o.tkt.Lock()
		defer o.tkt.Unlock()
	case KindTFRWLock:
		o.tfrw.AcquireRead()
		defer o.tfrw.ReleaseRead()
	case KindPFRWLock:
		o.pfrw.AcquireRead()
		defer o.pfrw.ReleaseRead()
	case KindCLHLock:
		h := o.clh.Lock()
		defer o.clh.Unlock(h)
	}
	return o.checkRead()
}

// WriteCS performs an exclusive critical section, returning the caller's
// tally of correctness observations made while holding it.
func (o *Object) WriteCS() csResult {
	switch o.kind {
	case KindSpinlock:
		o.sl.Lock()
		defer o.sl.Unlock()
	case KindRWLock:
		o.rw.Lock()
		defer o.rw.Unlock()
	case KindTicketLock:
		o.tkt.Lock()
		defer o.tkt.Unlock()
	case KindTFRWLock:
		tkt := o.tfrw.AcquireWrite()
		defer o.tfrw.ReleaseWrite(tkt)
	case KindPFRWLock:
		o.pfrw.AcquireWrite()
		defer o.pfrw.ReleaseWrite()
	case KindCLHLock:
		h := o.clh.Lock()
		defer o.clh.Unlock(h)
	}
	return o.checkWrite()
}

// checkRead audits a shared critical section against the object's shared
// counters, matching thr_execute's reader branch in
// original_source/benchmarks/bm_lock.c: a writer observed active at
// either end of the section is a correctness failure charged to
// numfailwr (the writer is the side that broke exclusion), and more than
// one reader observed concurrently is the benign nummultrd event.
func (o *Object) checkRead() csResult {
	var r csResult
	if o.countWr.Load() != 0 {
		r.failWr++
	}
	if o.countRd.Add(1) != 1 {
		r.multiRd++
	}
	delayLoop(10)
	o.countRd.Add(-1)
	if o.countWr.Load() != 0 {
		r.failWr++
	}
	return r
}

// checkWrite audits an exclusive critical section against the object's
// shared counters, matching thr_execute's writer branch: countWr must go
// 0->1->0 across the section with no other writer observed in between,
// and countRd must stay 0 throughout.
func (o *Object) checkWrite() csResult {
	var r csResult
	if o.countWr.Add(1) != 1 {
		r.failWr++
	}
	if o.countRd.Load() != 0 {
		r.failRd++
	}
	delayLoop(10)
	if o.countWr.Add(-1) != 0 {
		r.failWr++
	}
	if o.countRd.Load() != 0 {
		r.failRd++
	}
	return r
}

// delayLoop busy-spins niter iterations to widen the window in which a
// racing thread's critical section could be observed, matching
// delay_loop in original_source/benchmarks/bm_lock.c.
func delayLoop(niter int) {
	var x uint64
	for i := 0; i < niter; i++ {
		x += uint64(i)
	}
	runtime.KeepAlive(x)
}
