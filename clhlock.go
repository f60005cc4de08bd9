package synclock

import (
	"sync/atomic"
	"unsafe"
)

// clhNode is one link in the CLH queue: locked is true while its owner is
// still waiting for, or holding, the lock.
type clhNode struct {
	locked atomic.Bool
}

// CLHLock is the CLH queue lock of spec.md §4.6: an implicit linked-list
// queue built from a single tail pointer; each waiter spins on its
// predecessor's node instead of on shared lock state. Nodes are not
// cache-line padded.
//
// Grounded on other_examples/ecashin-go-getting__clhlock.go (QNode/CLHLock
// using atomic.CompareAndSwapPointer over unsafe.Pointer), generalized so
// a single CLHLock instance can be shared by any number of goroutines
// instead of the source's fixed CLHLockThread slice, and so Lock returns
// an opaque handle a caller passes back to Unlock rather than keeping
// per-thread state on the lock itself.
type CLHLock struct {
	_    noCopy
	tail unsafe.Pointer // *clhNode
}

// NewCLHLock returns a lock with an initial unlocked sentinel node, so the
// first Lock call always has a predecessor to spin on.
func NewCLHLock() *CLHLock {
	sentinel := &clhNode{}
	l := &CLHLock{}
	l.tail = unsafe.Pointer(sentinel)
	return l
}

// CLHHandle is the token returned by Lock and consumed by Unlock. It holds
// the caller's own node (now the queue tail) and the predecessor node it
// waited on, which becomes free for reuse once released.
type CLHHandle struct {
	node *clhNode
	pred *clhNode
}

// Lock enqueues a fresh node as the new tail and spins on the previous
// tail's locked flag.
func (l *CLHLock) Lock() *CLHHandle {
	node := &clhNode{}
	node.locked.Store(true)
	pred := (*clhNode)(atomic.SwapPointer(&l.tail, unsafe.Pointer(node)))
	var spins int
	for pred.locked.Load() {
		delay(&spins)
	}
	return &CLHHandle{node: node, pred: pred}
}

// Unlock releases the lock acquired by the matching Lock call. The
// predecessor node is discarded; the caller's own node remains live as
// the tail (or as the next waiter's predecessor) until it is released in
// turn.
func (l *CLHLock) Unlock(h *CLHHandle) {
	h.node.locked.Store(false)
	sendEvent()
}
