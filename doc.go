// Package synclock provides a family of spin-based mutual-exclusion and
// reader-writer locks designed for short critical sections under heavy
// multi-core contention: a plain spinlock, a simple reader-writer lock, a
// ticket lock, a task-fair reader-writer lock, a phase-fair reader-writer
// lock, and a CLH queue lock.
//
// None of the primitives in this package ever block in the Go runtime
// sense (no channel receive, no sync.Cond, no semaphore): every Lock/Unlock
// pair is a spin loop over an atomic word, backed by a backoff that uses
// the same runtime spin check as the standard library's sync.Mutex and
// then falls back to a short sleep. Callers that need a goroutine to yield the processor while
// waiting should rely on that backoff, not wrap these types in additional
// blocking machinery.
package synclock
