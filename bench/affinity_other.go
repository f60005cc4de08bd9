//go:build !linux

package bench

// pinThread is a no-op outside Linux: CPU affinity and SCHED_FIFO are
// Linux-specific and original_source/benchmarks/bm_lock.c only ever
// targeted Linux hosts.
func pinThread(cpu int) {}
