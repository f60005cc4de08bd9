package bench

import "math"

// ThreadStats holds one worker goroutine's contribution to a run, used
// both for the per-thread report line and the fairness computation.
type ThreadStats struct {
	ID         int
	NumOps     uint64
	NumFailRd  uint64
	NumFailWr  uint64
	NumMultiRd uint64
	Elapsed    float64 // seconds
}

// Report summarizes one benchmark run, matching the duration / fairness /
// ops-per-second / ns-per-op summary lines printed by benchmark() in
// original_source/benchmarks/bm_lock.c.
type Report struct {
	Kind        LockKind
	NumThreads  int
	DurationSec float64
	TotalOps    uint64
	OpsPerSec   float64
	NsPerOp     float64
	Fairness    float64
	NumFailRd   uint64
	NumFailWr   uint64
	NumMultiRd  uint64
	PerThread   []ThreadStats
}

// fairnessIndex computes Jain-style per-thread throughput fairness as a
// geometric mean of each thread's share of the ideal (perfectly fair)
// per-thread throughput: ∏ (min(N_t,L)/max(N_t,L))^(1/N), where L is the
// mean thread throughput. A value of 1.0 is perfectly fair; values close
// to 0 indicate some threads starved others. Matches the fairness
// calculation in benchmark() in original_source/benchmarks/bm_lock.c.
func fairnessIndex(perThread []ThreadStats) float64 {
	n := len(perThread)
	if n == 0 {
		return 1
	}
	var sum float64
	for _, ts := range perThread {
		if ts.Elapsed > 0 {
			sum += float64(ts.NumOps) / ts.Elapsed
		}
	}
	mean := sum / float64(n)
	if mean == 0 {
		return 1
	}
	logSum := 0.0
	for _, ts := range perThread {
		rate := float64(ts.NumOps) / math.Max(ts.Elapsed, 1e-9)
		lo, hi := rate, mean
		if lo > hi {
			lo, hi = hi, lo
		}
		ratio := 0.0
		if hi > 0 {
			ratio = lo / hi
		}
		if ratio <= 0 {
			return 0
		}
		logSum += math.Log(ratio)
	}
	return math.Exp(logSum / float64(n))
}
