// Package bench is the concurrent lock stress-test harness of spec.md
// §6: a fixed pool of shared Objects, a configurable number of worker
// goroutines that repeatedly perform biased read/write critical sections
// against randomly chosen objects, and a report of throughput and
// fairness once the run completes. Grounded on
// original_source/benchmarks/bm_lock.c's thr_execute/benchmark
// structure, with the barrier, affinity and thread-loop machinery
// translated into goroutines coordinated by
// golang.org/x/sync/errgroup.Group and context.Context — orchestration
// that sits above the lock primitives under test, not a blocking
// synchronization primitive itself, so it does not conflict with
// spec.md §2's "no blocking (sleeping) synchronization" scope for the
// locks themselves.
package bench

import (
	"context"
	"math/bits"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MaxThreads bounds -t, matching bm_lock.c's MAXTHREADS-sized static
// per-thread arrays (tid[], cpus[], NUMFAILRD[], ...).
const MaxThreads = 128

// Config parametrizes one benchmark run, matching bm_lock.c's -a/-l/-o/-t
// command line options.
type Config struct {
	Kind         LockKind // <locktype>: lock type under test
	NumThreads   int      // -t: worker goroutines
	NumObjects   int      // -o: shared objects
	Laps         int      // -l: laps per thread
	AffinityMask uint64   // -a: CPU affinity mask
}

// Run executes one benchmark according to cfg and returns the aggregate
// report. Each worker runs exactly cfg.Laps laps; ctx only cuts a run
// short early (teardown, test timeout), it is not the run's normal
// termination condition.
func Run(ctx context.Context, cfg Config) (Report, error) {
	objects := make([]*Object, cfg.NumObjects)
	for i := range objects {
		objects[i] = NewObject(cfg.Kind)
	}

	cpus := assignCPUs(cfg.AffinityMask, cfg.NumThreads)

	var start atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	results := make([]ThreadStats, cfg.NumThreads)
	for i := 0; i < cfg.NumThreads; i++ {
		i := i
		g.Go(func() error {
			results[i] = worker(gctx, i, cpus[i], cfg, objects, &start)
			return nil
		})
	}
	start.Store(true) // release every worker's spin-wait at once

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return buildReport(cfg, results), nil
}

// assignCPUs picks one CPU per thread by repeatedly taking the
// lowest-set bit of the remaining affinity mask, matching
// create_threads's `__builtin_ffsl(affinity) - 1` loop in
// original_source/benchmarks/bm_lock.c. The mask is refilled and the scan
// restarts once exhausted, so a thread count exceeding the number of set
// bits still gets a (reused) CPU assignment instead of falling back to -1.
func assignCPUs(mask uint64, numThreads int) []int {
	cpus := make([]int, numThreads)
	remaining := mask
	for i := 0; i < numThreads; i++ {
		if remaining == 0 {
			remaining = mask
		}
		if remaining == 0 {
			cpus[i] = -1
			continue
		}
		cpu := bits.TrailingZeros64(remaining)
		cpus[i] = cpu
		remaining &^= uint64(1) << cpu
	}
	return cpus
}

func buildReport(cfg Config, results []ThreadStats) Report {
	var total uint64
	var failRd, failWr, multiRd uint64
	var maxElapsed float64
	for _, ts := range results {
		total += ts.NumOps
		failRd += ts.NumFailRd
		failWr += ts.NumFailWr
		multiRd += ts.NumMultiRd
		if ts.Elapsed > maxElapsed {
			maxElapsed = ts.Elapsed
		}
	}

	r := Report{
		Kind:        cfg.Kind,
		NumThreads:  cfg.NumThreads,
		DurationSec: maxElapsed,
		TotalOps:    total,
		NumFailRd:   failRd,
		NumFailWr:   failWr,
		NumMultiRd:  multiRd,
		PerThread:   results,
		Fairness:    fairnessIndex(results),
	}
	if maxElapsed > 0 {
		r.OpsPerSec = float64(total) / maxElapsed
		r.NsPerOp = maxElapsed * 1e9 / float64(total)
	}
	return r
}
