package bench

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"
)

// worker runs one benchmark thread: spin-wait on the shared start flag
// (barrier_thr_begin/barrier_all_begin in
// original_source/benchmarks/bm_lock.c), then run exactly cfg.Laps laps,
// each picking a random object and performing a read or write critical
// section on it, 7/8 of laps reading. ctx is only an early-exit signal
// for teardown; a normal run always ends on the lap count, matching
// thr_execute's `for (lap = 0; lap < NUMLAPS && !QUIT; lap++)`.
func worker(ctx context.Context, id, cpu int, cfg Config, objects []*Object, start *atomic.Bool) ThreadStats {
	if cpu >= 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		pinThread(cpu)
	}

	rng := newXorshift(uint64(id)*0x9E3779B97F4A7C15 + 1)

	for !start.Load() {
		// Spin-wait for the coordinator to release every worker at once,
		// the same simultaneous-start barrier as barrier_all_begin.
	}

	begin := time.Now()
	var ops uint64
	var failRd, failWr, multiRd uint64
laps:
	for lap := 0; lap < cfg.Laps; lap++ {
		select {
		case <-ctx.Done():
			break laps
		default:
		}
		obj := objects[rng.intn(len(objects))]
		var r csResult
		if lap%8 != 0 {
			r = obj.ReadCS()
		} else {
			r = obj.WriteCS()
		}
		failRd += r.failRd
		failWr += r.failWr
		multiRd += r.multiRd
		ops++
	}
	elapsed := time.Since(begin)

	return ThreadStats{
		ID:         id,
		NumOps:     ops,
		NumFailRd:  failRd,
		NumFailWr:  failWr,
		NumMultiRd: multiRd,
		Elapsed:    elapsed.Seconds(),
	}
}
