//go:build linux

package bench

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// pinThread pins the calling OS thread to cpu and requests the SCHED_FIFO
// real-time policy, matching create_threads in
// original_source/benchmarks/bm_lock.c. Lacking CAP_SYS_NICE,
// SchedSetscheduler fails with EPERM; the original falls back to
// SCHED_OTHER in that case rather than treating it as fatal, so this does
// the same and only logs the fallback.
func pinThread(cpu int) {
	tid := unix.Gettid()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(tid, &set); err != nil {
		logrus.WithError(err).WithField("cpu", cpu).Warn("bench: SchedSetaffinity failed")
	}
	param := &unix.SchedParam{Priority: 1}
	if err := unix.SchedSetscheduler(tid, unix.SCHED_FIFO, param); err != nil {
		logrus.WithError(err).Debug("bench: SCHED_FIFO unavailable, falling back to SCHED_OTHER")
	}
}
