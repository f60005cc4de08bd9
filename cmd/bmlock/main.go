// Command bmlock is the CLI front-end for the lock benchmark harness of
// spec.md §6, mirroring original_source/benchmarks/bm_lock.c's
// -a/-l/-o/-t/-v flags, trailing <locktype> argument, and per-thread/summary
// output format. Flag parsing uses github.com/spf13/pflag and error/status
// reporting uses github.com/sirupsen/logrus, the same CLI and logging stack
// the google-gvisor example repo pulls in for its own command-line tools.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/dfreeman/synclock/bench"
)

// lockNames maps spec.md §6's <locktype> enum to the lock kind under
// test, matching bm_lock.c's abbr_name[] table.
var lockNames = map[string]bench.LockKind{
	"plain": bench.KindSpinlock,
	"rw":    bench.KindRWLock,
	"tfrw":  bench.KindTFRWLock,
	"pfrw":  bench.KindPFRWLock,
	"clh":   bench.KindCLHLock,
	"tkt":   bench.KindTicketLock,
}

func main() {
	var (
		affinity = pflag.StringP("affinity", "a", "", "CPU affinity mask; hex if 0x-prefixed, else base-2 (default: all ones)")
		laps     = pflag.IntP("laps", "l", 1000000, "laps per thread")
		nobjs    = pflag.IntP("objects", "o", 0, "number of lock objects (default max(1, threads/2))")
		nthreads = pflag.IntP("threads", "t", 2, "number of worker threads")
		verbose  = pflag.BoolP("verbose", "v", false, "print per-thread statistics")
	)
	pflag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *nthreads < 1 || *nthreads > bench.MaxThreads {
		logrus.Fatalf("bmlock: -t %d out of range [1,%d]", *nthreads, bench.MaxThreads)
	}
	if *laps < 1 {
		logrus.Fatalf("bmlock: -l %d must be >= 1", *laps)
	}
	if !pflag.Lookup("objects").Changed {
		*nobjs = max(1, *nthreads/2)
	}
	if *nobjs < 1 {
		logrus.Fatalf("bmlock: -o %d must be >= 1", *nobjs)
	}

	mask, err := parseMask(*affinity, *nthreads)
	if err != nil {
		logrus.WithError(err).Fatal("bmlock: invalid -a mask")
	}

	args := pflag.Args()
	if len(args) != 1 {
		logrus.Fatalf("bmlock: expected exactly one <locktype> argument, got %d", len(args))
	}
	kind, ok := lockNames[args[0]]
	if !ok {
		logrus.Fatalf("bmlock: unknown locktype %q (want one of plain, rw, tfrw, pfrw, clh, tkt)", args[0])
	}

	cfg := bench.Config{
		Kind:         kind,
		NumThreads:   *nthreads,
		NumObjects:   *nobjs,
		Laps:         *laps,
		AffinityMask: mask,
	}

	report, err := bench.Run(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("bmlock: benchmark run failed")
	}

	if *verbose {
		for _, ts := range report.PerThread {
			fmt.Printf("%d: numfailrd %d, numfailwr %d, nummultrd %d, numops %d\n",
				ts.ID, ts.NumFailRd, ts.NumFailWr, ts.NumMultiRd, ts.NumOps)
		}
	}
	fmt.Printf("numfailrd %d, numfailwr %d, nummultrd %d, numops %d\n",
		report.NumFailRd, report.NumFailWr, report.NumMultiRd, report.TotalOps)
	fmt.Printf("duration %.4fs, fairness %.4f, ops/s %.0f, ns/op %.1f\n",
		report.DurationSec, report.Fairness, report.OpsPerSec, report.NsPerOp)

	os.Exit(0)
}

// parseMask parses -a's CPU affinity mask: hex if 0x/0X-prefixed, else
// base-2, matching spec.md §6. An empty string is the documented default
// of "all ones" — set every bit up to the number of CPUs this machine
// and this run's thread count can use, so every thread gets a distinct
// CPU when there are enough of them.
func parseMask(s string, numThreads int) (uint64, error) {
	if s == "" {
		n := runtime.NumCPU()
		if n > numThreads {
			n = numThreads
		}
		if n >= 64 {
			return math.MaxUint64, nil
		}
		return uint64(1)<<uint(n) - 1, nil
	}
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		return strconv.ParseUint(rest, 16, 64)
	}
	if rest, ok := strings.CutPrefix(s, "0X"); ok {
		return strconv.ParseUint(rest, 16, 64)
	}
	return strconv.ParseUint(s, 2, 64)
}
