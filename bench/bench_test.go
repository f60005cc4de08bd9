package bench

import (
	"context"
	"testing"
)

func TestRunSmoke(t *testing.T) {
	kinds := []LockKind{
		KindSpinlock, KindRWLock, KindTicketLock,
		KindTFRWLock, KindPFRWLock, KindCLHLock,
	}
	for _, kind := range kinds {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			cfg := Config{
				Kind:         kind,
				NumThreads:   4,
				NumObjects:   4,
				Laps:         200,
				AffinityMask: 0,
			}
			report, err := Run(context.Background(), cfg)
			if err != nil {
				t.Fatal(err)
			}
			if report.TotalOps == 0 {
				t.Fatal("expected at least one operation to complete")
			}
			if report.NumFailRd != 0 || report.NumFailWr != 0 {
				t.Fatalf("detected %d read and %d write correctness failures",
					report.NumFailRd, report.NumFailWr)
			}
			if report.Fairness < 0 || report.Fairness > 1 {
				t.Fatalf("fairness index %v out of [0,1] range", report.Fairness)
			}
		})
	}
}

// TestCLHTwoThreadsTenThousandLaps is seed scenario 2 of spec.md §8: two
// threads running the CLH lock for 10,000 laps each must produce an
// op count that sums exactly (laps are fixed, not wall-clock bounded)
// and zero correctness failures.
func TestCLHTwoThreadsTenThousandLaps(t *testing.T) {
	cfg := Config{
		Kind:       KindCLHLock,
		NumThreads: 2,
		NumObjects: 1,
		Laps:       10000,
	}
	report, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalOps != 20000 {
		t.Fatalf("TotalOps = %d, want 20000", report.TotalOps)
	}
	if report.NumFailRd != 0 || report.NumFailWr != 0 {
		t.Fatalf("detected %d read and %d write correctness failures",
			report.NumFailRd, report.NumFailWr)
	}
}
