package synclock

import (
	"sync"
	"testing"
	"time"
)

func TestPFRWLockMultiReaderSingleWriter(t *testing.T) {
	var l PFRWLock
	const readers = 50
	var wg sync.WaitGroup

	l.AcquireWrite()
	l.ReleaseWrite()

	wg.Add(readers)
	for range readers {
		go func() {
			defer wg.Done()
			l.AcquireRead()
			defer l.ReleaseRead()
		}()
	}
	wg.Wait()
}

func TestPFRWLockWriterExclusion(t *testing.T) {
	var l PFRWLock
	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	var counter int
	for range n {
		go func() {
			defer wg.Done()
			l.AcquireWrite()
			counter++
			l.ReleaseWrite()
		}()
	}
	wg.Wait()
	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}

// TestPFRWLockWriterBoundedByOnePhase checks the phase-fair guarantee: a
// writer that announces itself waits only for the reader phase already in
// progress, not for any reader that arrives afterward.
func TestPFRWLockWriterBoundedByOnePhase(t *testing.T) {
	var l PFRWLock
	l.AcquireRead() // in-progress reader phase

	writerDone := make(chan struct{})
	go func() {
		l.AcquireWrite()
		l.ReleaseWrite()
		close(writerDone)
	}()

	time.Sleep(5 * time.Millisecond) // let the writer announce itself

	lateReaderBlocked := make(chan struct{})
	go func() {
		l.AcquireRead()
		defer l.ReleaseRead()
		close(lateReaderBlocked)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-writerDone:
		t.Fatal("writer should still be waiting on the in-progress reader")
	default:
	}

	l.ReleaseRead() // drain the in-progress reader phase
	<-writerDone
	<-lateReaderBlocked
}
