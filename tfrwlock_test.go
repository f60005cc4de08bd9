package synclock

import (
	"sync"
	"testing"
	"time"
)

func TestTFRWLockMultiReaderSingleWriter(t *testing.T) {
	var l TFRWLock
	const readers = 50
	var wg sync.WaitGroup

	tkt := l.AcquireWrite()
	l.ReleaseWrite(tkt)

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

func TestTFRWLockWriterExclusion(t *testing.T) {
	var l TFRWLock
	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	var counter int
	for range n {
		go func() {
			defer wg.Done()
			tkt := l.AcquireWrite()
			counter++
			l.ReleaseWrite(tkt)
		}()
	}
	wg.Wait()
	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}

// TestTFRWLockWriterWaitsForReaders checks the defining task-fair
// property: a writer's AcquireWrite does not return until every reader
// admitted ahead of it has released, even though the ticket queue lets
// the writer take its ticket immediately.
func TestTFRWLockWriterWaitsForReaders(t *testing.T) {
	var l TFRWLock
	l.AcquireRead()

	done := make(chan struct{})
	go func() {
		tkt := l.AcquireWrite()
		l.ReleaseWrite(tkt)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("writer proceeded while a reader admitted ahead of it was still active")
	default:
	}

	l.ReleaseRead()
	<-done
}
