package ringbuf

import (
	"sync"
	"testing"
)

func TestRingSPSCSeedSequence(t *testing.T) {
	r, err := New[int](8, SPEnq|SCDeq)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		if !r.TryEnqueue(i) {
			t.Fatalf("enqueue %d failed unexpectedly", i)
		}
	}
	if r.TryEnqueue(99) {
		t.Fatal("enqueue into a full ring should fail")
	}
	for i := 0; i < 8; i++ {
		v, ok := r.TryDequeue()
		if !ok || v != i {
			t.Fatalf("dequeue %d: got (%v, %v), want (%d, true)", i, v, ok, i)
		}
	}
	if _, ok := r.TryDequeue(); ok {
		t.Fatal("dequeue from an empty ring should fail")
	}
}

func TestRingMPNonBlockingInOrderPublication(t *testing.T) {
	const n = 1000
	r, err := New[int](64, NBEnq|SCDeq)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			r.Enqueue(i)
		}()
	}

	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		v, ok := r.Dequeue()
		if !ok {
			t.Fatalf("dequeue %d: ring reported empty unexpectedly", i)
		}
		if v < 0 || v >= n || seen[v] {
			t.Fatalf("dequeue produced duplicate or out-of-range value %d", v)
		}
		seen[v] = true
	}
	wg.Wait()
}

func TestRingLFDEQNoDuplicateNoOverlap(t *testing.T) {
	const producers = 4
	const perProducer = 200
	const consumers = 4
	const total = producers * perProducer

	r, err := New[int](64, MPEnq|LFDeq)
	if err != nil {
		t.Fatal(err)
	}

	var pwg sync.WaitGroup
	pwg.Add(producers)
	for p := 0; p < producers; p++ {
		p := p
		go func() {
			defer pwg.Done()
			for i := 0; i < perProducer; i++ {
				r.Enqueue(p*perProducer + i)
			}
		}()
	}

	results := make(chan int, total)
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer cwg.Done()
			for i := 0; i < total/consumers; i++ {
				v, ok := r.Dequeue()
				if !ok {
					t.Errorf("dequeue reported empty unexpectedly")
					return
				}
				results <- v
			}
		}()
	}

	pwg.Wait()
	cwg.Wait()
	close(results)

	seen := make(map[int]bool, total)
	for v := range results {
		if seen[v] {
			t.Fatalf("value %d dequeued more than once", v)
		}
		seen[v] = true
	}
	if len(seen) != total {
		t.Fatalf("got %d distinct values, want %d", len(seen), total)
	}
}

func TestRingInvalidFlagCombinations(t *testing.T) {
	cases := []Flag{
		SPEnq | NBEnq,
		SCDeq | NBDeq,
		SCDeq | LFDeq,
		NBDeq | LFDeq,
	}
	for _, flags := range cases {
		if _, err := New[int](8, flags); err == nil {
			t.Errorf("flags %#x: expected error, got nil", uint32(flags))
		}
	}
}
