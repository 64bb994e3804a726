package util

import (
	"sync"
	"testing"
	"time"
)

func TestQueueBasic(t *testing.T) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	for i := 0; i < 10; i++ {
		if !q.Push(i) {
			t.Fatalf("Failed to push item %d", i)
		}
	}

	for i := 0; i < 10; i++ {
		select {
		case v := <-q.Recv():
			if v != i {
				t.Errorf("Expected %d, got %d", i, v)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for item %d", i)
		}
	}
}

// TestQueueConcurrentProducers checks no item is lost or duplicated
func TestQueueConcurrentProducers(t *testing.T) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	const producers = 8
	const perProducer = 500
	total := producers * perProducer

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(base + i)
			}
		}(p * perProducer)
	}

	seen := make(map[int]bool, total)
	for len(seen) < total {
		select {
		case v := <-q.Recv():
			if seen[v] {
				t.Fatalf("Duplicate item %d", v)
			}
			seen[v] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("Timeout, received %d of %d", len(seen), total)
		}
	}
	wg.Wait()
}

// TestQueueClose checks queued items survive Close and the channel closes afterwards
func TestQueueClose(t *testing.T) {
	q := NewLockFreeMPSC[string]()
	q.Push("a")
	q.Push("b")
	q.Close()

	if q.Push("c") {
		t.Error("Push after Close should fail")
	}
	if !q.IsClosed() {
		t.Error("IsClosed should be true")
	}

	var got []string
	for v := range q.Recv() {
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected items after close: %v", got)
	}
}
