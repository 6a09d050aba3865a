package pool

import (
	"sync"
	"sync/atomic"
	"testing"
)

func testPoolRunsAllJobs(t *testing.T, p Pool) {
	t.Helper()

	const n = 100
	var count int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		p.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}

	wg.Wait()
	p.Close()

	if got := atomic.LoadInt64(&count); got != n {
		t.Errorf("jobs run = %d, want %d", got, n)
	}
}

func TestNaivePoolRunsAllJobs(t *testing.T) {
	testPoolRunsAllJobs(t, NewNaivePool())
}

func TestFixedPoolRunsAllJobs(t *testing.T) {
	testPoolRunsAllJobs(t, NewFixedPool(4))
}

func TestFixedPoolBoundsConcurrency(t *testing.T) {
	const size = 3
	p := NewFixedPool(size)

	var inFlight, maxInFlight int64
	var mu sync.Mutex
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(size * 2)

	for i := 0; i < size*2; i++ {
		p.Submit(func() {
			defer wg.Done()
			<-start
			n := atomic.AddInt64(&inFlight, 1)
			mu.Lock()
			if n > maxInFlight {
				maxInFlight = n
			}
			mu.Unlock()
			atomic.AddInt64(&inFlight, -1)
		})
	}

	close(start)
	wg.Wait()
	p.Close()

	if maxInFlight > size {
		t.Errorf("max concurrent jobs = %d, want <= %d", maxInFlight, size)
	}
}
