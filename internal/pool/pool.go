// Package pool provides bounded worker-pool abstractions the network
// front-end dispatches accepted connections to. A pool exposes one
// operation: accept a unit of work (a no-argument function) and arrange to
// execute it on a worker. Neither variant below changes the engine contract
// the submitted work invokes.
package pool

import "sync"

// Pool accepts units of work and runs them, eventually, on some worker.
type Pool interface {
	// Submit arranges for job to run. It does not block for job to finish.
	Submit(job func())

	// Close stops accepting new work and waits for in-flight jobs to
	// finish.
	Close()
}

// NaivePool is the simplest variant: each Submit spawns a fresh goroutine.
// It has no fixed size and nothing to bound concurrency, matching the
// thread_pool::naive variant of the original design.
type NaivePool struct {
	wg sync.WaitGroup
}

var _ Pool = (*NaivePool)(nil)

// NewNaivePool returns a ready-to-use NaivePool. It takes no size parameter:
// there is no fixed worker count to configure.
func NewNaivePool() *NaivePool {
	return &NaivePool{}
}

// Submit spawns job on a new goroutine.
func (p *NaivePool) Submit(job func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		job()
	}()
}

// Close waits for every spawned goroutine to finish.
func (p *NaivePool) Close() {
	p.wg.Wait()
}
