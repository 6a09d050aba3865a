package pool

import "sync"

// FixedPool is a bounded set of persistent workers draining a buffered
// channel of jobs. This is the variant cmd/kvsd-server wires by default:
// spec.md's network front-end hands each accepted connection to a worker
// from a bounded pool (fixed size, e.g. 10).
type FixedPool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

var _ Pool = (*FixedPool)(nil)

// NewFixedPool starts size persistent workers. size must be at least 1.
func NewFixedPool(size int) *FixedPool {
	if size < 1 {
		size = 1
	}

	p := &FixedPool{jobs: make(chan func(), size)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *FixedPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit queues job for the workers. It blocks only while every worker is
// busy and the queue, which holds up to size jobs, is full. Calling Submit
// after Close panics.
func (p *FixedPool) Submit(job func()) {
	p.jobs <- job
}

// Close stops accepting new work and waits for every worker to drain its
// current job and exit.
func (p *FixedPool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
