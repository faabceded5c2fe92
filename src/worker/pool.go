// Package worker runs jobs off the UI thread on a small goroutine pool.
package worker

import (
	"log"
	"runtime/debug"
	"sync"
)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a worker pool with size goroutines. Size defaults to 1.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan func(), 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for fn := range p.jobs {
				run(fn)
			}
		}()
	}
}

func run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker: job panicked: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}

// Submit enqueues fn if the single-slot queue is free. Returns false if
// dropped or if the pool is closed.
func (p *Pool) Submit(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- fn:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining queued work.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
