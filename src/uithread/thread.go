// Package uithread owns the single OS thread that creates and mutates every
// window in the process. Other goroutines hand work to it with Post.
package uithread

import (
	"log"
	"sync"
	"sync/atomic"
)

// Thread is a task queue drained on one locked OS thread.
type Thread struct {
	mu    sync.Mutex
	queue []func()

	ready   chan struct{}
	started atomic.Bool
	tid     atomic.Uint32
	wakeCh  chan struct{}
}

func New() *Thread {
	return &Thread{
		ready:  make(chan struct{}),
		wakeCh: make(chan struct{}, 1),
	}
}

// Ready is closed once Run has locked its thread and can execute tasks.
func (t *Thread) Ready() <-chan struct{} { return t.ready }

// Post queues fn for execution on the UI thread. Tasks run in FIFO order.
// Post never blocks; tasks posted before Run starts execute once it does.
func (t *Thread) Post(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	t.queue = append(t.queue, fn)
	t.mu.Unlock()
	t.wake()
}

func (t *Thread) drain() {
	for {
		t.mu.Lock()
		if len(t.queue) == 0 {
			t.mu.Unlock()
			return
		}
		fn := t.queue[0]
		t.queue[0] = nil
		t.queue = t.queue[1:]
		t.mu.Unlock()
		t.exec(fn)
	}
}

func (t *Thread) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("UI: recovered from panic in task: %v", r)
		}
	}()
	fn()
}
