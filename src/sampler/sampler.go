package sampler

import (
	"log"
	"sync"
	"time"

	"snappick/src/pixel"
)

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 50 * time.Millisecond

// EmitFunc receives each sampled color. It is called from the sampler
// goroutine and must not block; callers post into their own queue.
type EmitFunc func(pixel.Color)

// Sampler polls the pixel under the pointer at a fixed interval.
type Sampler struct {
	reader pixel.Reader
	emit   EmitFunc

	mu       sync.Mutex
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}

	// lastErr suppresses repeating the same failure 20 times a second.
	lastErr string
}

// New creates a stopped sampler. interval <= 0 selects DefaultInterval.
func New(reader pixel.Reader, interval time.Duration, emit EmitFunc) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{reader: reader, emit: emit, interval: interval}
}

// Start begins polling. Calling Start on a running sampler does nothing.
func (s *Sampler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.interval, s.stop, s.done)
	log.Printf("SAMPLER: started (interval %v)", s.interval)
}

// Stop halts polling and waits for the polling goroutine to exit, so no
// color is emitted after Stop returns. Stopping a stopped sampler does nothing.
func (s *Sampler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	log.Printf("SAMPLER: stopped")
}

// Running reports whether the polling goroutine is active.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// SetInterval changes the polling period, restarting a running sampler.
func (s *Sampler) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultInterval
	}
	s.mu.Lock()
	if d == s.interval {
		s.mu.Unlock()
		return
	}
	s.interval = d
	running := s.stop != nil
	s.mu.Unlock()
	if running {
		s.Stop()
		s.Start()
	}
}

func (s *Sampler) run(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.tick(stop)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(stop)
		}
	}
}

// tick takes one sample. Failures and panics from native calls are logged
// and dropped; the ticker keeps running.
func (s *Sampler) tick(stop <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("SAMPLER: recovered from panic: %v", r)
		}
	}()

	c, _, err := pixel.UnderCursor(s.reader)
	if err != nil {
		if msg := err.Error(); msg != s.lastErr {
			s.lastErr = msg
			log.Printf("SAMPLER: sample failed: %v", err)
		}
		return
	}
	s.lastErr = ""

	select {
	case <-stop:
		return
	default:
	}
	if s.emit != nil {
		s.emit(c)
	}
}
