//go:build !windows

package uithread

import (
	"context"
	"errors"
	"runtime"
)

// Run locks the calling goroutine to its OS thread and executes posted tasks
// until ctx is done. Without a native window system there is no message pump.
func (t *Thread) Run(ctx context.Context) error {
	if !t.started.CompareAndSwap(false, true) {
		return errors.New("ui thread already running")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	t.tid.Store(1)
	close(t.ready)

	for {
		t.drain()
		select {
		case <-ctx.Done():
			t.drain()
			return ctx.Err()
		case <-t.wakeCh:
		}
	}
}

func (t *Thread) wake() {
	select {
	case t.wakeCh <- struct{}{}:
	default:
	}
}
