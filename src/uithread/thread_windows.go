//go:build windows

package uithread

import (
	"context"
	"errors"
	"log"
	"runtime"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	wmApp  = 0x8000
	wmTask = wmApp + 1
	wmStop = wmApp + 2
)

var (
	user32                = windows.NewLazySystemDLL("user32.dll")
	procPostThreadMessage = user32.NewProc("PostThreadMessageW")
)

// Run locks the calling goroutine to its OS thread and pumps Win32 messages
// for every window created by posted tasks. It returns when ctx is done.
func (t *Thread) Run(ctx context.Context) error {
	if !t.started.CompareAndSwap(false, true) {
		return errors.New("ui thread already running")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Force creation of the thread message queue before anyone posts to it.
	var msg win.MSG
	win.PeekMessage(&msg, 0, win.WM_USER, win.WM_USER, win.PM_NOREMOVE)
	tid := windows.GetCurrentThreadId()
	t.tid.Store(tid)
	close(t.ready)
	log.Printf("UI: message loop running on thread %d", tid)

	go func() {
		<-ctx.Done()
		postThreadMessage(tid, wmStop)
	}()

	t.drain()
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 {
			log.Printf("UI: message loop ended (ret=%d)", ret)
			return ctx.Err()
		}
		if msg.HWnd == 0 {
			switch msg.Message {
			case wmTask:
				t.drain()
				continue
			case wmStop:
				t.drain()
				return ctx.Err()
			}
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

func (t *Thread) wake() {
	if tid := t.tid.Load(); tid != 0 {
		postThreadMessage(tid, wmTask)
	}
}

func postThreadMessage(tid uint32, msg uint32) {
	ret, _, err := procPostThreadMessage.Call(uintptr(tid), uintptr(msg), 0, 0)
	if ret == 0 {
		log.Printf("UI: PostThreadMessage(%#x) failed: %v", msg, err)
	}
}
