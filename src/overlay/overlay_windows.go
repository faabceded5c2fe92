//go:build windows

package overlay

import (
	"fmt"
	"image"
	"log"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const (
	className            = "SnapPickSelectionOverlay"
	escPollTimerID    = 1
	escPollIntervalMs = 25
	lwaAlpha          = 0x00000002
	psSolid           = 0
	blackBrush        = 4
	nullBrush         = 5
	vkEscape          = 0x1B
	asyncKeyDown      = 0x8000
)

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	gdi32                          = windows.NewLazySystemDLL("gdi32.dll")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procAllowSetForegroundWindow   = user32.NewProc("AllowSetForegroundWindow")
	procGetAsyncKeyState           = user32.NewProc("GetAsyncKeyState")
	procFillRect                   = user32.NewProc("FillRect")
	procCreatePen                  = gdi32.NewProc("CreatePen")
	procRectangle                  = gdi32.NewProc("Rectangle")
)

var (
	registerOnce sync.Once
	registerErr  error
	crossCursor  win.HCURSOR

	// active is the open overlay; window messages are routed to it.
	active *Window
)

type platformState struct {
	hwnd    win.HWND
	handler Handler
	size    image.Point
	esc     escapeEdge
}

func (s *platformState) open() bool { return s.hwnd != 0 }

func registerClass() error {
	registerOnce.Do(func() {
		crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))
		if crossCursor == 0 {
			log.Printf("OVERLAY: failed to load cross cursor")
		}
		wc := win.WNDCLASSEX{
			CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
			Style:         win.CS_HREDRAW | win.CS_VREDRAW,
			LpfnWndProc:   syscall.NewCallback(wndProc),
			HInstance:     win.GetModuleHandle(nil),
			HCursor:       crossCursor,
			LpszClassName: syscall.StringToUTF16Ptr(className),
		}
		if atom := win.RegisterClassEx(&wc); atom == 0 {
			registerErr = fmt.Errorf("failed to register overlay window class")
		}
	})
	return registerErr
}

// Open shows the overlay over bounds (screen coordinates) and routes input
// to h. Opening while already open closes the previous window first.
func (w *Window) Open(bounds image.Rectangle, h Handler) error {
	if bounds.Empty() {
		return fmt.Errorf("empty overlay bounds %v", bounds)
	}
	if err := registerClass(); err != nil {
		return err
	}
	if w.state.open() {
		w.Close()
	}

	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_LAYERED,
		syscall.StringToUTF16Ptr(className),
		syscall.StringToUTF16Ptr("Drag to capture, ESC cancels"),
		win.WS_POPUP,
		int32(bounds.Min.X), int32(bounds.Min.Y), int32(bounds.Dx()), int32(bounds.Dy()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return fmt.Errorf("failed to create overlay window")
	}
	// An ESC held from before the overlay opened must be released and
	// pressed again to cancel.
	w.state = platformState{hwnd: hwnd, handler: h, size: bounds.Size()}
	w.state.esc.prime(escapeDown())
	active = w

	procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, uintptr(w.style.Alpha), lwaAlpha)
	win.ShowWindow(hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	win.SetFocus(hwnd)
	win.UpdateWindow(hwnd)
	if win.SetTimer(hwnd, escPollTimerID, escPollIntervalMs, 0) == 0 {
		log.Printf("OVERLAY: failed to start escape poll timer")
	}
	log.Printf("OVERLAY: opened hwnd=%v at %v", hwnd, bounds)
	return nil
}

// Redraw schedules a repaint of the selection outline.
func (w *Window) Redraw() {
	if w.state.hwnd != 0 {
		win.InvalidateRect(w.state.hwnd, nil, false)
	}
}

// Close destroys the overlay. Closing a closed overlay does nothing.
func (w *Window) Close() {
	hwnd := w.state.hwnd
	if hwnd == 0 {
		return
	}
	w.state = platformState{}
	if active == w {
		active = nil
	}
	win.KillTimer(hwnd, escPollTimerID)
	win.ReleaseCapture()
	win.DestroyWindow(hwnd)
	log.Printf("OVERLAY: closed hwnd=%v", hwnd)
}

func lParamPoint(lParam uintptr) image.Point {
	// GET_X_LPARAM / GET_Y_LPARAM: coordinates are signed 16-bit.
	x := int16(win.LOWORD(uint32(lParam)))
	y := int16(win.HIWORD(uint32(lParam)))
	return image.Pt(int(x), int(y))
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	w := active
	if w == nil || w.state.hwnd != hwnd {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	h := w.state.handler

	switch msg {
	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		h.PointerDown(lParamPoint(lParam))
		return 0

	case win.WM_MOUSEMOVE:
		h.PointerMove(lParamPoint(lParam))
		return 0

	case win.WM_LBUTTONUP:
		win.ReleaseCapture()
		// The handler may close the overlay from here.
		h.PointerUp(lParamPoint(lParam))
		return 0

	case win.WM_KEYDOWN:
		if wParam == vkEscape {
			w.state.esc.prime(true)
			h.Cancel()
		}
		return 0

	case win.WM_TIMER:
		if wParam == escPollTimerID {
			pollEscape(w)
		}
		return 0

	case win.WM_SETCURSOR:
		if crossCursor != 0 {
			win.SetCursor(crossCursor)
			return 1
		}

	case win.WM_ERASEBKGND:
		return 1

	case win.WM_PAINT:
		paint(w, hwnd)
		return 0

	case win.WM_NCHITTEST:
		return uintptr(win.HTCLIENT)
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// escapeDown reads only the current key state. The "pressed since last call"
// bit is shared with other processes and may be stale.
func escapeDown() bool {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vkEscape))
	return uint16(state)&asyncKeyDown != 0
}

// pollEscape catches ESC when the overlay failed to take keyboard focus.
func pollEscape(w *Window) {
	if w.state.esc.observe(escapeDown()) {
		log.Printf("OVERLAY: escape detected via async polling")
		w.state.handler.Cancel()
	}
}

// paint renders into a memory DC and blits once to avoid flicker.
func paint(w *Window, hwnd win.HWND) {
	var ps win.PAINTSTRUCT
	hdc := win.BeginPaint(hwnd, &ps)
	defer win.EndPaint(hwnd, &ps)

	width, height := int32(w.state.size.X), int32(w.state.size.Y)
	memDC := win.CreateCompatibleDC(hdc)
	if memDC == 0 {
		return
	}
	defer win.DeleteDC(memDC)
	bmp := win.CreateCompatibleBitmap(hdc, width, height)
	if bmp == 0 {
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(bmp))
	oldBmp := win.SelectObject(memDC, win.HGDIOBJ(bmp))
	defer win.SelectObject(memDC, oldBmp)

	rc := win.RECT{Left: 0, Top: 0, Right: width, Bottom: height}
	procFillRect.Call(uintptr(memDC), uintptr(unsafe.Pointer(&rc)), uintptr(win.GetStockObject(blackBrush)))

	if sel, ok := w.state.handler.Selection(); ok {
		pen, _, _ := procCreatePen.Call(psSolid, uintptr(w.style.PenWidth), uintptr(w.style.PenColor))
		oldPen := win.SelectObject(memDC, win.HGDIOBJ(pen))
		oldBrush := win.SelectObject(memDC, win.GetStockObject(nullBrush))
		procRectangle.Call(uintptr(memDC),
			uintptr(int32(sel.Min.X)), uintptr(int32(sel.Min.Y)),
			uintptr(int32(sel.Max.X)), uintptr(int32(sel.Max.Y)))
		win.SelectObject(memDC, oldPen)
		win.SelectObject(memDC, oldBrush)
		win.DeleteObject(win.HGDIOBJ(pen))
	}

	win.BitBlt(hdc, 0, 0, width, height, memDC, 0, 0, win.SRCCOPY)
}
