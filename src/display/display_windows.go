//go:build windows

package display

import (
	"errors"
	"fmt"
	"image"
	"log"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"snappick/src/pixel"
)

const (
	className       = "SnapPickColorInfo"
	alpha           = 230 // 90% opacity
	background      = 0x00323232
	textColor       = 0x00FFFFFF
	swatchBorder    = 0x00000000
	lwaAlpha        = 0x00000002
	spiGetWorkArea  = 0x0030
	spiSetWorkArea  = 0x002F
	wmDisplayChange = 0x007E
	wmSettingChange = 0x001A
	defaultGUIFont  = 17
	swatchLeft      = 10
	swatchTop       = 10
	swatchSize      = 20
	labelLeft       = 40
	labelTop        = 12
)

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	gdi32                          = windows.NewLazySystemDLL("gdi32.dll")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procSystemParametersInfo       = user32.NewProc("SystemParametersInfoW")
	procFillRect                   = user32.NewProc("FillRect")
	procCreateSolidBrush           = gdi32.NewProc("CreateSolidBrush")
	procCreatePen                  = gdi32.NewProc("CreatePen")
	procRectangle                  = gdi32.NewProc("Rectangle")

	// instance is the single color window; the class proc routes to it.
	instance *winPlatform
)

type winPlatform struct {
	hwnd         win.HWND
	color        pixel.Color
	onReposition func()
}

func newPlatform(onReposition func()) (platform, error) {
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(wndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
		LpszClassName: syscall.StringToUTF16Ptr(className),
	}
	if atom := win.RegisterClassEx(&wc); atom == 0 {
		return nil, errors.New("failed to register color window class")
	}

	p := &winPlatform{onReposition: onReposition}
	instance = p
	// Layered + transparent: the readout never takes focus or mouse input.
	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_LAYERED|win.WS_EX_TRANSPARENT|win.WS_EX_NOACTIVATE,
		syscall.StringToUTF16Ptr(className),
		syscall.StringToUTF16Ptr("SnapPick"),
		win.WS_POPUP,
		0, 0, Width, Height,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		instance = nil
		return nil, errors.New("failed to create color window")
	}
	p.hwnd = hwnd
	procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, alpha, lwaAlpha)
	log.Printf("DISPLAY: window created hwnd=%v", hwnd)
	return p, nil
}

func (p *winPlatform) show() error {
	win.ShowWindow(p.hwnd, win.SW_SHOWNOACTIVATE)
	win.UpdateWindow(p.hwnd)
	return nil
}

func (p *winPlatform) hide() {
	win.ShowWindow(p.hwnd, win.SW_HIDE)
}

func (p *winPlatform) setColor(c pixel.Color) {
	if c == p.color {
		return
	}
	p.color = c
	win.InvalidateRect(p.hwnd, nil, false)
}

func (p *winPlatform) moveTo(pt image.Point) error {
	if !win.SetWindowPos(p.hwnd, win.HWND_TOPMOST, int32(pt.X), int32(pt.Y), Width, Height, win.SWP_NOACTIVATE) {
		return fmt.Errorf("SetWindowPos(%d,%d) failed", pt.X, pt.Y)
	}
	return nil
}

func (p *winPlatform) workArea() (image.Rectangle, error) {
	var rc win.RECT
	ret, _, err := procSystemParametersInfo.Call(spiGetWorkArea, 0, uintptr(unsafe.Pointer(&rc)), 0)
	if ret == 0 {
		return image.Rectangle{}, fmt.Errorf("SystemParametersInfo(SPI_GETWORKAREA): %v", err)
	}
	return image.Rect(int(rc.Left), int(rc.Top), int(rc.Right), int(rc.Bottom)), nil
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	p := instance
	if p == nil || p.hwnd != hwnd {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	switch msg {
	case win.WM_PAINT:
		p.paint()
		return 0
	case win.WM_ERASEBKGND:
		return 1
	case win.WM_ACTIVATE, wmDisplayChange:
		p.onReposition()
	case wmSettingChange:
		if wParam == spiSetWorkArea {
			p.onReposition()
		}
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func (p *winPlatform) paint() {
	var ps win.PAINTSTRUCT
	hdc := win.BeginPaint(p.hwnd, &ps)
	defer win.EndPaint(p.hwnd, &ps)

	bg, _, _ := procCreateSolidBrush.Call(background)
	rc := win.RECT{Right: Width, Bottom: Height}
	procFillRect.Call(uintptr(hdc), uintptr(unsafe.Pointer(&rc)), bg)
	win.DeleteObject(win.HGDIOBJ(bg))

	swatch, _, _ := procCreateSolidBrush.Call(uintptr(p.color.COLORREF()))
	pen, _, _ := procCreatePen.Call(0, 1, swatchBorder)
	oldBrush := win.SelectObject(hdc, win.HGDIOBJ(swatch))
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	procRectangle.Call(uintptr(hdc), swatchLeft, swatchTop, swatchLeft+swatchSize, swatchTop+swatchSize)
	win.SelectObject(hdc, oldBrush)
	win.SelectObject(hdc, oldPen)
	win.DeleteObject(win.HGDIOBJ(swatch))
	win.DeleteObject(win.HGDIOBJ(pen))

	oldFont := win.SelectObject(hdc, win.GetStockObject(defaultGUIFont))
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, textColor)
	label := p.color.Label()
	win.TextOut(hdc, labelLeft, labelTop, syscall.StringToUTF16Ptr(label), int32(len(label)))
	win.SelectObject(hdc, oldFont)
}
