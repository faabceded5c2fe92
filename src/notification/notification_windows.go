//go:build windows

package notification

import (
	"errors"
	"log"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	user32            = windows.NewLazySystemDLL("user32.dll")
	procDrawText      = user32.NewProc("DrawTextW")
	procSetTimer      = user32.NewProc("SetTimer")
	procKillTimer     = user32.NewProc("KillTimer")
	procSystemParamsW = user32.NewProc("SystemParametersInfoW")
	classRegistered   bool
	currentPopupHwnd  win.HWND
	popupTitle        string
	popupText         string
)

const (
	popupClass     = "SnapPickNotificationClass"
	popupWidth     = 280
	popupHeight    = 70
	popupMargin    = 20
	timerClose     = 1
	spiGetWorkArea = 0x0030
	dtWordBreak    = 0x00000010
	dtNoPrefix     = 0x00000800
	colorWindow    = 5
	defaultGUIFont = 17
)

func registerPopupClass() error {
	if classRegistered {
		return nil
	}
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(wndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
		HbrBackground: win.HBRUSH(colorWindow + 1),
		LpszClassName: syscall.StringToUTF16Ptr(popupClass),
	}
	if atom := win.RegisterClassEx(&wc); atom == 0 {
		return errors.New("failed to register popup window class")
	}
	classRegistered = true
	return nil
}

// showPopup runs on the UI thread; its message loop drives the timer.
func showPopup(title, text string, d time.Duration) error {
	if err := registerPopupClass(); err != nil {
		return err
	}
	if currentPopupHwnd != 0 {
		closePopup(currentPopupHwnd)
	}
	popupTitle, popupText = title, text

	x, y := int32(popupMargin), int32(win.GetSystemMetrics(win.SM_CYSCREEN))-popupHeight-popupMargin
	var work win.RECT
	if ret, _, _ := procSystemParamsW.Call(spiGetWorkArea, 0, uintptr(unsafe.Pointer(&work)), 0); ret != 0 {
		x = work.Left + popupMargin
		y = work.Bottom - popupHeight - popupMargin
	}

	// No-activate toolwindow so the popup never steals focus.
	hwnd := win.CreateWindowEx(
		win.WS_EX_NOACTIVATE|win.WS_EX_TOOLWINDOW|win.WS_EX_TOPMOST|win.WS_EX_CLIENTEDGE,
		syscall.StringToUTF16Ptr(popupClass),
		syscall.StringToUTF16Ptr(title),
		win.WS_POPUP,
		x, y, popupWidth, popupHeight,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return errors.New("CreateWindowEx failed")
	}
	currentPopupHwnd = hwnd
	win.ShowWindow(hwnd, win.SW_SHOWNOACTIVATE)
	win.UpdateWindow(hwnd)
	procSetTimer.Call(uintptr(hwnd), timerClose, uintptr(d/time.Millisecond), 0)
	log.Printf("Popup: shown hwnd=%v for %v", hwnd, d)
	return nil
}

func closePopup(hwnd win.HWND) {
	procKillTimer.Call(uintptr(hwnd), timerClose)
	win.DestroyWindow(hwnd)
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		old := win.SelectObject(hdc, win.GetStockObject(defaultGUIFont))
		win.SetBkMode(hdc, win.TRANSPARENT)
		rect := win.RECT{Left: 10, Top: 8, Right: popupWidth - 14, Bottom: popupHeight - 8}
		body, _ := syscall.UTF16PtrFromString(popupTitle + "\n" + popupText)
		procDrawText.Call(uintptr(hdc), uintptr(unsafe.Pointer(body)), uintptr(^uint32(0)),
			uintptr(unsafe.Pointer(&rect)), dtWordBreak|dtNoPrefix)
		win.SelectObject(hdc, old)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_TIMER:
		if wParam == timerClose {
			closePopup(hwnd)
			return 0
		}

	case win.WM_LBUTTONDOWN, win.WM_RBUTTONDOWN:
		closePopup(hwnd)
		return 0

	case win.WM_DESTROY:
		if currentPopupHwnd == hwnd {
			currentPopupHwnd = 0
		}
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
