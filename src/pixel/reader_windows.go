//go:build windows

package pixel

import (
	"errors"
	"image"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

const clrInvalid = 0xFFFFFFFF

var (
	gdi32        = windows.NewLazySystemDLL("gdi32.dll")
	procGetPixel = gdi32.NewProc("GetPixel")
)

type windowsReader struct{}

func newPlatformReader() Reader { return windowsReader{} }

func (windowsReader) CursorPos() (image.Point, error) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return image.Point{}, errors.New("GetCursorPos failed")
	}
	return image.Pt(int(pt.X), int(pt.Y)), nil
}

// PixelAt reads from the whole-screen DC. The DC is acquired per call and
// released immediately so a failed read never leaks a handle.
func (windowsReader) PixelAt(p image.Point) (Color, error) {
	hdc := win.GetDC(0)
	if hdc == 0 {
		return Color{}, errors.New("GetDC failed")
	}
	defer win.ReleaseDC(0, hdc)

	ref, _, _ := procGetPixel.Call(uintptr(hdc), uintptr(int32(p.X)), uintptr(int32(p.Y)))
	if uint32(ref) == clrInvalid {
		return Color{}, errors.New("GetPixel returned CLR_INVALID")
	}
	return FromCOLORREF(uint32(ref)), nil
}
