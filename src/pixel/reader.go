package pixel

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnsupported is returned by readers on platforms without a screen DC.
var ErrUnsupported = errors.New("pixel sampling not supported on this platform")

// Reader reads the pointer position and the screen pixel under it.
type Reader interface {
	CursorPos() (image.Point, error)
	PixelAt(p image.Point) (Color, error)
}

// NewReader returns the platform reader.
func NewReader() Reader { return newPlatformReader() }

// UnderCursor samples the pixel currently beneath the pointer.
func UnderCursor(r Reader) (Color, image.Point, error) {
	p, err := r.CursorPos()
	if err != nil {
		return Color{}, image.Point{}, fmt.Errorf("cursor position: %w", err)
	}
	c, err := r.PixelAt(p)
	if err != nil {
		return Color{}, p, fmt.Errorf("pixel at %d,%d: %w", p.X, p.Y, err)
	}
	return c, p, nil
}
