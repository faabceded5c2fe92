//go:build !windows

package pixel

import "image"

type stubReader struct{}

func newPlatformReader() Reader { return stubReader{} }

func (stubReader) CursorPos() (image.Point, error) { return image.Point{}, ErrUnsupported }

func (stubReader) PixelAt(image.Point) (Color, error) { return Color{}, ErrUnsupported }
