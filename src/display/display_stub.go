//go:build !windows

package display

import (
	"image"
	"log"

	"snappick/src/pixel"
)

// logPlatform stands in for the native window off Windows.
type logPlatform struct{}

func newPlatform(func()) (platform, error) { return logPlatform{}, nil }

func (logPlatform) show() error { return nil }

func (logPlatform) hide() {}

func (logPlatform) setColor(c pixel.Color) { log.Printf("DISPLAY: %s", c.Label()) }

func (logPlatform) moveTo(image.Point) error { return nil }

func (logPlatform) workArea() (image.Rectangle, error) {
	return image.Rect(0, 0, 1920, 1080), nil
}
