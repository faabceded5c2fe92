package clipboard

import (
	"errors"
	"image"
	"sync"

	"golang.design/x/clipboard"

	"snappick/src/screenshot"
)

var (
	writeMu sync.Mutex
	ready   bool
)

// ErrNotInitialized is returned when Init was not called or failed.
var ErrNotInitialized = errors.New("clipboard not initialized")

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// Writer publishes images to the system clipboard.
type Writer struct{}

// WriteImage places img on the clipboard. The library takes PNG bytes and
// publishes the platform bitmap format from them.
func (Writer) WriteImage(img image.Image) error {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrNotInitialized
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}
