//go:build !windows

package overlay

import "image"

type platformState struct{}

func (platformState) open() bool { return false }

// Open always fails off Windows.
func (w *Window) Open(bounds image.Rectangle, h Handler) error { return ErrUnsupported }

func (w *Window) Redraw() {}

func (w *Window) Close() {}
