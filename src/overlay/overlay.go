// Package overlay implements the full-screen selection window shown during a
// capture session. All methods must be called on the UI thread.
package overlay

import (
	"errors"
	"image"
)

// ErrUnsupported is returned by Open on platforms without an overlay window.
var ErrUnsupported = errors.New("selection overlay not supported on this platform")

// Handler receives pointer and keyboard input in overlay client coordinates,
// which equal snapshot pixel coordinates. It is invoked on the UI thread.
type Handler interface {
	PointerDown(p image.Point)
	PointerMove(p image.Point)
	PointerUp(p image.Point)
	Cancel()
	// Selection returns the rectangle to outline, if a drag is in progress.
	Selection() (image.Rectangle, bool)
}

// Style describes how the overlay is drawn.
type Style struct {
	// Alpha is the window opacity, 0-255.
	Alpha uint8
	// PenWidth is the selection outline width in pixels.
	PenWidth int
	// PenColor is the outline color as a COLORREF (0x00BBGGRR).
	PenColor uint32
}

// DefaultStyle is a 30% black veil with a red 2px outline.
var DefaultStyle = Style{Alpha: 77, PenWidth: 2, PenColor: 0x000000FF}

// Window is the single overlay window. At most one is open at a time.
type Window struct {
	style Style
	state platformState
}

func New(style Style) *Window {
	if style.PenWidth <= 0 {
		style.PenWidth = DefaultStyle.PenWidth
	}
	return &Window{style: style}
}

// IsOpen reports whether the overlay is currently shown.
func (w *Window) IsOpen() bool { return w.state.open() }

// escapeEdge turns polled key states into presses. Only a transition from up
// to down counts.
type escapeEdge struct {
	down bool
}

// prime records the state without reporting a press.
func (e *escapeEdge) prime(down bool) { e.down = down }

// observe records the state and reports whether the key was just pressed.
func (e *escapeEdge) observe(down bool) bool {
	pressed := down && !e.down
	e.down = down
	return pressed
}
