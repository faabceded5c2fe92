// Package display is the small always-on-top window that shows the most
// recently sampled color. Exported methods may be called from any goroutine;
// the window itself is only touched on the UI thread.
package display

import (
	"image"
	"log"

	"snappick/src/pixel"
)

const (
	Width  = 180
	Height = 40
	Margin = 10
)

// Dispatcher runs fn on the UI thread.
type Dispatcher interface {
	Post(fn func())
}

// platform is the native window. Methods run on the UI thread only.
type platform interface {
	show() error
	hide()
	setColor(c pixel.Color)
	moveTo(p image.Point) error
	workArea() (image.Rectangle, error)
}

// Window is the color readout window.
type Window struct {
	ui      Dispatcher
	newImpl func(onReposition func()) (platform, error)

	// UI-thread state
	impl    platform
	visible bool
	failed  bool
}

func New(ui Dispatcher) *Window {
	return &Window{ui: ui, newImpl: newPlatform}
}

// Corner returns the top-left position that places a window of size in the
// bottom-right corner of work, inset by margin.
func Corner(work image.Rectangle, size image.Point, margin int) image.Point {
	return image.Pt(work.Max.X-size.X-margin, work.Max.Y-size.Y-margin)
}

// Show makes the window visible at the working-area corner.
func (w *Window) Show() {
	w.ui.Post(func() { w.showLocked() })
}

// Hide hides the window.
func (w *Window) Hide() {
	w.ui.Post(func() {
		if w.impl == nil || !w.visible {
			return
		}
		w.impl.hide()
		w.visible = false
	})
}

// UpdateColor shows the window if hidden and paints c.
func (w *Window) UpdateColor(c pixel.Color) {
	w.ui.Post(func() {
		if !w.ensure() {
			return
		}
		w.impl.setColor(c)
		if !w.visible {
			w.showLocked()
		}
	})
}

// Visible reports the UI-thread visibility flag; it is meant for tests and
// must be read on the UI thread.
func (w *Window) Visible() bool { return w.visible }

func (w *Window) ensure() bool {
	if w.impl != nil {
		return true
	}
	if w.failed {
		return false
	}
	impl, err := w.newImpl(w.reposition)
	if err != nil {
		log.Printf("DISPLAY: failed to create window: %v", err)
		w.failed = true
		return false
	}
	w.impl = impl
	return true
}

func (w *Window) showLocked() {
	if !w.ensure() {
		return
	}
	w.reposition()
	if err := w.impl.show(); err != nil {
		log.Printf("DISPLAY: show failed: %v", err)
		return
	}
	w.visible = true
}

// reposition moves the window to the working-area corner. The work area
// changes with resolution and taskbar edits, so it is read every time.
func (w *Window) reposition() {
	if w.impl == nil {
		return
	}
	work, err := w.impl.workArea()
	if err != nil {
		log.Printf("DISPLAY: working area unavailable, keeping position: %v", err)
		return
	}
	if err := w.impl.moveTo(Corner(work, image.Pt(Width, Height), Margin)); err != nil {
		log.Printf("DISPLAY: reposition failed, keeping position: %v", err)
	}
}
