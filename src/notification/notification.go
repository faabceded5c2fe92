// Package notification shows short-lived, non-activating toast popups.
package notification

import (
	"log"
	"time"
)

const DefaultDuration = 3 * time.Second

// Dispatcher runs fn on the UI thread.
type Dispatcher interface {
	Post(fn func())
}

// Toaster shows one popup at a time; a new popup replaces the current one.
type Toaster struct {
	ui   Dispatcher
	show func(title, text string, d time.Duration) error
}

func New(ui Dispatcher) *Toaster {
	return &Toaster{ui: ui, show: showPopup}
}

// Show queues a popup with title and text that closes itself after d.
// A non-positive d uses DefaultDuration.
func (t *Toaster) Show(title, text string, d time.Duration) {
	if d <= 0 {
		d = DefaultDuration
	}
	t.ui.Post(func() {
		if err := t.show(title, text, d); err != nil {
			log.Printf("Popup: failed to show %q: %v", title, err)
		}
	})
}
