//go:build !windows

package notification

import (
	"log"
	"time"
)

func showPopup(title, text string, d time.Duration) error {
	log.Printf("Popup: %s: %s (%v)", title, text, d)
	return nil
}
