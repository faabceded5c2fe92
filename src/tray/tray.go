// Package tray owns the notification-area icon and its menu.
package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"
)

const DefaultTooltip = "SnapPick - screenshot and color picker"

// Config holds the menu callbacks. Callbacks run on the tray goroutine and
// must not block.
type Config struct {
	Title             string
	Tooltip           string
	OnColorPick       func()
	OnScreenshot      func()
	OnToggleAutostart func()
	OnExit            func()
}

type checker interface {
	Check()
	Uncheck()
}

// Tray mirrors the coordinator state in its check marks. State set before
// the menu exists is applied once it is built.
type Tray struct {
	cfg Config

	mu        sync.Mutex
	ready     bool
	colorPick bool
	autostart bool
	mColor    checker
	mShot     checker
	mAuto     checker
	done      chan struct{}
	closeOnce sync.Once
}

func New(cfg Config) *Tray {
	if cfg.Tooltip == "" {
		cfg.Tooltip = DefaultTooltip
	}
	return &Tray{cfg: cfg, colorPick: true, done: make(chan struct{})}
}

// Run blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetMode checks "Color pick" when colorPick is true, "Screenshot" otherwise.
func (t *Tray) SetMode(colorPick bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.colorPick = colorPick
	t.applyLocked()
}

// SetAutostart updates the "Start with Windows" check mark.
func (t *Tray) SetAutostart(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autostart = on
	t.applyLocked()
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	if t.cfg.Title != "" {
		systray.SetTitle(t.cfg.Title)
	}
	systray.SetTooltip(t.cfg.Tooltip)

	t.mu.Lock()
	mColor := systray.AddMenuItemCheckbox("Color pick", "Show the color under the cursor", t.colorPick)
	mShot := systray.AddMenuItemCheckbox("Screenshot", "Select a region to copy", !t.colorPick)
	mAuto := systray.AddMenuItemCheckbox("Start with Windows", "Run at logon", t.autostart)
	systray.AddSeparator()
	mExit := systray.AddMenuItem("Exit", "Quit the application")
	t.mColor, t.mShot, t.mAuto = mColor, mShot, mAuto
	t.ready = true
	t.applyLocked()
	t.mu.Unlock()
	log.Printf("UI: tray ready")

	go func() {
		for {
			select {
			case <-mColor.ClickedCh:
				call(t.cfg.OnColorPick)
			case <-mShot.ClickedCh:
				call(t.cfg.OnScreenshot)
			case <-mAuto.ClickedCh:
				call(t.cfg.OnToggleAutostart)
			case <-mExit.ClickedCh:
				call(t.cfg.OnExit)
				return
			case <-t.done:
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.closeOnce.Do(func() { close(t.done) })
}

func (t *Tray) applyLocked() {
	if !t.ready {
		return
	}
	setChecked(t.mColor, t.colorPick)
	setChecked(t.mShot, !t.colorPick)
	setChecked(t.mAuto, t.autostart)
}

func setChecked(c checker, on bool) {
	if on {
		c.Check()
	} else {
		c.Uncheck()
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
