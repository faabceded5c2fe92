// Package hotkey listens for a global key combination through a low-level
// keyboard hook.
package hotkey

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

var hookMu sync.Mutex

// Listen starts a hook goroutine that invokes callback each time every key
// of combo (for example "Ctrl+Alt+S") is held down. The returned stop
// function ends the hook.
func Listen(combo string, callback func()) (stop func(), err error) {
	m, err := newMatcher(combo)
	if err != nil {
		return nil, err
	}
	log.Printf("HOTKEY: listening for %s", combo)

	hookMu.Lock()
	evChan := gohook.Start()
	hookMu.Unlock()
	if evChan == nil {
		return nil, fmt.Errorf("hotkey %q: gohook.Start returned nil channel", combo)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("HOTKEY: panic in hook goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				if m.press(ev.Rawcode) {
					log.Printf("HOTKEY: %s activated", combo)
					if callback != nil {
						callback()
					}
				}
			case gohook.KeyUp:
				m.release(ev.Rawcode)
			}
		}
		log.Printf("HOTKEY: event channel closed")
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			hookMu.Lock()
			gohook.End()
			hookMu.Unlock()
		})
	}, nil
}

// keyState tracks each physical key behind a name, so releasing right Ctrl
// leaves a held left Ctrl counting.
type keyState struct {
	name     string
	rawcodes []uint16
	down     []bool
}

func (k *keyState) held() bool {
	for _, d := range k.down {
		if d {
			return true
		}
	}
	return false
}

// matcher tracks which keys of a combination are currently down.
type matcher struct {
	mu   sync.Mutex
	keys []keyState
}

func newMatcher(combo string) (*matcher, error) {
	names := parseHotkey(combo)
	m := &matcher{}
	for _, name := range names {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("hotkey %q: unknown key %q", combo, name)
		}
		m.keys = append(m.keys, keyState{name: name, rawcodes: codes, down: make([]bool, len(codes))})
	}
	if len(m.keys) == 0 {
		return nil, fmt.Errorf("hotkey %q: no keys", combo)
	}
	return m, nil
}

// press marks raw as down and reports whether the whole combination is now
// held. A completed combination resets so holding it fires once.
func (m *matcher) press(raw uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(raw, true)
	for i := range m.keys {
		if !m.keys[i].held() {
			return false
		}
	}
	for i := range m.keys {
		clear(m.keys[i].down)
	}
	return true
}

func (m *matcher) release(raw uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(raw, false)
}

func (m *matcher) set(raw uint16, down bool) {
	for i := range m.keys {
		for j, code := range m.keys[i].rawcodes {
			if code == raw {
				m.keys[i].down[j] = down
			}
		}
	}
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "cmd", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

var specialKeys = map[string][]uint16{
	// modifiers: left and right variants
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"win":   {91, 92},   // VK_LWIN, VK_RWIN
	"cmd":   {91, 92},
	"super": {91, 92},

	"space":       {32},
	"enter":       {13},
	"return":      {13},
	"esc":         {27},
	"escape":      {27},
	"tab":         {9},
	"backspace":   {8},
	"delete":      {46},
	"del":         {46},
	"insert":      {45},
	"ins":         {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pgup":        {33},
	"pagedown":    {34},
	"pgdn":        {34},
	"left":        {37},
	"up":          {38},
	"right":       {39},
	"down":        {40},
	"printscreen": {44},
	"prtsc":       {44},
}

// keyNameToRawcodes maps a key name to its Windows virtual-key codes.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := specialKeys[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		switch c := keyName[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65} // VK 0x41-0x5A
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48} // VK 0x30-0x39
		}
	}
	if rest, ok := strings.CutPrefix(keyName, "f"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)} // VK_F1 = 112
		}
	}
	return nil
}
