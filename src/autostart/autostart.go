// Package autostart toggles the per-user "Run" registry entry that starts
// the application at logon.
package autostart

import (
	"errors"
	"fmt"
	"log"
	"os"
)

// RunKeyPath is relative to HKEY_CURRENT_USER.
const RunKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

var (
	ErrUnsupported = errors.New("autostart: unsupported platform")
	errNotExist    = errors.New("autostart: value does not exist")
)

// valueStore is a string-valued key: the Run key on Windows, a map in tests.
type valueStore interface {
	get(name string) (string, error)
	set(name, value string) error
	remove(name string) error
}

// Manager reads and writes the autostart entry for one application name.
type Manager struct {
	name  string
	exe   func() (string, error)
	store valueStore
}

func New(appName string) *Manager {
	return &Manager{name: appName, exe: os.Executable, store: newRunKeyStore()}
}

// Enabled reports whether the entry exists. Read failures count as disabled.
func (m *Manager) Enabled() bool {
	_, err := m.store.get(m.name)
	if err != nil {
		if !errors.Is(err, errNotExist) {
			log.Printf("AUTOSTART: read %q skipped: %v", m.name, err)
		}
		return false
	}
	return true
}

// SetEnabled writes or deletes the entry. Removing an absent entry succeeds.
func (m *Manager) SetEnabled(on bool) error {
	if !on {
		if err := m.store.remove(m.name); err != nil && !errors.Is(err, errNotExist) {
			return fmt.Errorf("remove %q: %w", m.name, err)
		}
		return nil
	}
	path, err := m.exe()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := m.store.set(m.name, path); err != nil {
		return fmt.Errorf("set %q: %w", m.name, err)
	}
	return nil
}

// Toggle flips the entry and returns the resulting state. A failed write is
// logged and the unchanged state is returned.
func (m *Manager) Toggle() bool {
	want := !m.Enabled()
	if err := m.SetEnabled(want); err != nil {
		log.Printf("AUTOSTART: toggle skipped: %v", err)
		return !want
	}
	log.Printf("AUTOSTART: enabled=%v", want)
	return want
}
