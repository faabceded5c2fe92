package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

type fakeItem struct{ checked bool }

func (f *fakeItem) Check()   { f.checked = true }
func (f *fakeItem) Uncheck() { f.checked = false }

func readyTray() (*Tray, *fakeItem, *fakeItem, *fakeItem) {
	tr := New(Config{})
	c, s, a := &fakeItem{}, &fakeItem{}, &fakeItem{}
	tr.mColor, tr.mShot, tr.mAuto = c, s, a
	tr.ready = true
	return tr, c, s, a
}

func TestSetModeMirrorsCheckMarks(t *testing.T) {
	tr, c, s, _ := readyTray()

	tr.SetMode(false)
	if c.checked || !s.checked {
		t.Errorf("capturing: color=%v screenshot=%v", c.checked, s.checked)
	}
	tr.SetMode(true)
	if !c.checked || s.checked {
		t.Errorf("sampling: color=%v screenshot=%v", c.checked, s.checked)
	}
}

func TestStateBeforeReadyIsApplied(t *testing.T) {
	tr := New(Config{})
	tr.SetMode(false)
	tr.SetAutostart(true)

	c, s, a := &fakeItem{}, &fakeItem{}, &fakeItem{}
	tr.mu.Lock()
	tr.mColor, tr.mShot, tr.mAuto = c, s, a
	tr.ready = true
	tr.applyLocked()
	tr.mu.Unlock()

	if c.checked || !s.checked || !a.checked {
		t.Errorf("color=%v screenshot=%v autostart=%v", c.checked, s.checked, a.checked)
	}
}

func TestSetAutostart(t *testing.T) {
	tr, _, _, a := readyTray()
	tr.SetAutostart(true)
	if !a.checked {
		t.Error("expected autostart checked")
	}
	tr.SetAutostart(false)
	if a.checked {
		t.Error("expected autostart unchecked")
	}
}

func TestDefaultTooltip(t *testing.T) {
	if got := New(Config{}).cfg.Tooltip; got != DefaultTooltip {
		t.Errorf("tooltip = %q", got)
	}
}

func TestIconIsICOWithPNGPayload(t *testing.T) {
	data := Icon()
	if len(data) < 22 {
		t.Fatalf("icon too short: %d bytes", len(data))
	}
	if typ := binary.LittleEndian.Uint16(data[2:4]); typ != 1 {
		t.Errorf("type = %d, want 1", typ)
	}
	if n := binary.LittleEndian.Uint16(data[4:6]); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	if data[6] != iconSize || data[7] != iconSize {
		t.Errorf("dimensions = %dx%d", data[6], data[7])
	}
	size := binary.LittleEndian.Uint32(data[14:18])
	offset := binary.LittleEndian.Uint32(data[18:22])
	if int(offset+size) != len(data) {
		t.Fatalf("offset %d + size %d != %d", offset, size, len(data))
	}
	img, err := png.Decode(bytes.NewReader(data[offset:]))
	if err != nil {
		t.Fatalf("payload is not PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("payload bounds %v", b)
	}
}
