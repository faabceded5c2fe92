package pixel

import (
	"fmt"
	"image/color"
)

// Color is one sampled screen pixel. Values are immutable once created.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// FromCOLORREF decodes a Win32 COLORREF (0x00BBGGRR).
func FromCOLORREF(ref uint32) Color {
	return Color{
		R: uint8(ref & 0xFF),
		G: uint8((ref >> 8) & 0xFF),
		B: uint8((ref >> 16) & 0xFF),
	}
}

// COLORREF encodes the color for GDI brushes.
func (c Color) COLORREF() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16
}

// Hex returns the upper-case #RRGGBB form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Label is the text shown next to the swatch.
func (c Color) Label() string {
	return fmt.Sprintf("RGB: %d, %d, %d | HEX: %s", c.R, c.G, c.B, c.Hex())
}

func (c Color) String() string { return c.Hex() }

// RGBA converts to an opaque image/color value.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}
