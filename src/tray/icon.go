package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 32

var (
	iconFrame  = color.RGBA{0x00, 0x78, 0xD4, 0xFF}
	iconDrop   = color.RGBA{0xE8, 0x3E, 0x3E, 0xFF}
	iconShadow = color.RGBA{0x33, 0x33, 0x33, 0xFF}
)

// Icon returns the tray icon: a dashed selection frame with a color drop,
// PNG-encoded inside an ICO container.
func Icon() []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	// dashed selection frame
	for i := 3; i < 26; i++ {
		if i%4 == 3 {
			continue
		}
		for _, w := range []int{0, 1} {
			img.SetRGBA(i, 3+w, iconFrame)
			img.SetRGBA(i, 22+w, iconFrame)
		}
		if i < 23 {
			for _, w := range []int{0, 1} {
				img.SetRGBA(3+w, i, iconFrame)
				img.SetRGBA(24+w, i, iconFrame)
			}
		}
	}

	// color drop in the lower-right corner
	cx, cy, r := 23, 24, 7
	for y := cy - r - 1; y <= cy+r+1; y++ {
		for x := cx - r - 1; x <= cx+r+1; x++ {
			dx, dy := x-cx, y-cy
			d := dx*dx + dy*dy
			switch {
			case d <= r*r:
				img.SetRGBA(x, y, iconDrop)
			case d <= (r+1)*(r+1):
				img.SetRGBA(x, y, iconShadow)
			}
		}
	}

	var payload bytes.Buffer
	if err := png.Encode(&payload, img); err != nil {
		return nil
	}
	return wrapICO(payload.Bytes(), iconSize)
}

// wrapICO builds a single-image ICO file around a PNG payload.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // count
	// ICONDIRENTRY
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bpp
	binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}
