package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/kbinani/screenshot"
)

// ErrEmptyRegion is returned when a crop does not overlap the snapshot.
var ErrEmptyRegion = errors.New("region does not overlap the snapshot")

// Region is a normalized selection rectangle in snapshot pixel coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

type Point struct {
	X int
	Y int
}

// Normalize builds the rectangle spanned by two drag corners. The result
// always has a non-negative size and its origin at the minimum corner.
func Normalize(a, b Point) Region {
	return Region{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  abs(a.X - b.X),
		Height: abs(a.Y - b.Y),
	}
}

// Rect converts the region to an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// AtLeast reports whether both sides are at least n pixels.
func (r Region) AtLeast(n int) bool {
	return r.Width >= n && r.Height >= n
}

// Snapshot is one capture of the whole virtual screen. Image pixel (0,0)
// corresponds to screen coordinate Origin.
type Snapshot struct {
	Image  *image.RGBA
	Origin image.Point
}

// ScreenBounds returns the snapshot rectangle in screen coordinates.
func (s *Snapshot) ScreenBounds() image.Rectangle {
	if s == nil || s.Image == nil {
		return image.Rectangle{}
	}
	return s.Image.Bounds().Sub(s.Image.Bounds().Min).Add(s.Origin)
}

// DisplayBounds returns the bounds of each active display in virtual-screen
// coordinates, primary first.
func DisplayBounds() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	bounds := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		bounds = append(bounds, screenshot.GetDisplayBounds(i))
	}
	return bounds
}

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	displays := DisplayBounds()
	if len(displays) == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := displays[0]
	for _, b := range displays[1:] {
		union = union.Union(b)
	}
	return union, nil
}

// Capture snapshots the entire virtual screen across all active displays.
func Capture() (*Snapshot, error) {
	union, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("failed to capture virtual screen: %w", err)
	}
	return &Snapshot{Image: img, Origin: union.Min}, nil
}

// Crop copies region out of src into a new image anchored at (0,0). The
// region is clipped to the source bounds.
func Crop(src *image.RGBA, region Region) (*image.RGBA, error) {
	if src == nil {
		return nil, errors.New("nil source image")
	}
	b := src.Bounds()
	r := region.Rect().Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, ErrEmptyRegion
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
