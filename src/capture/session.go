package capture

import (
	"image"
	"log"

	"snappick/src/screenshot"
)

// Session is one snapshot plus one drag gesture. Its handler methods are
// called by the overlay on the UI thread.
type Session struct {
	svc      *Service
	id       uint64
	snapshot *screenshot.Snapshot
	minSpan  int

	selecting bool
	start     screenshot.Point
	end       screenshot.Point
}

func toPoint(p image.Point) screenshot.Point { return screenshot.Point{X: p.X, Y: p.Y} }

func (s *Session) PointerDown(p image.Point) {
	s.start = toPoint(p)
	s.end = s.start
	s.selecting = true
}

func (s *Session) PointerMove(p image.Point) {
	if !s.selecting {
		return
	}
	s.end = toPoint(p)
	s.svc.opts.Overlay.Redraw()
}

func (s *Session) PointerUp(p image.Point) {
	if !s.selecting {
		return
	}
	s.selecting = false
	s.end = toPoint(p)
	if !s.svc.isCurrent(s) {
		return
	}

	region := screenshot.Normalize(s.start, s.end)
	if !region.AtLeast(s.minSpan) {
		log.Printf("CAPTURE: selection %dx%d below %dpx, ignoring", region.Width, region.Height, s.minSpan)
		s.svc.finish(s, Cancelled)
		return
	}
	s.svc.deliver(s, region)
}

func (s *Session) Cancel() {
	log.Printf("CAPTURE: cancelled by user")
	s.svc.finish(s, Cancelled)
}

// Selection returns the rectangle being dragged.
func (s *Session) Selection() (image.Rectangle, bool) {
	if !s.selecting {
		return image.Rectangle{}, false
	}
	return screenshot.Normalize(s.start, s.end).Rect(), true
}

func (s *Session) crop(region screenshot.Region) (*image.RGBA, error) {
	if s.snapshot == nil || s.snapshot.Image == nil {
		return nil, ErrNoSnapshot
	}
	return screenshot.Crop(s.snapshot.Image, region)
}

// release drops the snapshot so its pixels can be collected.
func (s *Session) release() {
	s.snapshot = nil
	s.selecting = false
}
