// Package capture runs region-capture sessions: snapshot the virtual screen,
// let the user drag a rectangle on the overlay, and copy the crop to the
// clipboard.
package capture

import (
	"errors"
	"image"
	"log"
	"sync"
	"time"

	"snappick/src/overlay"
	"snappick/src/screenshot"
)

// DefaultMinSpan is the smallest accepted selection side in pixels.
const DefaultMinSpan = 5

// ErrNoSnapshot is returned when a session has no image to crop.
var ErrNoSnapshot = errors.New("capture session has no snapshot")

// Outcome is how a session ended.
type Outcome int

const (
	// Completed means the crop reached the clipboard.
	Completed Outcome = iota
	// Cancelled covers ESC, a too-small selection and a forced Stop.
	Cancelled
	// Failed means the snapshot, crop or clipboard write failed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Overlay is the selection window. Its methods run on the UI thread.
type Overlay interface {
	Open(bounds image.Rectangle, h overlay.Handler) error
	Redraw()
	Close()
}

// Dispatcher runs fn on the UI thread.
type Dispatcher interface {
	Post(fn func())
}

// ClipboardWriter receives the cropped image.
type ClipboardWriter interface {
	WriteImage(img image.Image) error
}

// Notifier shows the transient "captured" toast.
type Notifier interface {
	Show(title, text string, d time.Duration)
}

// Worker runs fn off the UI thread. Submit reports false when busy.
type Worker interface {
	Submit(fn func()) bool
}

// SnapshotFunc captures the whole virtual screen.
type SnapshotFunc func() (*screenshot.Snapshot, error)

// Options wires a Service. Snapshot, Overlay, UI and Clipboard are required.
// Without a Worker the clipboard write runs on the UI thread.
type Options struct {
	Snapshot       SnapshotFunc
	Overlay        Overlay
	UI             Dispatcher
	Clipboard      ClipboardWriter
	Notifier       Notifier
	Worker         Worker
	MinSpan        int
	NotifyDuration time.Duration
	// OnEnded is called once per session that Start opened or tried to open,
	// except sessions ended by Stop. id is the value Start returned.
	OnEnded func(id uint64, o Outcome)
}

// Service owns at most one capture session at a time.
type Service struct {
	opts Options

	mu      sync.Mutex
	current *Session
	lastID  uint64
	minSpan int
	notify  time.Duration
}

func NewService(opts Options) *Service {
	if opts.MinSpan <= 0 {
		opts.MinSpan = DefaultMinSpan
	}
	if opts.NotifyDuration <= 0 {
		opts.NotifyDuration = 3 * time.Second
	}
	return &Service{opts: opts, minSpan: opts.MinSpan, notify: opts.NotifyDuration}
}

// SetMinSpan changes the minimum selection side for future sessions.
func (s *Service) SetMinSpan(n int) {
	if n <= 0 {
		n = DefaultMinSpan
	}
	s.mu.Lock()
	s.minSpan = n
	s.mu.Unlock()
}

// SetNotifyDuration changes how long the success toast stays visible.
func (s *Service) SetNotifyDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.notify = d
	s.mu.Unlock()
}

// Active reports whether a session is open.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Start snapshots the screen and opens the overlay, returning the session id
// that OnEnded will report. Starting while a session is active does nothing
// and returns the active session's id.
func (s *Service) Start() uint64 {
	s.mu.Lock()
	if s.current != nil {
		id := s.current.id
		s.mu.Unlock()
		log.Printf("CAPTURE: session %d already active", id)
		return id
	}
	s.lastID++
	sess := &Session{svc: s, id: s.lastID, minSpan: s.minSpan}
	s.current = sess
	s.mu.Unlock()

	snap, err := s.opts.Snapshot()
	if err != nil || snap == nil || snap.Image == nil {
		log.Printf("CAPTURE: snapshot failed: %v", err)
		s.finish(sess, Failed)
		return sess.id
	}
	sess.snapshot = snap
	log.Printf("CAPTURE: snapshot %v taken", snap.ScreenBounds())

	s.opts.UI.Post(func() {
		if !s.isCurrent(sess) {
			return
		}
		if err := s.opts.Overlay.Open(snap.ScreenBounds(), sess); err != nil {
			log.Printf("CAPTURE: failed to open overlay: %v", err)
			s.finish(sess, Failed)
		}
	})
	return sess.id
}

// Stop closes the overlay of the active session without producing output.
// Stopping with no active session does nothing.
func (s *Service) Stop() {
	s.mu.Lock()
	sess := s.current
	s.current = nil
	s.mu.Unlock()
	if sess == nil {
		return
	}
	log.Printf("CAPTURE: stopping active session")
	s.opts.UI.Post(func() {
		s.opts.Overlay.Close()
		sess.release()
	})
}

func (s *Service) isCurrent(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current == sess
}

// finish ends sess if it is still current. It runs on the UI thread, except
// for a failed snapshot, which never reached the overlay.
func (s *Service) finish(sess *Session, o Outcome) {
	s.mu.Lock()
	if s.current != sess {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.mu.Unlock()

	if o != Failed || sess.snapshot != nil {
		s.opts.Overlay.Close()
	}
	sess.release()
	log.Printf("CAPTURE: session %d %s", sess.id, o)
	if s.opts.OnEnded != nil {
		s.opts.OnEnded(sess.id, o)
	}
}

func (s *Service) deliver(sess *Session, region screenshot.Region) {
	img, err := sess.crop(region)
	if err != nil {
		log.Printf("CAPTURE: crop %+v failed: %v", region, err)
		s.finish(sess, Failed)
		return
	}
	job := func() {
		err := s.opts.Clipboard.WriteImage(img)
		s.opts.UI.Post(func() { s.delivered(sess, region, err) })
	}
	if s.opts.Worker == nil {
		job()
		return
	}
	if !s.opts.Worker.Submit(job) {
		log.Printf("CAPTURE: clipboard worker busy, dropping %dx%d region", region.Width, region.Height)
		s.finish(sess, Failed)
	}
}

// delivered runs on the UI thread once the clipboard write returned.
func (s *Service) delivered(sess *Session, region screenshot.Region, err error) {
	if err != nil {
		log.Printf("CAPTURE: clipboard write failed: %v", err)
		s.finish(sess, Failed)
		return
	}
	log.Printf("CAPTURE: copied %dx%d region at %d,%d", region.Width, region.Height, region.X, region.Y)
	if !s.isCurrent(sess) {
		return
	}
	if s.opts.Notifier != nil {
		s.mu.Lock()
		d := s.notify
		s.mu.Unlock()
		s.opts.Notifier.Show("Screenshot captured", "Image copied to clipboard", d)
	}
	s.finish(sess, Completed)
}
