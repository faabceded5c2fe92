// Package logutil routes the standard logger to a size-rotated file, or
// discards it when file logging is off.
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
)

const (
	DefaultFile        = "snappick_debug.log"
	DefaultMaxSizeMB   = 10
	DefaultMaxArchives = 3
)

// Options controls the log destination. Zero values take the defaults.
type Options struct {
	Enabled     bool
	Path        string
	MaxSizeMB   int
	MaxArchives int
}

// Setup points the standard logger at the file described by opts. A tray app
// has no console, so a disabled or unopenable log is discarded.
func Setup(opts Options) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !opts.Enabled {
		log.SetOutput(io.Discard)
		return
	}
	w, err := open(newRotator(opts))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(w)
}

// rotator keeps path plus archives path.1 (newest) to path.N (oldest).
type rotator struct {
	path     string
	maxBytes int64
	archives int
}

func newRotator(opts Options) rotator {
	r := rotator{path: opts.Path, maxBytes: int64(opts.MaxSizeMB) << 20, archives: opts.MaxArchives}
	if r.path == "" {
		r.path = DefaultFile
	}
	if opts.MaxSizeMB <= 0 {
		r.maxBytes = DefaultMaxSizeMB << 20
	}
	if r.archives <= 0 {
		r.archives = DefaultMaxArchives
	}
	return r
}

func (r rotator) archiveName(n int) string { return fmt.Sprintf("%s.%d", r.path, n) }

// rotate shifts the archives when the current file has outgrown maxBytes.
// The oldest archive is dropped.
func (r rotator) rotate() {
	st, err := os.Stat(r.path)
	if err != nil || st.Size() <= r.maxBytes {
		return
	}
	_ = os.Remove(r.archiveName(r.archives))
	for i := r.archives - 1; i >= 1; i-- {
		_ = os.Rename(r.archiveName(i), r.archiveName(i+1))
	}
	_ = os.Rename(r.path, r.archiveName(1))
}

type rotatingWriter struct {
	r rotator
	f *os.File
}

func open(r rotator) (*rotatingWriter, error) {
	r.rotate()
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	return &rotatingWriter{r: r, f: f}, nil
}

// Write is serialized by the standard logger.
func (w *rotatingWriter) Write(p []byte) (int, error) {
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.r.maxBytes {
		_ = w.f.Close()
		w.r.rotate()
		f, err := os.OpenFile(w.r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return 0, err
		}
		w.f = f
	}
	return w.f.Write(p)
}
