// Package eventloop is the mode coordinator. One goroutine owns the mode and
// processes menu actions, sampled colors, capture results and config reloads
// one at a time.
package eventloop

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"snappick/src/capture"
	"snappick/src/config"
	"snappick/src/pixel"
)

// Mode is the active tool. Exactly one is active at a time.
type Mode int32

const (
	Sampling Mode = iota
	Capturing
)

func (m Mode) String() string {
	if m == Capturing {
		return "capturing"
	}
	return "sampling"
}

// Action is a user request from the tray, the hotkey or a second launch.
type Action int

const (
	ActionColorPick Action = iota
	ActionScreenshot
	ActionToggleAutostart
	ActionExit
)

type Sampler interface {
	Start()
	Stop()
	SetInterval(d time.Duration)
}

// Capturer runs capture sessions. Start returns the id later passed to
// CaptureEnded.
type Capturer interface {
	Start() uint64
	Stop()
	SetMinSpan(n int)
	SetNotifyDuration(d time.Duration)
}

type Display interface {
	Show()
	Hide()
	UpdateColor(c pixel.Color)
}

// Menu mirrors state in the tray check marks.
type Menu interface {
	SetMode(colorPick bool)
	SetAutostart(on bool)
}

type Autostart interface {
	Enabled() bool
	Toggle() bool
}

// Options wires a Loop. Menu and Autostart may be nil.
type Options struct {
	Sampler   Sampler
	Capturer  Capturer
	Display   Display
	Menu      Menu
	Autostart Autostart
	// OnExit runs on the loop goroutine after everything is stopped.
	OnExit func()
}

type captureEnd struct {
	id      uint64
	outcome capture.Outcome
}

// Loop is the single-threaded coordinator for mode switches.
type Loop struct {
	opts Options
	mode atomic.Int32
	// session is the id of the capture started on the last entry to
	// Capturing. Only the loop goroutine touches it.
	session uint64

	actions chan Action
	colors  chan pixel.Color
	ended   chan captureEnd
	configs chan *config.Config
	done    chan struct{}
}

func New(opts Options) *Loop {
	return &Loop{
		opts:    opts,
		actions: make(chan Action, 8),
		colors:  make(chan pixel.Color, 4),
		ended:   make(chan captureEnd, 4),
		configs: make(chan *config.Config, 1),
		done:    make(chan struct{}),
	}
}

// Mode returns the current mode.
func (l *Loop) Mode() Mode { return Mode(l.mode.Load()) }

// Post queues a user action. It blocks only while the queue is full and the
// loop is still running.
func (l *Loop) Post(a Action) {
	select {
	case l.actions <- a:
	case <-l.done:
	}
}

// ColorSampled queues a sampled color, dropping it when the queue is full.
func (l *Loop) ColorSampled(c pixel.Color) {
	select {
	case l.colors <- c:
	default:
	}
}

// CaptureEnded reports the end of capture session id. It never blocks, so it
// is safe to call from the loop goroutine itself.
func (l *Loop) CaptureEnded(id uint64, o capture.Outcome) {
	e := captureEnd{id: id, outcome: o}
	select {
	case l.ended <- e:
	case <-l.done:
	default:
		go func() {
			select {
			case l.ended <- e:
			case <-l.done:
			}
		}()
	}
}

// ConfigChanged queues a reloaded config; only the latest one is kept.
func (l *Loop) ConfigChanged(cfg *config.Config) {
	for {
		select {
		case l.configs <- cfg:
			return
		default:
		}
		select {
		case <-l.configs:
		default:
		}
	}
}

// Run starts in Sampling and processes events until ctx is cancelled or an
// Exit action arrives.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	if l.opts.Menu != nil && l.opts.Autostart != nil {
		l.opts.Menu.SetAutostart(l.opts.Autostart.Enabled())
	}
	l.enterSampling()

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return ctx.Err()
		case a := <-l.actions:
			if a == ActionExit {
				log.Printf("UI: exit requested")
				l.shutdown()
				if l.opts.OnExit != nil {
					l.opts.OnExit()
				}
				return nil
			}
			l.handleAction(a)
		case c := <-l.colors:
			if l.Mode() == Sampling {
				l.opts.Display.UpdateColor(c)
			}
		case e := <-l.ended:
			if e.id != l.session {
				log.Printf("UI: ignoring %s from stale capture %d", e.outcome, e.id)
				continue
			}
			log.Printf("UI: capture %d %s", e.id, e.outcome)
			if l.Mode() == Capturing {
				l.enterSampling()
			}
		case cfg := <-l.configs:
			l.applyConfig(cfg)
		}
	}
}

func (l *Loop) handleAction(a Action) {
	switch a {
	case ActionColorPick:
		l.enterSampling()
	case ActionScreenshot:
		l.enterCapturing()
	case ActionToggleAutostart:
		if l.opts.Autostart == nil {
			return
		}
		on := l.opts.Autostart.Toggle()
		if l.opts.Menu != nil {
			l.opts.Menu.SetAutostart(on)
		}
	}
}

// enterSampling stops any capture before sampling resumes. Re-entering
// Sampling re-applies the same idempotent steps.
func (l *Loop) enterSampling() {
	l.opts.Capturer.Stop()
	l.mode.Store(int32(Sampling))
	l.opts.Sampler.Start()
	l.opts.Display.Show()
	if l.opts.Menu != nil {
		l.opts.Menu.SetMode(true)
	}
}

func (l *Loop) enterCapturing() {
	l.opts.Sampler.Stop()
	l.opts.Display.Hide()
	l.mode.Store(int32(Capturing))
	l.drainColors()
	if l.opts.Menu != nil {
		l.opts.Menu.SetMode(false)
	}
	l.session = l.opts.Capturer.Start()
}

func (l *Loop) drainColors() {
	for {
		select {
		case <-l.colors:
		default:
			return
		}
	}
}

func (l *Loop) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	l.opts.Sampler.SetInterval(cfg.SampleInterval)
	l.opts.Capturer.SetMinSpan(cfg.MinSelectionPx)
	l.opts.Capturer.SetNotifyDuration(cfg.NotifyDuration)
	log.Printf("UI: config applied (interval %v, min selection %dpx)", cfg.SampleInterval, cfg.MinSelectionPx)
}

func (l *Loop) shutdown() {
	l.opts.Sampler.Stop()
	l.opts.Capturer.Stop()
	l.opts.Display.Hide()
}
