package capture

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"snappick/src/overlay"
	"snappick/src/screenshot"
)

type inlineUI struct{}

func (inlineUI) Post(fn func()) { fn() }

type fakeOverlay struct {
	opens   int
	closes  int
	redraws int
	bounds  image.Rectangle
	handler overlay.Handler
	openErr error
}

func (f *fakeOverlay) Open(b image.Rectangle, h overlay.Handler) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opens++
	f.bounds = b
	f.handler = h
	return nil
}

func (f *fakeOverlay) Redraw() { f.redraws++ }

func (f *fakeOverlay) Close() { f.closes++ }

type fakeClipboard struct {
	writes []image.Image
	err    error
}

func (f *fakeClipboard) WriteImage(img image.Image) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, img)
	return nil
}

type fakeNotifier struct{ shown int }

func (f *fakeNotifier) Show(title, text string, d time.Duration) { f.shown++ }

type harness struct {
	svc       *Service
	overlay   *fakeOverlay
	clipboard *fakeClipboard
	notifier  *fakeNotifier
	outcomes  []Outcome
	ended     []uint64
	snapshots int
	snap      *screenshot.Snapshot
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 9, A: 255})
		}
	}
	h := &harness{
		overlay:   &fakeOverlay{},
		clipboard: &fakeClipboard{},
		notifier:  &fakeNotifier{},
		snap:      &screenshot.Snapshot{Image: img, Origin: image.Pt(-100, 0)},
	}
	h.svc = NewService(Options{
		Snapshot: func() (*screenshot.Snapshot, error) {
			h.snapshots++
			return h.snap, nil
		},
		Overlay:   h.overlay,
		UI:        inlineUI{},
		Clipboard: h.clipboard,
		Notifier:  h.notifier,
		OnEnded: func(id uint64, o Outcome) {
			h.ended = append(h.ended, id)
			h.outcomes = append(h.outcomes, o)
		},
	})
	return h
}

func (h *harness) drag(from, to image.Point) {
	sel := h.overlay.handler
	sel.PointerDown(from)
	sel.PointerMove(image.Pt((from.X+to.X)/2, (from.Y+to.Y)/2))
	sel.PointerUp(to)
}

func TestStartOpensOverlayOverVirtualScreen(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()

	if !h.svc.Active() {
		t.Fatal("expected an active session")
	}
	if h.overlay.opens != 1 {
		t.Fatalf("opens = %d", h.overlay.opens)
	}
	if want := image.Rect(-100, 0, 0, 80); h.overlay.bounds != want {
		t.Fatalf("overlay bounds = %v, want %v", h.overlay.bounds, want)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	h.svc.Start()
	if h.overlay.opens != 1 || h.snapshots != 1 {
		t.Fatalf("opens=%d snapshots=%d, want 1/1", h.overlay.opens, h.snapshots)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	h.svc.Stop()
	h.svc.Stop()
	if h.overlay.closes != 1 {
		t.Fatalf("closes = %d, want 1", h.overlay.closes)
	}
	if h.svc.Active() {
		t.Fatal("session still active after Stop")
	}
	if len(h.outcomes) != 0 {
		t.Fatalf("Stop reported outcomes %v", h.outcomes)
	}
}

func TestDragCopiesCropOfSnapshot(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	h.drag(image.Pt(40, 30), image.Pt(10, 20))

	if len(h.clipboard.writes) != 1 {
		t.Fatalf("clipboard writes = %d, want 1", len(h.clipboard.writes))
	}
	got := h.clipboard.writes[0].(*image.RGBA)
	if got.Bounds() != image.Rect(0, 0, 30, 10) {
		t.Fatalf("crop bounds = %v", got.Bounds())
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			if want := h.snap.Image.RGBAAt(10+x, 20+y); got.RGBAAt(x, y) != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got.RGBAAt(x, y), want)
			}
		}
	}
	if len(h.outcomes) != 1 || h.outcomes[0] != Completed {
		t.Fatalf("outcomes = %v", h.outcomes)
	}
	if h.notifier.shown != 1 {
		t.Fatalf("notifications = %d", h.notifier.shown)
	}
	if h.overlay.closes != 1 || h.svc.Active() {
		t.Fatal("overlay should be closed after completion")
	}
	if h.overlay.redraws == 0 {
		t.Fatal("expected a redraw while dragging")
	}
}

func TestSmallSelectionProducesNoOutput(t *testing.T) {
	tests := []struct {
		name     string
		from, to image.Point
	}{
		{"click", image.Pt(10, 10), image.Pt(10, 10)},
		{"narrow", image.Pt(10, 10), image.Pt(14, 60)},
		{"short", image.Pt(10, 10), image.Pt(60, 14)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.svc.Start()
			h.drag(tt.from, tt.to)
			if len(h.clipboard.writes) != 0 {
				t.Fatal("small selection wrote to the clipboard")
			}
			if len(h.outcomes) != 1 || h.outcomes[0] != Cancelled {
				t.Fatalf("outcomes = %v, want [cancelled]", h.outcomes)
			}
			if h.notifier.shown != 0 {
				t.Fatal("small selection showed a notification")
			}
			if h.svc.Active() {
				t.Fatal("session should have ended")
			}
		})
	}
}

func TestMinimumSizeSelectionIsAccepted(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	h.drag(image.Pt(0, 0), image.Pt(5, 5))
	if len(h.clipboard.writes) != 1 {
		t.Fatalf("clipboard writes = %d, want 1", len(h.clipboard.writes))
	}
}

func TestCancelKeyProducesNoOutput(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	sel := h.overlay.handler
	sel.PointerDown(image.Pt(1, 1))
	sel.PointerMove(image.Pt(50, 50))
	sel.Cancel()
	sel.PointerUp(image.Pt(50, 50))

	if len(h.clipboard.writes) != 0 {
		t.Fatal("cancelled session wrote to the clipboard")
	}
	if len(h.outcomes) != 1 || h.outcomes[0] != Cancelled {
		t.Fatalf("outcomes = %v", h.outcomes)
	}
}

func TestMoveWithoutPressIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	sel := h.overlay.handler
	sel.PointerMove(image.Pt(30, 30))
	sel.PointerUp(image.Pt(30, 30))
	if _, ok := sel.Selection(); ok {
		t.Fatal("no selection expected without pointer-down")
	}
	if len(h.outcomes) != 0 || h.overlay.redraws != 0 {
		t.Fatalf("unexpected activity: outcomes=%v redraws=%d", h.outcomes, h.overlay.redraws)
	}
}

func TestSelectionTracksDrag(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	sel := h.overlay.handler
	sel.PointerDown(image.Pt(50, 40))
	sel.PointerMove(image.Pt(20, 60))
	r, ok := sel.Selection()
	if !ok || r != image.Rect(20, 40, 50, 60) {
		t.Fatalf("Selection() = %v, %v", r, ok)
	}
}

func TestSnapshotFailureEndsSession(t *testing.T) {
	h := newHarness(t)
	h.svc.opts.Snapshot = func() (*screenshot.Snapshot, error) { return nil, errors.New("no display") }
	h.svc.Start()
	if h.svc.Active() || h.overlay.opens != 0 {
		t.Fatal("session should not open without a snapshot")
	}
	if len(h.outcomes) != 1 || h.outcomes[0] != Failed {
		t.Fatalf("outcomes = %v", h.outcomes)
	}
}

func TestOverlayFailureEndsSession(t *testing.T) {
	h := newHarness(t)
	h.overlay.openErr = errors.New("no window")
	h.svc.Start()
	if h.svc.Active() {
		t.Fatal("session should end when the overlay cannot open")
	}
	if len(h.outcomes) != 1 || h.outcomes[0] != Failed {
		t.Fatalf("outcomes = %v", h.outcomes)
	}
}

func TestClipboardFailureIsNotCompletion(t *testing.T) {
	h := newHarness(t)
	h.clipboard.err = errors.New("clipboard busy")
	h.svc.Start()
	h.drag(image.Pt(0, 0), image.Pt(20, 20))
	if len(h.outcomes) != 1 || h.outcomes[0] != Failed {
		t.Fatalf("outcomes = %v", h.outcomes)
	}
	if h.notifier.shown != 0 {
		t.Fatal("failed write should not notify")
	}
}

func TestInputAfterStopIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	sel := h.overlay.handler
	sel.PointerDown(image.Pt(0, 0))
	h.svc.Stop()
	sel.PointerUp(image.Pt(40, 40))
	if len(h.clipboard.writes) != 0 || len(h.outcomes) != 0 {
		t.Fatalf("stopped session produced output: writes=%d outcomes=%v", len(h.clipboard.writes), h.outcomes)
	}
}

func TestSessionCanRestartAfterCompletion(t *testing.T) {
	h := newHarness(t)
	h.svc.Start()
	h.drag(image.Pt(0, 0), image.Pt(20, 20))
	h.svc.Start()
	if h.overlay.opens != 2 || !h.svc.Active() {
		t.Fatalf("opens=%d active=%v", h.overlay.opens, h.svc.Active())
	}
}

func TestSetMinSpan(t *testing.T) {
	h := newHarness(t)
	h.svc.SetMinSpan(30)
	h.svc.Start()
	h.drag(image.Pt(0, 0), image.Pt(20, 20))
	if len(h.clipboard.writes) != 0 {
		t.Fatal("20px selection should be below a 30px minimum")
	}
}

type queuedWorker struct {
	jobs   []func()
	reject bool
}

func (w *queuedWorker) Submit(fn func()) bool {
	if w.reject {
		return false
	}
	w.jobs = append(w.jobs, fn)
	return true
}

func newWorkerHarness(t *testing.T, w Worker) *harness {
	t.Helper()
	h := newHarness(t)
	opts := h.svc.opts
	opts.Worker = w
	h.svc = NewService(opts)
	return h
}

func TestWorkerDeliversBeforeCompletion(t *testing.T) {
	w := &queuedWorker{}
	h := newWorkerHarness(t, w)
	h.svc.Start()
	h.drag(image.Pt(0, 0), image.Pt(20, 20))

	if len(h.outcomes) != 0 || len(h.clipboard.writes) != 0 {
		t.Fatalf("completed before the worker ran: outcomes=%v", h.outcomes)
	}
	if !h.svc.Active() || len(w.jobs) != 1 {
		t.Fatalf("active=%v jobs=%d", h.svc.Active(), len(w.jobs))
	}
	w.jobs[0]()
	if len(h.clipboard.writes) != 1 || len(h.outcomes) != 1 || h.outcomes[0] != Completed {
		t.Fatalf("writes=%d outcomes=%v", len(h.clipboard.writes), h.outcomes)
	}
	if h.notifier.shown != 1 || h.svc.Active() {
		t.Errorf("shown=%d active=%v", h.notifier.shown, h.svc.Active())
	}
}

func TestBusyWorkerFailsSession(t *testing.T) {
	h := newWorkerHarness(t, &queuedWorker{reject: true})
	h.svc.Start()
	h.drag(image.Pt(0, 0), image.Pt(20, 20))
	if len(h.outcomes) != 1 || h.outcomes[0] != Failed {
		t.Fatalf("outcomes = %v", h.outcomes)
	}
	if len(h.clipboard.writes) != 0 {
		t.Error("rejected job wrote to the clipboard")
	}
}

func TestStopDuringDeliverySuppressesCompletion(t *testing.T) {
	w := &queuedWorker{}
	h := newWorkerHarness(t, w)
	h.svc.Start()
	h.drag(image.Pt(0, 0), image.Pt(20, 20))
	h.svc.Stop()
	w.jobs[0]()
	if len(h.outcomes) != 0 || h.notifier.shown != 0 {
		t.Errorf("outcomes=%v shown=%d after Stop", h.outcomes, h.notifier.shown)
	}
}

func TestOutcomeCarriesSessionID(t *testing.T) {
	h := newHarness(t)
	first := h.svc.Start()
	if again := h.svc.Start(); again != first {
		t.Errorf("Start while active returned %d, want %d", again, first)
	}
	h.overlay.handler.Cancel()

	second := h.svc.Start()
	if second == first {
		t.Fatalf("second session reused id %d", first)
	}
	h.drag(image.Pt(0, 0), image.Pt(20, 20))

	if len(h.ended) != 2 || h.ended[0] != first || h.ended[1] != second {
		t.Errorf("ended ids = %v, want [%d %d]", h.ended, first, second)
	}
}
