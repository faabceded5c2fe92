package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snappick/src/autostart"
	"snappick/src/capture"
	"snappick/src/clipboard"
	"snappick/src/config"
	"snappick/src/display"
	"snappick/src/eventloop"
	"snappick/src/hotkey"
	"snappick/src/logutil"
	"snappick/src/notification"
	"snappick/src/overlay"
	"snappick/src/pixel"
	"snappick/src/sampler"
	"snappick/src/screenshot"
	"snappick/src/singleinstance"
	"snappick/src/tray"
	"snappick/src/uithread"
	"snappick/src/worker"
)

const residentDetectTimeout = 300 * time.Millisecond

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(logutil.Options{
		Enabled:     cfg.EnableFileLogging,
		Path:        cfg.LogFile,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxArchives: cfg.LogMaxArchives,
	})
	log.Printf("%s starting (env file %q)", cfg.AppName, cfg.EnvPath)
	logMonitorConfiguration()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if handOffToResident(ctx, cfg.SingleInstancePort) {
		return
	}

	if err := run(ctx, cancel, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
	}
	log.Printf("%s exited", cfg.AppName)
}

// handOffToResident asks an already running instance to start a screenshot
// and reports whether one answered.
func handOffToResident(ctx context.Context, port int) bool {
	detectCtx, stop := context.WithTimeout(ctx, residentDetectTimeout)
	defer stop()
	if !singleinstance.DetectResident(detectCtx, port) {
		return false
	}
	log.Printf("Resident already listening on port %d", port)
	if err := singleinstance.Send(detectCtx, port, singleinstance.CommandScreenshot); err != nil {
		log.Printf("Hand-off to resident failed: %v", err)
	}
	return true
}

func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config) error {
	if err := clipboard.Init(); err != nil {
		log.Printf("Failed to initialize clipboard, captures will not be copied: %v", err)
	}

	ui := uithread.New()
	go func() {
		if err := ui.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("UI: thread stopped: %v", err)
		}
	}()
	<-ui.Ready()

	pool := worker.New(1)
	defer pool.Close()

	var loop *eventloop.Loop
	post := func(a eventloop.Action) func() {
		return func() { loop.Post(a) }
	}

	smp := sampler.New(pixel.NewReader(), cfg.SampleInterval, func(c pixel.Color) {
		loop.ColorSampled(c)
	})
	capt := capture.NewService(capture.Options{
		Snapshot:       screenshot.Capture,
		Overlay:        overlay.New(overlay.DefaultStyle),
		UI:             ui,
		Clipboard:      clipboard.Writer{},
		Notifier:       notification.New(ui),
		Worker:         pool,
		MinSpan:        cfg.MinSelectionPx,
		NotifyDuration: cfg.NotifyDuration,
		OnEnded:        func(id uint64, o capture.Outcome) { loop.CaptureEnded(id, o) },
	})
	trayIcon := tray.New(tray.Config{
		Tooltip:           tray.DefaultTooltip,
		OnColorPick:       post(eventloop.ActionColorPick),
		OnScreenshot:      post(eventloop.ActionScreenshot),
		OnToggleAutostart: post(eventloop.ActionToggleAutostart),
		OnExit:            post(eventloop.ActionExit),
	})
	loop = eventloop.New(eventloop.Options{
		Sampler:   smp,
		Capturer:  capt,
		Display:   display.New(ui),
		Menu:      trayIcon,
		Autostart: autostart.New(cfg.AppName),
		OnExit:    cancel,
	})

	srv := startCommandServer(ctx, cfg.SingleInstancePort, func(cmd string) {
		switch cmd {
		case singleinstance.CommandScreenshot:
			loop.Post(eventloop.ActionScreenshot)
		case singleinstance.CommandColorPick:
			loop.Post(eventloop.ActionColorPick)
		}
	})
	if srv != nil {
		defer srv.Close()
	}

	go trayIcon.Run()
	defer trayIcon.Quit()

	if cfg.ScreenshotHotkey != "" {
		stop, err := hotkey.Listen(cfg.ScreenshotHotkey, post(eventloop.ActionScreenshot))
		if err != nil {
			log.Printf("Hotkey disabled: %v", err)
		} else {
			defer stop()
		}
	}

	if cfg.EnvPath != "" {
		if err := config.Watch(ctx, cfg.EnvPath, loop.ConfigChanged); err != nil {
			log.Printf("Config hot reload disabled: %v", err)
		}
	}

	return loop.Run(ctx)
}

// startCommandServer listens for commands from later launches. It returns nil
// when the port is taken, and the app runs on without the listener.
func startCommandServer(ctx context.Context, port int, onCommand func(cmd string)) *singleinstance.Server {
	srv := singleinstance.NewServer(port)
	srv.OnCommand = onCommand
	if err := srv.Start(ctx); err != nil {
		log.Printf("Second-launch hand-off disabled: %v", err)
		return nil
	}
	return srv
}

func logMonitorConfiguration() {
	displays := screenshot.DisplayBounds()
	log.Printf("MONITOR: Detected %d monitors", len(displays))
	for i, b := range displays {
		log.Printf("MONITOR: #%d %v", i, b)
	}
	if v, err := screenshot.VirtualBounds(); err == nil {
		log.Printf("MONITOR: Virtual screen %v", v)
	}
}
