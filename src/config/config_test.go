package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeEnv(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFromDefaults(t *testing.T) {
	for _, k := range []string{"ENABLE_FILE_LOGGING", "SAMPLE_INTERVAL_MS", "MIN_SELECTION_PX",
		"NOTIFY_DURATION_SEC", "SCREENSHOT_HOTKEY", "APP_NAME", "SINGLEINSTANCE_PORT",
		"LOG_FILE", "LOG_MAX_SIZE_MB", "LOG_MAX_ARCHIVES"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.EnableFileLogging {
		t.Error("file logging should default to off")
	}
	if cfg.SampleInterval != DefaultSampleInterval {
		t.Errorf("SampleInterval = %v", cfg.SampleInterval)
	}
	if cfg.MinSelectionPx != DefaultMinSelectionPx {
		t.Errorf("MinSelectionPx = %d", cfg.MinSelectionPx)
	}
	if cfg.NotifyDuration != DefaultNotifyDuration {
		t.Errorf("NotifyDuration = %v", cfg.NotifyDuration)
	}
	if cfg.ScreenshotHotkey != DefaultHotkey {
		t.Errorf("ScreenshotHotkey = %q", cfg.ScreenshotHotkey)
	}
	if cfg.AppName != DefaultAppName {
		t.Errorf("AppName = %q", cfg.AppName)
	}
	if cfg.SingleInstancePort != DefaultSingleInstance {
		t.Errorf("SingleInstancePort = %d", cfg.SingleInstancePort)
	}
	if cfg.LogFile != DefaultLogFile || cfg.LogMaxSizeMB != DefaultLogMaxSizeMB || cfg.LogMaxArchives != DefaultLogMaxArchives {
		t.Errorf("log settings = %q %d %d", cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxArchives)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeEnv(t, path, `ENABLE_FILE_LOGGING=true
SAMPLE_INTERVAL_MS=100
MIN_SELECTION_PX=8
NOTIFY_DURATION_SEC=5
SCREENSHOT_HOTKEY=Ctrl+Shift+P
APP_NAME=PickerDev
SINGLEINSTANCE_PORT=50001
LOG_FILE=picker.log
LOG_MAX_SIZE_MB=2
LOG_MAX_ARCHIVES=5
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := Config{
		EnableFileLogging:  true,
		SampleInterval:     100 * time.Millisecond,
		MinSelectionPx:     8,
		NotifyDuration:     5 * time.Second,
		ScreenshotHotkey:   "Ctrl+Shift+P",
		AppName:            "PickerDev",
		SingleInstancePort: 50001,
		LogFile:            "picker.log",
		LogMaxSizeMB:       2,
		LogMaxArchives:     5,
		EnvPath:            path,
	}
	if *cfg != want {
		t.Errorf("got %+v\nwant %+v", *cfg, want)
	}
}

func TestLoadFromInvalidValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeEnv(t, path, `SAMPLE_INTERVAL_MS=fast
MIN_SELECTION_PX=-3
NOTIFY_DURATION_SEC=0
SINGLEINSTANCE_PORT=80
ENABLE_FILE_LOGGING=maybe
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.SampleInterval != DefaultSampleInterval || cfg.MinSelectionPx != DefaultMinSelectionPx ||
		cfg.NotifyDuration != DefaultNotifyDuration || cfg.SingleInstancePort != DefaultSingleInstance ||
		cfg.EnableFileLogging {
		t.Errorf("invalid values not replaced by defaults: %+v", *cfg)
	}
}

func TestSampleIntervalFloor(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeEnv(t, path, "SAMPLE_INTERVAL_MS=1\n")
	cfg, _ := LoadFrom(path)
	if cfg.SampleInterval != minSampleInterval {
		t.Errorf("SampleInterval = %v, want %v", cfg.SampleInterval, minSampleInterval)
	}
}

func TestEmptyHotkeyDisables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeEnv(t, path, "SCREENSHOT_HOTKEY=\n")
	cfg, _ := LoadFrom(path)
	if cfg.ScreenshotHotkey != "" {
		t.Errorf("ScreenshotHotkey = %q, want empty", cfg.ScreenshotHotkey)
	}
}

func TestFileValuesOverrideEnvironment(t *testing.T) {
	t.Setenv("MIN_SELECTION_PX", "12")
	path := filepath.Join(t.TempDir(), ".env")
	writeEnv(t, path, "MIN_SELECTION_PX=7\n")
	cfg, _ := LoadFrom(path)
	if cfg.MinSelectionPx != 7 {
		t.Errorf("MinSelectionPx = %d, want 7", cfg.MinSelectionPx)
	}
	cfg, _ = LoadFrom("")
	if cfg.MinSelectionPx != 12 {
		t.Errorf("MinSelectionPx from environment = %d, want 12", cfg.MinSelectionPx)
	}
}

func TestResolveEnvPathFallsBackToVariable(t *testing.T) {
	exe, err := os.Executable()
	if err == nil {
		if _, err := os.Stat(filepath.Join(filepath.Dir(exe), ".env")); err == nil {
			t.Skip(".env beside the test binary takes precedence")
		}
	}
	path := filepath.Join(t.TempDir(), "snappick.env")
	writeEnv(t, path, "APP_NAME=FromVar\n")
	t.Setenv(EnvPathVar, path)
	if got := resolveEnvPath(); got != path {
		t.Errorf("resolveEnvPath = %q, want %q", got, path)
	}
	t.Setenv(EnvPathVar, filepath.Join(t.TempDir(), "missing.env"))
	if got := resolveEnvPath(); got != "" {
		t.Errorf("missing file resolved to %q", got)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeEnv(t, path, "MIN_SELECTION_PX=5\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan *Config, 4)
	if err := Watch(ctx, path, func(c *Config) { got <- c }); err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}

	writeEnv(t, path, "MIN_SELECTION_PX=9\n")
	select {
	case cfg := <-got:
		if cfg.MinSelectionPx != 9 {
			t.Errorf("reloaded MinSelectionPx = %d, want 9", cfg.MinSelectionPx)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatchRequiresPath(t *testing.T) {
	if err := Watch(context.Background(), "", func(*Config) {}); err == nil {
		t.Error("expected error for empty path")
	}
}
