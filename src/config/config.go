package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// EnvPathVar names an alternative .env file used when none sits beside
	// the executable.
	EnvPathVar = "SNAPPICK_ENV"

	DefaultAppName        = "SnapPick"
	DefaultHotkey         = "Ctrl+Alt+S"
	DefaultSampleInterval = 50 * time.Millisecond
	DefaultMinSelectionPx = 5
	DefaultNotifyDuration = 3 * time.Second
	DefaultSingleInstance = 49560
	DefaultLogFile        = "snappick_debug.log"
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxArchives = 3
	minSampleInterval     = 10 * time.Millisecond
)

type Config struct {
	EnableFileLogging  bool
	SampleInterval     time.Duration
	MinSelectionPx     int
	NotifyDuration     time.Duration
	ScreenshotHotkey   string
	AppName            string
	SingleInstancePort int
	LogFile            string
	LogMaxSizeMB       int
	LogMaxArchives     int
	// EnvPath is the .env file the values came from, empty if none.
	EnvPath string
}

func Load() (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SNAPPICK_ENV as a path to a config file
	envPath := resolveEnvPath()
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}
	return LoadFrom(envPath)
}

// LoadFrom builds a Config from the .env file at envPath layered over the
// process environment. File values win so that edits picked up by Watch take
// effect even after Load exported the previous values.
func LoadFrom(envPath string) (*Config, error) {
	values := readDotenvValues(envPath)
	lookup := lookupFunc(func(key string) (string, bool) {
		if v, ok := values[key]; ok {
			return v, true
		}
		return os.LookupEnv(key)
	})

	hotkey := DefaultHotkey
	if v, ok := lookup("SCREENSHOT_HOTKEY"); ok {
		hotkey = strings.TrimSpace(v)
	}

	cfg := &Config{
		EnableFileLogging:  parseBool(lookup("ENABLE_FILE_LOGGING")),
		SampleInterval:     millis(lookup, "SAMPLE_INTERVAL_MS", DefaultSampleInterval),
		MinSelectionPx:     positiveInt(lookup, "MIN_SELECTION_PX", DefaultMinSelectionPx),
		NotifyDuration:     seconds(lookup, "NOTIFY_DURATION_SEC", DefaultNotifyDuration),
		ScreenshotHotkey:   hotkey,
		AppName:            DefaultAppName,
		SingleInstancePort: port(lookup, "SINGLEINSTANCE_PORT"),
		LogFile:            DefaultLogFile,
		LogMaxSizeMB:       positiveInt(lookup, "LOG_MAX_SIZE_MB", DefaultLogMaxSizeMB),
		LogMaxArchives:     positiveInt(lookup, "LOG_MAX_ARCHIVES", DefaultLogMaxArchives),
		EnvPath:            envPath,
	}
	if v, ok := lookup("LOG_FILE"); ok && strings.TrimSpace(v) != "" {
		cfg.LogFile = strings.TrimSpace(v)
	}
	if v, ok := lookup("APP_NAME"); ok && strings.TrimSpace(v) != "" {
		cfg.AppName = strings.TrimSpace(v)
	}
	return cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func parseBool(v string, ok bool) bool {
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

type lookupFunc func(key string) (string, bool)

func positiveInt(lookup lookupFunc, key string, def int) int {
	v, ok := lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func millis(lookup lookupFunc, key string, def time.Duration) time.Duration {
	d := time.Duration(positiveInt(lookup, key, int(def/time.Millisecond))) * time.Millisecond
	if d < minSampleInterval {
		return minSampleInterval
	}
	return d
}

func seconds(lookup lookupFunc, key string, def time.Duration) time.Duration {
	return time.Duration(positiveInt(lookup, key, int(def/time.Second))) * time.Second
}

func port(lookup lookupFunc, key string) int {
	n := positiveInt(lookup, key, DefaultSingleInstance)
	if n < 1024 || n > 65535 {
		return DefaultSingleInstance
	}
	return n
}
