package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Window configuration constants and defaults.
const (
	// DefaultStaleTime is how long a fetched value is considered fresh.
	DefaultStaleTime = 5 * time.Minute

	// DefaultGCTime is how long an unobserved entry is retained.
	DefaultGCTime = 10 * time.Minute

	// MaxWindow bounds both windows (7 days).
	MaxWindow = 7 * hoursPerDay * time.Hour

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24

	// EnvStaleTime overrides the staleness window.
	EnvStaleTime = "DEXTER_CACHE_STALE_TIME"

	// EnvGCTime overrides the GC window.
	EnvGCTime = "DEXTER_CACHE_GC_TIME"

	// EnvDiskEnabled enables or disables on-disk hydration.
	EnvDiskEnabled = "DEXTER_CACHE_DISK_ENABLED"
)

// ErrInvalidWindow is returned for negative or oversized windows.
var ErrInvalidWindow = fmt.Errorf("cache window must be between 0 and %s", FormatDuration(MaxWindow))

// ParseWindow parses a window in either format:
// - Integer seconds: "300".
// - Duration string: "5m", "1h30m".
func ParseWindow(s string) (time.Duration, error) {
	var d time.Duration
	if seconds, err := strconv.Atoi(s); err == nil {
		d = time.Duration(seconds) * time.Second
	} else {
		parsed, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return 0, fmt.Errorf("invalid cache window %q: %w", s, parseErr)
		}
		d = parsed
	}

	if d < 0 || d > MaxWindow {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidWindow, d)
	}
	return d, nil
}

// GetStaleTimeFromEnv reads the staleness window from the environment or
// returns fallback when unset or invalid.
func GetStaleTimeFromEnv(fallback time.Duration) time.Duration {
	return windowFromEnv(EnvStaleTime, fallback)
}

// GetGCTimeFromEnv reads the GC window from the environment or returns
// fallback when unset or invalid.
func GetGCTimeFromEnv(fallback time.Duration) time.Duration {
	return windowFromEnv(EnvGCTime, fallback)
}

func windowFromEnv(name string, fallback time.Duration) time.Duration {
	envVal := os.Getenv(name)
	if envVal == "" {
		return fallback
	}
	d, err := ParseWindow(envVal)
	if err != nil {
		return fallback
	}
	return d
}

// GetDiskEnabledFromEnv reads the disk hydration flag from the environment.
// Returns fallback if the variable is not set or cannot be parsed.
func GetDiskEnabledFromEnv(fallback bool) bool {
	envVal := os.Getenv(EnvDiskEnabled)
	if envVal == "" {
		return fallback
	}
	enabled, err := strconv.ParseBool(envVal)
	if err != nil {
		return fallback
	}
	return enabled
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "1h", "30m", "5m30s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}
