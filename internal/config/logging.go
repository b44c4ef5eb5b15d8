package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/dexter/internal/logging"
)

//nolint:gochecknoglobals // Bootstrap logger used before the CLI configures logging.
var (
	bootstrapLogger zerolog.Logger
	bootstrapOnce   sync.Once
)

// GetLogger returns the console logger used while configuration itself is
// loading. Its level comes from DEXTER_LOG_LEVEL and defaults to info.
func GetLogger() zerolog.Logger {
	bootstrapOnce.Do(func() {
		lvl, err := zerolog.ParseLevel(os.Getenv(EnvLogLevel))
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}
		bootstrapLogger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(lvl).With().Timestamp().Logger()
	})
	return bootstrapLogger
}

// EnsureLogDir creates the directory of the configured log file.
func EnsureLogDir() error {
	dir := filepath.Dir(defaultLogFile())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating log directory %s: %w", dir, err)
	}
	return nil
}

// defaultLogFile reads the log path without loading the global config.
func defaultLogFile() string {
	globalConfigMu.Lock()
	cfg := globalConfig
	globalConfigMu.Unlock()
	if cfg != nil && cfg.Logging.File != "" {
		return cfg.Logging.File
	}
	return filepath.Join(HomeDir(), "logs", "dexter.log")
}

// ToLoggingConfig converts config.LoggingConfig to logging.Config for use with
// the internal/logging package. This bridges the configuration system to the
// logging infrastructure.
//
// The conversion applies these rules:
//   - Level, Format are copied directly
//   - If File is set, Output becomes "file" and File is passed through
//   - If File is empty, Output defaults to "stderr"
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := "stderr"
	if lc.File != "" {
		output = outputTypeFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// GetLoggingConfig returns the Logging section of the global configuration.
// The returned value is a copy of the current global config's Logging settings.
// Any overrides (for example the --debug flag) are expected to be applied by
// the caller after retrieving this value.
func GetLoggingConfig() LoggingConfig {
	cfg := GetGlobalConfig()
	return cfg.Logging
}
