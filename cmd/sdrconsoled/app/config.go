// Package app wires the daemon together: load the on-disk configuration,
// construct the devices, control plane, pipelines, and session store, and
// run until the process is signalled to stop.
package app

import (
	"log/slog"

	"github.com/skywave-radio/console/internal/config"
)

// LoadConfig reads and validates the daemon's YAML configuration file.
func LoadConfig(path string) (config.Console, error) {
	return config.Load(path)
}

// ParseLogLevel maps the config's logLevel string onto a slog.Level,
// defaulting to Info for anything unrecognized.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
