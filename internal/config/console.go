package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Console is the daemon's on-disk YAML configuration: device selection plus
// the initial RxConfig/TxConfig the pipelines start with before any control
// plane setter runs.
type Console struct {
	Settings Settings      `yaml:"settings"`
	Rx       RxDevice      `yaml:"rx"`
	Tx       TxDevice      `yaml:"tx"`
	Session  SessionConfig `yaml:"session"`
}

// Settings carries global daemon settings.
type Settings struct {
	LogLevel          string  `yaml:"logLevel"`
	CaptureDir        string  `yaml:"captureDir"`
	PollIntervalS     float64 `yaml:"pollIntervalS"`
	DeviceOpenRetryMs int     `yaml:"deviceOpenRetryMs"`
}

// RxDevice names which driver backs the receive pipeline and its starting
// RxConfig.
type RxDevice struct {
	Driver string   `yaml:"driver"` // "rtlsdr" or "hackrf"
	Config RxConfig `yaml:"config"`
}

// TxDevice names which driver backs the transmit pipeline and its starting
// TxConfig. Only "hackrf" supports transmit among the two named radios.
type TxDevice struct {
	Driver string   `yaml:"driver"`
	Config TxConfig `yaml:"config"`
}

// SessionConfig points at the session/event log database.
type SessionConfig struct {
	DBPath string `yaml:"dbPath"`
}

// Default returns a Console configuration with the reference daemon's
// defaults applied.
func Default() Console {
	return Console{
		Settings: Settings{
			LogLevel:          "info",
			CaptureDir:        "captures",
			PollIntervalS:     2.0,
			DeviceOpenRetryMs: 200,
		},
		Rx:      RxDevice{Driver: "rtlsdr", Config: DefaultRxConfig()},
		Tx:      TxDevice{Driver: "hackrf", Config: DefaultTxConfig()},
		Session: SessionConfig{DBPath: "console_session.sqlite"},
	}
}

// Load reads and validates a Console configuration from path. Validation
// failures abort startup (fail-fast), never a partially-applied config.
func Load(path string) (Console, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Console{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Console{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := c.Rx.Config.Validate(); err != nil {
		return Console{}, fmt.Errorf("rx config: %w", err)
	}
	if err := c.Tx.Config.Validate(); err != nil {
		return Console{}, fmt.Errorf("tx config: %w", err)
	}
	if c.Rx.Driver != "rtlsdr" && c.Rx.Driver != "hackrf" {
		return Console{}, fmt.Errorf("rx.driver: unsupported driver %q", c.Rx.Driver)
	}
	if c.Tx.Driver != "hackrf" {
		return Console{}, fmt.Errorf("tx.driver: unsupported driver %q (only hackrf transmits)", c.Tx.Driver)
	}

	c.Rx.Config = c.Rx.Config.Normalized()
	c.Tx.Config = c.Tx.Config.Normalized()
	return c, nil
}
