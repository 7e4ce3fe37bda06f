// Package config defines the deployment settings for the dogfoodtimer
// daemon and provides helpers to load, validate and save them in YAML
// format. Behavioral constants (thresholds, debounce, escalation) are
// compile-time and live in internal/logic; this file covers only how a
// particular installation is wired and reached.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the deployment settings for one installation.
type Config struct {
	// Broker is the MQTT broker URL, e.g. tcp://192.168.1.200:1883.
	// "off" disables MQTT publishing.
	Broker string `yaml:"broker"`
	// WSBroker is the websocket broker URL for the status page's
	// browser-side live view. Empty disables the live view.
	WSBroker string `yaml:"ws_broker"`
	// HTTPAddr is the status server listen address. Empty disables it.
	HTTPAddr string `yaml:"http_addr"`
	// Poll is the control loop period.
	Poll time.Duration `yaml:"poll"`
	// Heartbeat is the MQTT heartbeat period. Zero disables heartbeats.
	Heartbeat time.Duration `yaml:"heartbeat"`
	// LogLevel is the zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// I2CBus names the bus the accelerometer sits on. Empty picks the
	// first available bus.
	I2CBus string `yaml:"i2c_bus"`
	// AccelAddr is the accelerometer I²C address.
	AccelAddr uint16 `yaml:"accel_addr"`
	// GPIOChip is the GPIO character device for the panel.
	GPIOChip string `yaml:"gpio_chip"`
	// Panel pins, BCM numbering.
	PinLEDRed   int `yaml:"pin_led_red"`
	PinLEDGreen int `yaml:"pin_led_green"`
	PinBuzzer   int `yaml:"pin_buzzer"`
	PinButtonA  int `yaml:"pin_button_a"`
	PinButtonB  int `yaml:"pin_button_b"`
	PinMute     int `yaml:"pin_mute"`
}

const (
	// DefaultConfigFilename is the default config path.
	DefaultConfigFilename = "/etc/dogfoodtimer.yaml"

	// DefaultFilePermissions is the file mode for written configs.
	DefaultFilePermissions = 0o644
)

var (
	// ErrPollTooSmall is returned when the poll period is not positive.
	ErrPollTooSmall = errors.New("poll period must be positive")
	// ErrNegativeHeartbeat is returned for a negative heartbeat period.
	ErrNegativeHeartbeat = errors.New("heartbeat period cannot be negative")
	// ErrBadLogLevel is returned for an unrecognized log level name.
	ErrBadLogLevel = errors.New("unrecognized log level")
	// ErrBadPin is returned when a panel pin is negative.
	ErrBadPin = errors.New("panel pins must be non-negative")
)

// Default returns the reference deployment settings.
func Default() *Config {
	return &Config{
		Broker:      "tcp://192.168.1.200:1883",
		WSBroker:    "",
		HTTPAddr:    ":8080",
		Poll:        50 * time.Millisecond,
		Heartbeat:   15 * time.Minute,
		LogLevel:    "info",
		I2CBus:      "",
		AccelAddr:   0x18,
		GPIOChip:    "gpiochip0",
		PinLEDRed:   17,
		PinLEDGreen: 27,
		PinBuzzer:   22,
		PinButtonA:  23,
		PinButtonB:  24,
		PinMute:     25,
	}
}

// Load reads settings from path and validates them. A missing file at the
// default path yields the defaults; an explicitly chosen path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Unset fields keep their defaults
	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path in YAML form.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	if err := c.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks the settings for usable values.
func (c *Config) Validate() error {
	if c.Poll <= 0 {
		return ErrPollTooSmall
	}
	if c.Heartbeat < 0 {
		return ErrNegativeHeartbeat
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrBadLogLevel, c.LogLevel)
	}

	if c.Broker != "" && c.Broker != "off" {
		if _, err := url.Parse(c.Broker); err != nil {
			return fmt.Errorf("invalid broker URL: %w", err)
		}
	}
	if c.WSBroker != "" {
		if _, err := url.Parse(c.WSBroker); err != nil {
			return fmt.Errorf("invalid websocket broker URL: %w", err)
		}
	}

	for _, pin := range []int{c.PinLEDRed, c.PinLEDGreen, c.PinBuzzer, c.PinButtonA, c.PinButtonB, c.PinMute} {
		if pin < 0 {
			return ErrBadPin
		}
	}

	return nil
}
