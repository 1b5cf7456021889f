package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/podmon/listener"
	"github.com/srg/podmon/proximity"
	"github.com/srg/podmon/state"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration. It is read once at startup and not
// changed afterwards.
type Config struct {
	LogLevel string `yaml:"log_level" default:"info"`

	// Tracking
	StaleTimeout        time.Duration `yaml:"stale_timeout" default:"30s"`
	SmoothingWindow     int           `yaml:"smoothing_window" default:"1"`
	LowBatteryThreshold int           `yaml:"low_battery_threshold" default:"20"`

	// Decoding
	VendorID uint16   `yaml:"vendor_id" default:"76"`
	Models   []string `yaml:"models"`
	Layout   string   `yaml:"layout" default:"continuity"`

	// Scanning
	AllowDuplicates       bool          `yaml:"allow_duplicates" default:"true"`
	ResubscribeMaxBackoff time.Duration `yaml:"resubscribe_max_backoff" default:"30s"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML config file over the defaults. Missing fields keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.StaleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stale_timeout must be > 0, got %s", c.StaleTimeout))
	}
	if c.SmoothingWindow < 1 {
		errs = append(errs, fmt.Errorf("smoothing_window must be >= 1, got %d", c.SmoothingWindow))
	}
	if c.LowBatteryThreshold < 0 || c.LowBatteryThreshold > 100 {
		errs = append(errs, fmt.Errorf("low_battery_threshold must be within 0..100, got %d", c.LowBatteryThreshold))
	}
	if c.ResubscribeMaxBackoff <= 0 {
		errs = append(errs, fmt.Errorf("resubscribe_max_backoff must be > 0, got %s", c.ResubscribeMaxBackoff))
	}
	if _, err := proximity.LayoutByName(c.Layout); err != nil {
		errs = append(errs, fmt.Errorf("layout: %w", err))
	}
	if _, err := c.models(); err != nil {
		errs = append(errs, fmt.Errorf("models: %w", err))
	}

	return errors.Join(errs...)
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

// NewDecoder builds the proximity decoder for the configured vendor, layout and models.
func (c *Config) NewDecoder() (*proximity.Decoder, error) {
	layout, err := proximity.LayoutByName(c.Layout)
	if err != nil {
		return nil, err
	}
	models, err := c.models()
	if err != nil {
		return nil, err
	}
	return proximity.NewDecoder(c.VendorID, layout, models...)
}

// StateOptions converts the tracking settings into state.Options.
func (c *Config) StateOptions() state.Options {
	opts := state.DefaultOptions()
	opts.StaleTimeout = c.StaleTimeout
	opts.SmoothingWindow = c.SmoothingWindow
	return opts
}

// ListenerOptions converts the scanning settings into listener.Options.
func (c *Config) ListenerOptions() listener.Options {
	opts := listener.DefaultOptions()
	opts.VendorID = c.VendorID
	opts.AllowDuplicates = c.AllowDuplicates
	opts.ResubscribeMaxBackoff = c.ResubscribeMaxBackoff
	return opts
}

// models resolves the configured model references. An empty list selects every
// known model.
func (c *Config) models() ([]proximity.Model, error) {
	var out []proximity.Model
	for _, ref := range c.Models {
		models, err := proximity.ParseModels(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, models...)
	}
	return out, nil
}
