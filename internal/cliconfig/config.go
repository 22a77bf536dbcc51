package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sapphire-forecast/sapphire-go/pkg/sapphire"
	"github.com/sapphire-forecast/sapphire-go/pkg/transport"
)

// Config holds CLI configuration for sapphire.
type Config struct {
	BaseURL string
	Token   string

	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	BatchSize  int

	LogLevel    string
	MetricsAddr string

	// Debounce delays a spool rescan after a file event.
	Debounce time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	t := transport.DefaultTarget()
	return Config{
		BaseURL:    t.BaseURL,
		Timeout:    t.Timeout,
		MaxRetries: t.MaxRetries,
		BaseDelay:  t.BaseDelay,
		MaxDelay:   t.MaxDelay,
		BatchSize:  sapphire.DefaultBatchSize,
		LogLevel:   "info",
		Debounce:   500 * time.Millisecond,
	}
}

// Validate checks the configuration for errors and normalizes it.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = transport.DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be positive")
	}
	if c.BaseDelay < 0 || c.MaxDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	return nil
}

// ClientConfig converts c into the library configuration.
func (c Config) ClientConfig() sapphire.Config {
	cfg := sapphire.DefaultConfig()
	cfg.Target.BaseURL = c.BaseURL
	cfg.Target.Token = c.Token
	cfg.Target.Timeout = c.Timeout
	cfg.Target.MaxRetries = c.MaxRetries
	cfg.Target.BaseDelay = c.BaseDelay
	cfg.Target.MaxDelay = c.MaxDelay
	cfg.BatchSize = c.BatchSize
	return cfg
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	if c.Token != "" {
		c.Token = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
