package sapphire

import (
	"fmt"

	"github.com/sapphire-forecast/sapphire-go/pkg/transport"
)

// DefaultBatchSize is the number of records posted per request.
const DefaultBatchSize = 1000

// Config holds everything needed to talk to the API gateway.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Target is the endpoint, credentials and retry policy.
	Target transport.Target

	// BatchSize is the number of records per POST.
	BatchSize int
}

// DefaultConfig returns a Config pointing at a local gateway.
func DefaultConfig() Config {
	return Config{
		Target:    transport.DefaultTarget(),
		BatchSize: DefaultBatchSize,
	}
}

// SetDefaults fills zero values with defaults. A zero Target becomes
// transport.DefaultTarget(). Otherwise only fields that cannot be zero
// (BaseURL, Timeout, MaxRetries) are filled; a zero BaseDelay retries
// without waiting and a zero MaxDelay leaves backoff uncapped.
func (c *Config) SetDefaults() {
	d := transport.DefaultTarget()
	if c.Target == (transport.Target{}) {
		c.Target = d
	}
	if c.Target.BaseURL == "" {
		c.Target.BaseURL = d.BaseURL
	}
	if c.Target.Timeout == 0 {
		c.Target.Timeout = d.Timeout
	}
	if c.Target.MaxRetries == 0 {
		c.Target.MaxRetries = d.MaxRetries
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
