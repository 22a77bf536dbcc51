package cliconfig

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "SAPPHIRE_"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (SAPPHIRE_*).
// These override file config but are overridden by flags (checked via changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", os.Getenv(EnvPrefix+"BASE_URL"), &cfg.BaseURL)
	s.setString("token", os.Getenv(EnvPrefix+"TOKEN"), &cfg.Token)
	s.setString("log-level", os.Getenv(EnvPrefix+"LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv(EnvPrefix+"METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setDuration("timeout", os.Getenv(EnvPrefix+"TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("base-delay", os.Getenv(EnvPrefix+"BASE_DELAY"), &cfg.BaseDelay); err != nil {
		return err
	}
	if err := s.setDuration("max-delay", os.Getenv(EnvPrefix+"MAX_DELAY"), &cfg.MaxDelay); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv(EnvPrefix+"DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	if err := s.setIntFromString("max-retries", os.Getenv(EnvPrefix+"MAX_RETRIES"), &cfg.MaxRetries); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-size", os.Getenv(EnvPrefix+"BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}

	return nil
}
