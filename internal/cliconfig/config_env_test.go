package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"SAPPHIRE_BASE_URL":     "https://env.example.org",
				"SAPPHIRE_TOKEN":        "env-token",
				"SAPPHIRE_TIMEOUT":      "10s",
				"SAPPHIRE_MAX_RETRIES":  "6",
				"SAPPHIRE_BASE_DELAY":   "250ms",
				"SAPPHIRE_MAX_DELAY":    "4s",
				"SAPPHIRE_BATCH_SIZE":   "100",
				"SAPPHIRE_LOG_LEVEL":    "debug",
				"SAPPHIRE_METRICS_ADDR": ":2112",
				"SAPPHIRE_DEBOUNCE":     "2s",
			},
			changed: map[string]bool{},
			expected: Config{
				BaseURL:     "https://env.example.org",
				Token:       "env-token",
				Timeout:     10 * time.Second,
				MaxRetries:  6,
				BaseDelay:   250 * time.Millisecond,
				MaxDelay:    4 * time.Second,
				BatchSize:   100,
				LogLevel:    "debug",
				MetricsAddr: ":2112",
				Debounce:    2 * time.Second,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"SAPPHIRE_TOKEN":       "env-token",
				"SAPPHIRE_MAX_RETRIES": "9",
			},
			changed: map[string]bool{"token": true},
			initial: Config{Token: "flag-token", MaxRetries: 3},
			expected: Config{
				Token:      "flag-token",
				MaxRetries: 9,
			},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"SAPPHIRE_TIMEOUT": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"SAPPHIRE_BATCH_SIZE": "lots"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:     "ignores non-positive ints",
			envVars:  map[string]string{"SAPPHIRE_MAX_RETRIES": "0"},
			changed:  map[string]bool{},
			initial:  Config{MaxRetries: 3},
			expected: Config{MaxRetries: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	content := "SAPPHIRE_TOKEN=dotenv-token\nSAPPHIRE_BATCH_SIZE=42\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	// Already-set variables win over the file.
	t.Setenv("SAPPHIRE_BATCH_SIZE", "7")
	t.Setenv("SAPPHIRE_TOKEN", "")
	os.Unsetenv("SAPPHIRE_TOKEN")

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("SAPPHIRE_TOKEN"); got != "dotenv-token" {
		t.Errorf("SAPPHIRE_TOKEN = %q, want dotenv-token", got)
	}
	if got := os.Getenv("SAPPHIRE_BATCH_SIZE"); got != "7" {
		t.Errorf("SAPPHIRE_BATCH_SIZE = %q, want 7", got)
	}

	if err := LoadDotEnv(filepath.Join(tmpDir, "missing.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}

func TestPrecedence(t *testing.T) {
	fileConf := FileConfig{
		BaseURL:    "https://file.example.org",
		Token:      "file-token",
		MaxRetries: 4,
		BatchSize:  200,
	}
	t.Setenv("SAPPHIRE_TOKEN", "env-token")
	t.Setenv("SAPPHIRE_BATCH_SIZE", "300")

	// Simulate CLI flags
	changed := map[string]bool{
		"batch-size": true,
	}
	cfg := DefaultConfig()
	cfg.BatchSize = 50

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	// Verify precedence: CLI > Env > File
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %v, want 50 (CLI should win)", cfg.BatchSize)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %v, want env-token (env should override file)", cfg.Token)
	}
	if cfg.BaseURL != "https://file.example.org" {
		t.Errorf("BaseURL = %v, want file value", cfg.BaseURL)
	}
	if cfg.MaxRetries != 4 {
		t.Errorf("MaxRetries = %v, want 4 (file should set)", cfg.MaxRetries)
	}
}
