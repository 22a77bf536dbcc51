package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sapphire-forecast/sapphire-go/internal/apitest"
)

// run executes the CLI with an empty config file and no dotenv file.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("log_level = \"error\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	a := newApp()
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config", cfgPath, "--env-file", ""))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_WriteAndRead(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	csvPath := filepath.Join(t.TempDir(), "runoff.csv")
	csv := "horizon_type,code,date,discharge\nday,15013,2024-01-01,1.5\nday,15013,2024-01-02,1.7\nday,16059,2024-01-01,NA\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out, err := run(t, "write", "runoff", csvPath, "--base-url", srv.URL, "--batch-size", "2")
	if err != nil {
		t.Fatalf("write error = %v (%s)", err, out)
	}
	if !strings.Contains(out, "3 records written") {
		t.Errorf("output = %q", out)
	}
	if got := srv.Count(http.MethodPost, "/api/preprocessing/runoff/"); got != 2 {
		t.Errorf("POSTs = %d, want 2", got)
	}

	out, err = run(t, "read", "runoff", "--code", "15013", "--base-url", srv.URL)
	if err != nil {
		t.Fatalf("read error = %v (%s)", err, out)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
}

func TestCLI_ReadRejectsBadQuery(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	if _, err := run(t, "read", "meteo", "--type", "SWE", "--base-url", srv.URL); err == nil {
		t.Error("read with snow type on meteo should fail")
	}
	if _, err := run(t, "read", "runoff", "--start", "01/02/2024", "--base-url", srv.URL); err == nil {
		t.Error("read with malformed date should fail")
	}
	if _, err := run(t, "read", "rainfall", "--base-url", srv.URL); err == nil {
		t.Error("read of unknown dataset should fail")
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestCLI_Health(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	out, err := run(t, "health", "--base-url", srv.URL)
	if err != nil {
		t.Fatalf("health error = %v", err)
	}
	if strings.Count(out, "healthy") != 2 {
		t.Errorf("output = %q, want both services healthy", out)
	}

	srv.SetHealth("postprocessing", "degraded")
	out, err = run(t, "health", "--base-url", srv.URL)
	if err == nil {
		t.Errorf("health should fail when a service is degraded")
	}
	if !strings.Contains(out, "degraded") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "health", "--service", "preprocessing", "--ready", "--base-url", srv.URL); err != nil {
		t.Errorf("preprocessing only health error = %v", err)
	}
}

func TestCLI_WatchOnce(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snow.json"), []byte(`[{"code":"15013","snow_type":"SWE","value":12.5}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := run(t, "watch", "snow", dir, "--once", "--base-url", srv.URL)
	if err != nil {
		t.Fatalf("watch error = %v (%s)", err, out)
	}
	if !strings.Contains(out, "posted 1 files (1 records)") {
		t.Errorf("output = %q", out)
	}
	if got := len(srv.Stored("/api/preprocessing/snow/")); got != 1 {
		t.Errorf("stored = %d, want 1", got)
	}
}

func TestCLI_Datasets(t *testing.T) {
	out, err := run(t, "datasets")
	if err != nil {
		t.Fatalf("datasets error = %v", err)
	}
	for _, name := range []string{"runoff", "hydrograph", "meteo", "snow", "forecasts", "lr-forecasts", "skill-metrics", "FILTERS", "snow_type"} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %s:\n%s", name, out)
		}
	}
}
