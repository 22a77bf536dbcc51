package sapphire

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sapphire-forecast/sapphire-go/pkg/transport"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQuery_Params(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		q    Query
		want map[string]string
	}{
		{
			name: "defaults",
			ds:   Runoff,
			q:    Query{},
			want: map[string]string{"skip": "0", "limit": "100"},
		},
		{
			name: "runoff filters",
			ds:   Runoff,
			q:    Query{Horizon: "pentad", Code: "15013", Start: date(2024, 1, 1), End: date(2024, 3, 31), Skip: 200, Limit: 50},
			want: map[string]string{"horizon": "pentad", "code": "15013", "start_date": "2024-01-01", "end_date": "2024-03-31", "skip": "200", "limit": "50"},
		},
		{
			name: "meteo type",
			ds:   Meteo,
			q:    Query{Type: "P"},
			want: map[string]string{"meteo_type": "P", "skip": "0", "limit": "100"},
		},
		{
			name: "snow type",
			ds:   Snow,
			q:    Query{Type: "SWE", Code: "16059"},
			want: map[string]string{"snow_type": "SWE", "code": "16059", "skip": "0", "limit": "100"},
		},
		{
			name: "skill metrics model",
			ds:   SkillMetrics,
			q:    Query{Horizon: "decade", Model: "TiDE"},
			want: map[string]string{"horizon": "decade", "model": "TiDE", "skip": "0", "limit": "100"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.q.Params(tt.ds)
			if err != nil {
				t.Fatalf("Params() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Errorf("Params() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got.Get(k) != v {
					t.Errorf("param %s = %q, want %q", k, got.Get(k), v)
				}
			}
		})
	}
}

func TestQuery_ParamsInvalid(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		q    Query
	}{
		{"unknown horizon", Runoff, Query{Horizon: "week"}},
		{"horizon on meteo", Meteo, Query{Horizon: "day"}},
		{"unknown meteo type", Meteo, Query{Type: "X"}},
		{"snow type on meteo", Meteo, Query{Type: "SWE"}},
		{"type on runoff", Runoff, Query{Type: "T"}},
		{"unknown model", SkillMetrics, Query{Model: "GPT"}},
		{"model on forecasts", Forecasts, Query{Model: "TFT"}},
		{"dates on skill metrics", SkillMetrics, Query{Start: date(2024, 1, 1)}},
		{"end before start", Runoff, Query{Start: date(2024, 2, 1), End: date(2024, 1, 1)}},
		{"negative skip", Runoff, Query{Skip: -1}},
		{"negative limit", Runoff, Query{Limit: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.q.Params(tt.ds)
			if !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("Params() error = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-05-17")
	if err != nil || !got.Equal(date(2024, 5, 17)) {
		t.Errorf("ParseDate() = %v, %v", got, err)
	}
	if got, err := ParseDate(""); err != nil || !got.IsZero() {
		t.Errorf("ParseDate(\"\") = %v, %v", got, err)
	}
	if _, err := ParseDate("17/05/2024"); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("ParseDate(bad) error = %v, want ErrInvalidQuery", err)
	}
}

func TestLookupDataset(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"runoff", "/api/preprocessing/runoff/"},
		{"Hydrograph", "/api/preprocessing/hydrograph/"},
		{"meteo", "/api/preprocessing/meteo/"},
		{"snow", "/api/preprocessing/snow/"},
		{"forecasts", "/api/postprocessing/forecasts/"},
		{"lr-forecasts", "/api/postprocessing/lr-forecasts/"},
		{"lr_forecasts", "/api/postprocessing/lr-forecasts/"},
		{"skill_metrics", "/api/postprocessing/skill-metrics/"},
	}
	for _, tt := range tests {
		ds, err := LookupDataset(tt.name)
		if err != nil {
			t.Errorf("LookupDataset(%q) error = %v", tt.name, err)
			continue
		}
		if ds.Path() != tt.want {
			t.Errorf("LookupDataset(%q).Path() = %q, want %q", tt.name, ds.Path(), tt.want)
		}
	}

	if _, err := LookupDataset("discharge"); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("unknown dataset error = %v", err)
	}
	if n := len(Datasets()); n != 7 {
		t.Errorf("len(Datasets()) = %d, want 7", n)
	}
}

func TestLookupService(t *testing.T) {
	if s, err := LookupService("Postprocessing"); err != nil || s != Postprocessing {
		t.Errorf("LookupService() = %v, %v", s, err)
	}
	if _, err := LookupService("forecasting"); !errors.Is(err, ErrUnknownService) {
		t.Errorf("unknown service error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.BatchSize != 1000 {
		t.Errorf("BatchSize = %d, want 1000", cfg.BatchSize)
	}

	cfg.BatchSize = -1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative batch size error = %v", err)
	}

	cfg = DefaultConfig()
	cfg.Target.BaseURL = "ftp://nowhere"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad url error = %v", err)
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.BatchSize != DefaultBatchSize || cfg.Target.MaxRetries != 3 || cfg.Target.BaseURL == "" {
		t.Errorf("SetDefaults() = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after SetDefaults() = %v", err)
	}
	if cfg.Target != transport.DefaultTarget() {
		t.Errorf("zero Target = %+v, want DefaultTarget()", cfg.Target)
	}
}

func TestConfig_SetDefaultsKeepsExplicitZeroDelays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target.BaseDelay = 0
	cfg.Target.MaxDelay = 0
	cfg.SetDefaults()
	if cfg.Target.BaseDelay != 0 || cfg.Target.MaxDelay != 0 {
		t.Errorf("delays = %v/%v, want 0/0 kept", cfg.Target.BaseDelay, cfg.Target.MaxDelay)
	}
	if !cfg.Target.RetryRateLimited || cfg.Target.MaxRetryAfter != transport.DefaultTarget().MaxRetryAfter {
		t.Errorf("rate-limit settings changed: %+v", cfg.Target)
	}
}

func TestDataset_Filters(t *testing.T) {
	tests := []struct {
		ds   Dataset
		want string
	}{
		{Runoff, "code,horizon,start_date,end_date"},
		{Meteo, "code,meteo_type,start_date,end_date"},
		{Snow, "code,snow_type,start_date,end_date"},
		{SkillMetrics, "code,horizon,model"},
	}
	for _, tt := range tests {
		if got := strings.Join(tt.ds.Filters(), ","); got != tt.want {
			t.Errorf("%s.Filters() = %s, want %s", tt.ds.Name, got, tt.want)
		}
	}
}
