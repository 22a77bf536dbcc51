package transport

import (
	"net/http"
	"testing"
	"time"
)

func TestDelay_Schedule(t *testing.T) {
	base := 100 * time.Millisecond
	tests := []struct {
		attempt int
		max     time.Duration
		want    time.Duration
	}{
		{1, 0, 100 * time.Millisecond},
		{2, 0, 200 * time.Millisecond},
		{3, 0, 400 * time.Millisecond},
		{4, 0, 800 * time.Millisecond},
		{4, 300 * time.Millisecond, 300 * time.Millisecond},
		{0, 0, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := delay(base, tt.max, tt.attempt); got != tt.want {
			t.Errorf("delay(%v, %v, %d) = %v, want %v", base, tt.max, tt.attempt, got, tt.want)
		}
	}
}

func TestBackoff_FollowsSchedule(t *testing.T) {
	b := newBackoff(time.Second, 10*time.Second, 0)
	for attempt := 1; attempt <= 6; attempt++ {
		want := delay(time.Second, 10*time.Second, attempt)
		if got := b.Next(); got != want {
			t.Errorf("attempt %d: Next() = %v, want %v", attempt, got, want)
		}
	}
}

func TestBackoff_Jitter(t *testing.T) {
	for i := 0; i < 50; i++ {
		got := newBackoff(time.Second, 0, 0.2).Next()
		if got < 800*time.Millisecond || got > 1200*time.Millisecond {
			t.Fatalf("Next() = %v, want within ±20%% of 1s", got)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	h := http.Header{}
	if _, ok := parseRetryAfter(h, now); ok {
		t.Errorf("empty header parsed")
	}

	h.Set("Retry-After", "7")
	if d, ok := parseRetryAfter(h, now); !ok || d != 7*time.Second {
		t.Errorf("seconds form = %v, %v", d, ok)
	}

	h.Set("Retry-After", now.Add(90*time.Second).Format(http.TimeFormat))
	if d, ok := parseRetryAfter(h, now); !ok || d != 90*time.Second {
		t.Errorf("date form = %v, %v", d, ok)
	}

	h.Set("Retry-After", "soon")
	if _, ok := parseRetryAfter(h, now); ok {
		t.Errorf("garbage parsed")
	}
}
