package transport

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// backoff implements exponential backoff with optional jitter.
// One backoff is used per logical request.
type backoff struct {
	base    time.Duration
	max     time.Duration
	jitter  float64
	attempt int
}

// newBackoff creates a backoff whose first wait is base.
func newBackoff(base, max time.Duration, jitter float64) *backoff {
	return &backoff{base: base, max: max, jitter: jitter}
}

// Next returns the wait after the next failed attempt.
func (b *backoff) Next() time.Duration {
	b.attempt++
	wait := delay(b.base, b.max, b.attempt)
	if b.jitter > 0 {
		f := 1 + b.jitter*(rand.Float64()*2-1)
		wait = time.Duration(float64(wait) * f)
	}
	return wait
}

// delay returns the un-jittered wait after the given failed attempt,
// base * 2^(attempt-1) capped at max.
func delay(base, max time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		if max > 0 && d >= max {
			break
		}
		d *= 2
	}
	if max > 0 && d > max {
		d = max
	}
	return d
}

// parseRetryAfter reads a Retry-After header in seconds or HTTP-date form.
func parseRetryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
