package transport

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the address of a locally running API gateway.
const DefaultBaseURL = "http://localhost:8000"

// ErrInvalidTarget is returned by New when the Target cannot be used.
var ErrInvalidTarget = errors.New("transport: invalid target")

// Target describes the remote endpoint and how requests against it are
// retried. A Client copies its Target at construction and never changes it.
type Target struct {
	// BaseURL is the scheme and host of the API, e.g. "http://localhost:8000".
	BaseURL string

	// Token is the optional bearer credential.
	Token string

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// MaxRetries is the maximum number of attempts, the first one included.
	MaxRetries int

	// BaseDelay is the wait after the first failed attempt. The wait before
	// attempt k+1 is BaseDelay * 2^(k-1).
	BaseDelay time.Duration

	// MaxDelay caps a single backoff wait. Zero means no cap.
	MaxDelay time.Duration

	// Jitter spreads each wait by ±Jitter (0..1). Zero disables jitter.
	Jitter float64

	// RetryRateLimited treats HTTP 429 as transient.
	RetryRateLimited bool

	// MaxRetryAfter caps a server-provided Retry-After hint. Zero means no cap.
	MaxRetryAfter time.Duration

	// UserAgent is sent when non-empty.
	UserAgent string
}

// DefaultTarget returns a Target with the client defaults.
func DefaultTarget() Target {
	return Target{
		BaseURL:          DefaultBaseURL,
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		BaseDelay:        time.Second,
		MaxDelay:         10 * time.Second,
		RetryRateLimited: true,
		MaxRetryAfter:    30 * time.Second,
	}
}

// Validate checks the target and normalizes BaseURL (no trailing slash).
func (t *Target) Validate() error {
	t.BaseURL = strings.TrimRight(strings.TrimSpace(t.BaseURL), "/")

	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base url %q: %v", ErrInvalidTarget, t.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base url scheme %q must be http or https", ErrInvalidTarget, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base url %q has no host", ErrInvalidTarget, t.BaseURL)
	}
	if t.MaxRetries < 1 {
		return fmt.Errorf("%w: max retries must be positive, got %d", ErrInvalidTarget, t.MaxRetries)
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidTarget, t.Timeout)
	}
	if t.BaseDelay < 0 || t.MaxDelay < 0 || t.MaxRetryAfter < 0 {
		return fmt.Errorf("%w: delays must be non-negative", ErrInvalidTarget)
	}
	if t.Jitter < 0 || t.Jitter > 1 {
		return fmt.Errorf("%w: jitter must be within [0, 1], got %v", ErrInvalidTarget, t.Jitter)
	}
	return nil
}

// Authenticated reports whether a bearer token is configured.
func (t Target) Authenticated() bool {
	return t.Token != ""
}

// plainHTTP reports whether the token would travel unencrypted.
func (t Target) plainHTTP() bool {
	return strings.HasPrefix(strings.ToLower(t.BaseURL), "http://")
}

// String describes the target without exposing the token.
func (t Target) String() string {
	auth := "unauthenticated"
	if t.Authenticated() {
		auth = "authenticated"
	}
	return fmt.Sprintf("%s (%s)", t.BaseURL, auth)
}
