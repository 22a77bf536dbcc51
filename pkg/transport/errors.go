package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind tells where a failure originated.
type Kind int

const (
	// KindStatus is a non-2xx HTTP response.
	KindStatus Kind = iota + 1

	// KindNetwork is a failure before a response was received.
	KindNetwork

	// KindMalformed is a request body that could not be encoded or a
	// response body that is not JSON.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindNetwork:
		return "network"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Sentinels matched by APIError.Is.
var (
	// ErrUnauthorized matches HTTP 401 responses.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden matches HTTP 403 responses.
	ErrForbidden = errors.New("access denied")

	// ErrRetriesExhausted matches transient failures that outlived MaxRetries.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// maxBodyExcerpt bounds APIError.Body.
const maxBodyExcerpt = 500

// APIError is the single error type returned by Client operations.
type APIError struct {
	// Kind tells whether a status code, the network or a malformed payload failed.
	Kind Kind

	// StatusCode is the HTTP status, zero for network failures.
	StatusCode int

	// Message is a human-readable summary.
	Message string

	// Body is an excerpt of the response body, truncated to 500 bytes.
	Body string

	Method string
	URL    string

	// RequestID is the X-Request-ID shared by all attempts.
	RequestID string

	// Attempts is the number of requests made before giving up.
	Attempts int

	// RetryAfter is the server's Retry-After hint, if any.
	RetryAfter time.Duration

	// Transient is true when the failure was retryable and attempts ran out.
	Transient bool

	// Err is the underlying cause (transport error, decode error), if any.
	Err error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("sapphire: ")
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(" ")
	}
	if e.URL != "" {
		b.WriteString(e.URL)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.StatusCode != 0 && !strings.Contains(e.Message, fmt.Sprint(e.StatusCode)) {
		fmt.Fprintf(&b, " (http %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		fmt.Fprintf(&b, " after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// Is matches the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrRetriesExhausted:
		return e.Transient
	}
	return false
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	if ae, ok := AsAPIError(err); ok {
		return ae.StatusCode
	}
	return 0
}

// statusMessage mirrors what the API gateway means by each permanent status.
func statusMessage(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "authentication required: provide a valid token"
	case http.StatusForbidden:
		return "access denied: insufficient permissions for this resource"
	default:
		return fmt.Sprintf("api request failed: %d %s", code, http.StatusText(code))
	}
}

func truncateBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= maxBodyExcerpt {
		return s
	}
	return s[:maxBodyExcerpt] + "... [truncated]"
}
