// Package transport executes requests against the SAPPHIRE API.
//
// A Client owns one immutable Target (base URL, optional bearer token,
// timeout and retry parameters). Each Get or Post is one logical operation:
// the client attempts it, classifies any failure, and retries transient
// failures with exponential backoff until MaxRetries attempts have been made.
//
// # Failure classes
//
// Transient (retried):
//   - HTTP 502, 503, 504
//   - HTTP 429 when Target.RetryRateLimited is set (Retry-After is honored)
//   - transport failures: connection refused, DNS errors, timeouts, resets
//
// Permanent (returned after one attempt):
//   - every other non-2xx status, including 401 and 403
//   - a 2xx response whose body is not JSON
//   - cancellation of the caller's context
//
// Every failure surfaces as a *APIError:
//
//	body, err := client.Get(ctx, "/api/preprocessing/runoff/", query)
//	var apiErr *transport.APIError
//	if errors.As(err, &apiErr) && apiErr.Transient {
//	    // server kept failing for apiErr.Attempts attempts
//	}
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package transport
