package transport

import (
	"net/http"

	"github.com/sapphire-forecast/sapphire-go/pkg/log"
)

// Option configures optional behavior of a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every attempt.
// If not provided, a fresh *http.Client is used; per-attempt timeouts are
// applied through the request context either way.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the logger for retry and failure messages.
// If not provided, a no-op logger is used.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = log.OrNoop(logger)
	}
}

// WithObserver registers an observer notified after every attempt.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

func defaultHTTPClient() HTTPClient {
	return &http.Client{}
}
