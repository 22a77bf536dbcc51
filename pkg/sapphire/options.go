package sapphire

import (
	"github.com/sapphire-forecast/sapphire-go/pkg/batch"
	"github.com/sapphire-forecast/sapphire-go/pkg/log"
	"github.com/sapphire-forecast/sapphire-go/pkg/transport"
)

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	httpClient    transport.HTTPClient
	logger        log.Logger
	observer      transport.Observer
	batchObserver batch.Observer
}

func defaultOptions() options {
	return options{
		logger: log.NoopLogger{},
	}
}

// WithHTTPClient sets a custom HTTP client for API communication.
// *http.Client satisfies transport.HTTPClient.
func WithHTTPClient(client transport.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = log.OrNoop(logger)
	}
}

// WithObserver receives every HTTP attempt, retries included.
func WithObserver(o transport.Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithBatchObserver receives every submitted batch.
func WithBatchObserver(o batch.Observer) Option {
	return func(opts *options) {
		opts.batchObserver = o
	}
}
