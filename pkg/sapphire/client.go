package sapphire

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sapphire-forecast/sapphire-go/pkg/batch"
	"github.com/sapphire-forecast/sapphire-go/pkg/log"
	"github.com/sapphire-forecast/sapphire-go/pkg/record"
	"github.com/sapphire-forecast/sapphire-go/pkg/transport"
)

// Client reads and writes SAPPHIRE datasets. It is safe for concurrent use.
type Client struct {
	config    Config
	transport *transport.Client
	submitter *batch.Submitter
	logger    log.Logger
}

// New creates a Client. Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	topts := []transport.Option{transport.WithLogger(o.logger)}
	if o.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(o.httpClient))
	}
	if o.observer != nil {
		topts = append(topts, transport.WithObserver(o.observer))
	}
	tc, err := transport.New(cfg.Target, topts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	bopts := []batch.Option{batch.WithLogger(o.logger)}
	if o.batchObserver != nil {
		bopts = append(bopts, batch.WithObserver(o.batchObserver))
	}
	sub, err := batch.NewSubmitter(tc, cfg.BatchSize, bopts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &Client{
		config:    Config{Target: tc.Target(), BatchSize: cfg.BatchSize},
		transport: tc,
		submitter: sub,
		logger:    o.logger,
	}, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Transport returns the underlying transport client for raw requests.
func (c *Client) Transport() *transport.Client {
	return c.transport
}

// IsAuthenticated reports whether requests carry a bearer token.
func (c *Client) IsAuthenticated() bool {
	return c.transport.IsAuthenticated()
}

// String describes the client without exposing the token.
func (c *Client) String() string {
	return fmt.Sprintf("sapphire.Client(%s, batch size %d)", c.config.Target, c.config.BatchSize)
}

// Read fetches one page of ds matching q.
func (c *Client) Read(ctx context.Context, ds Dataset, q Query) ([]record.Record, error) {
	params, err := q.Params(ds)
	if err != nil {
		return nil, err
	}

	c.logger.Info("reading dataset",
		log.String("dataset", ds.String()),
		log.String("horizon", q.Horizon),
		log.String("code", q.Code))

	body, err := c.transport.Get(ctx, ds.Path(), params)
	if err != nil {
		return nil, err
	}
	records, err := record.DecodeList(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ds, err)
	}
	return records, nil
}

// ReadAll pages through ds until an empty page is returned. q.Skip is the
// starting offset and q.Limit the requested page size; pages shorter than
// q.Limit do not end the read since the server may cap them.
func (c *Client) ReadAll(ctx context.Context, ds Dataset, q Query) ([]record.Record, error) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	var all []record.Record
	for {
		page, err := c.Read(ctx, ds, q)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return all, nil
		}
		all = append(all, page...)
		q.Skip += len(page)
	}
}

// Write posts records to ds in batches and returns how many were accepted.
// Records are validated before the first request.
func (c *Client) Write(ctx context.Context, ds Dataset, records []record.Record) (int, error) {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return 0, fmt.Errorf("%w: record %d: %w", ErrInvalidRecord, i, err)
		}
	}
	return c.submitter.PostBatched(ctx, ds.Path(), records)
}

// healthStatus is the body of the health endpoints.
type healthStatus struct {
	Status string `json:"status"`
}

// HealthStatus returns the status reported by the service's health endpoint.
func (c *Client) HealthStatus(ctx context.Context, svc Service) (string, error) {
	return c.status(ctx, svc.Prefix()+"/health")
}

// Health reports whether the service answers its health check with
// "healthy". Any error counts as unhealthy.
func (c *Client) Health(ctx context.Context, svc Service) bool {
	status, err := c.HealthStatus(ctx, svc)
	if err != nil {
		c.logger.Warn("health check failed", log.String("service", string(svc)), log.Err(err))
		return false
	}
	return status == "healthy"
}

// Ready reports whether the service answers its readiness check with
// "ready". Any error counts as not ready.
func (c *Client) Ready(ctx context.Context, svc Service) bool {
	status, err := c.status(ctx, svc.Prefix()+"/health/ready")
	if err != nil {
		c.logger.Warn("readiness check failed", log.String("service", string(svc)), log.Err(err))
		return false
	}
	return status == "ready"
}

func (c *Client) status(ctx context.Context, path string) (string, error) {
	body, err := c.transport.Get(ctx, path, nil)
	if err != nil {
		return "", err
	}
	var hs healthStatus
	if err := json.Unmarshal(body, &hs); err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return hs.Status, nil
}
