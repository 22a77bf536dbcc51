package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sapphire-forecast/sapphire-go/pkg/log"
)

// RequestIDHeader carries the id shared by all attempts of one operation.
const RequestIDHeader = "X-Request-ID"

// Client executes requests against one Target. It holds no mutable state
// between calls and is safe for concurrent use.
type Client struct {
	target   Target
	http     HTTPClient
	logger   log.Logger
	observer Observer

	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// New validates target and creates a Client.
func New(target Target, opts ...Option) (*Client, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		target: target,
		http:   defaultHTTPClient(),
		logger: log.NoopLogger{},
		sleep:  sleepContext,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.target.Authenticated() && c.target.plainHTTP() {
		c.logger.Warn("sending auth token over plain HTTP, consider https in production",
			log.String("base_url", c.target.BaseURL))
	}
	return c, nil
}

// IsAuthenticated reports whether requests carry a bearer token.
func (c *Client) IsAuthenticated() bool {
	return c.target.Authenticated()
}

// Target returns a copy of the client's configuration.
func (c *Client) Target() Target {
	return c.target
}

// String describes the client without exposing the token.
func (c *Client) String() string {
	return "transport.Client(" + c.target.String() + ")"
}

// Get performs a GET with query parameters and returns the JSON body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query})
}

// Post sends body encoded as JSON and returns the JSON response body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{
			Kind:    KindMalformed,
			Method:  http.MethodPost,
			URL:     c.url(path, nil),
			Message: "encode request body",
			Err:     err,
		}
	}
	return c.do(ctx, request{method: http.MethodPost, path: path, body: payload})
}

type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

// result is the outcome of a single attempt.
type result struct {
	status   int
	header   http.Header
	body     []byte
	err      error
	fatal    bool // request could not be built; never retried
	duration time.Duration
}

func (c *Client) do(ctx context.Context, r request) (json.RawMessage, error) {
	target := c.url(r.path, r.query)
	reqID := c.newID()
	back := newBackoff(c.target.BaseDelay, c.target.MaxDelay, c.target.Jitter)

	for attempt := 1; ; attempt++ {
		res := c.attempt(ctx, r, target, reqID)

		if res.err == nil && res.status/100 == 2 {
			c.observe(r, reqID, attempt, res, false, 0)
			c.logger.Debug("request completed",
				log.String(log.KeyMethod, r.method),
				log.String(log.KeyPath, r.path),
				log.Int(log.KeyStatus, res.status),
				log.Int(log.KeyAttempt, attempt),
				log.Duration("duration", res.duration))
			return c.decode(r, target, reqID, attempt, res)
		}

		apiErr := c.failure(ctx, r, target, reqID, attempt, res)
		transient := c.transient(ctx, res)
		retry := transient && attempt < c.target.MaxRetries

		var wait time.Duration
		if retry {
			wait = back.Next()
			if ra := apiErr.RetryAfter; ra > 0 {
				wait = ra
				if max := c.target.MaxRetryAfter; max > 0 && wait > max {
					wait = max
				}
			}
		}
		c.observe(r, reqID, attempt, res, retry, wait)

		if !retry {
			apiErr.Transient = transient
			if transient {
				c.logger.Error("giving up after retries",
					log.String(log.KeyMethod, r.method),
					log.String(log.KeyPath, r.path),
					log.String(log.KeyRequestID, reqID),
					log.Int(log.KeyAttempt, attempt),
					log.Err(apiErr))
			}
			return nil, apiErr
		}

		c.logger.Warn("retrying request",
			log.String(log.KeyMethod, r.method),
			log.String(log.KeyPath, r.path),
			log.String(log.KeyRequestID, reqID),
			log.Int(log.KeyAttempt, attempt),
			log.Int(log.KeyStatus, res.status),
			log.Duration(log.KeyWait, wait),
			log.Err(apiErr))

		if err := c.sleep(ctx, wait); err != nil {
			return nil, &APIError{
				Kind:      KindNetwork,
				Method:    r.method,
				URL:       target,
				RequestID: reqID,
				Attempts:  attempt,
				Message:   "request canceled during backoff",
				Err:       err,
			}
		}
	}
}

func (c *Client) attempt(ctx context.Context, r request, target, reqID string) result {
	actx, cancel := context.WithTimeout(ctx, c.target.Timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(actx, r.method, target, body)
	if err != nil {
		return result{err: fmt.Errorf("create request: %w", err), fatal: true}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.target.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.target.Token)
	}
	if c.target.UserAgent != "" {
		req.Header.Set("User-Agent", c.target.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return result{err: err, duration: time.Since(start)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	res := result{
		status:   resp.StatusCode,
		header:   resp.Header,
		body:     data,
		duration: time.Since(start),
	}
	if err != nil {
		res.err = fmt.Errorf("read response body: %w", err)
	}
	return res
}

// transient decides whether a failed attempt may be retried.
func (c *Client) transient(ctx context.Context, res result) bool {
	if ctx.Err() != nil || res.fatal {
		return false
	}
	if res.err != nil {
		return true
	}
	switch res.status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	case http.StatusTooManyRequests:
		return c.target.RetryRateLimited
	}
	return false
}

func (c *Client) failure(ctx context.Context, r request, target, reqID string, attempt int, res result) *APIError {
	e := &APIError{
		Method:    r.method,
		URL:       target,
		RequestID: reqID,
		Attempts:  attempt,
	}
	if res.err != nil {
		e.Kind = KindNetwork
		e.Err = res.err
		switch {
		case res.fatal:
			e.Message = "invalid request"
		case errors.Is(ctx.Err(), context.Canceled):
			e.Message = "request canceled"
		case ctx.Err() != nil:
			e.Message = "request deadline exceeded"
		default:
			e.Message = "failed to connect"
		}
		return e
	}

	e.Kind = KindStatus
	e.StatusCode = res.status
	e.Message = statusMessage(res.status)
	e.Body = truncateBody(res.body)
	if res.status == http.StatusTooManyRequests {
		if ra, ok := parseRetryAfter(res.header, time.Now()); ok {
			e.RetryAfter = ra
		}
	}
	return e
}

func (c *Client) decode(r request, target, reqID string, attempt int, res result) (json.RawMessage, error) {
	body := bytes.TrimSpace(res.body)
	if len(body) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		return nil, &APIError{
			Kind:       KindMalformed,
			StatusCode: res.status,
			Method:     r.method,
			URL:        target,
			RequestID:  reqID,
			Attempts:   attempt,
			Message:    "response body is not valid JSON",
			Body:       truncateBody(body),
		}
	}
	return json.RawMessage(body), nil
}

func (c *Client) observe(r request, reqID string, attempt int, res result, retry bool, wait time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveAttempt(Attempt{
		Method:     r.method,
		Path:       r.path,
		RequestID:  reqID,
		Number:     attempt,
		StatusCode: res.status,
		Err:        res.err,
		Duration:   res.duration,
		Retry:      retry,
		Wait:       wait,
	})
}

func (c *Client) url(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.target.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
