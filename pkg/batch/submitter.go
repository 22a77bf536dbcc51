package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sapphire-forecast/sapphire-go/pkg/log"
	"github.com/sapphire-forecast/sapphire-go/pkg/record"
)

// DefaultEnvelope is the JSON key the API expects around posted records.
const DefaultEnvelope = "data"

// Poster posts a JSON body and returns the JSON response.
// *transport.Client satisfies it.
type Poster interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Submitter posts record sets in sequential chunks.
type Submitter struct {
	poster   Poster
	size     int
	envelope string
	logger   log.Logger
	observer Observer
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithLogger sets the logger for per-batch progress.
func WithLogger(logger log.Logger) Option {
	return func(s *Submitter) {
		s.logger = log.OrNoop(logger)
	}
}

// WithEnvelope sets the key each chunk is wrapped in. An empty key sends the
// bare JSON array.
func WithEnvelope(key string) Option {
	return func(s *Submitter) {
		s.envelope = key
	}
}

// WithObserver registers an observer notified after every batch.
func WithObserver(o Observer) Option {
	return func(s *Submitter) {
		s.observer = o
	}
}

// NewSubmitter creates a Submitter posting through poster in chunks of size.
func NewSubmitter(poster Poster, size int, opts ...Option) (*Submitter, error) {
	if poster == nil {
		return nil, fmt.Errorf("batch: poster is required")
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}
	s := &Submitter{
		poster:   poster,
		size:     size,
		envelope: DefaultEnvelope,
		logger:   log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Size returns the configured chunk size.
func (s *Submitter) Size() int {
	return s.size
}

// PostBatched posts records to path in order and returns how many records
// were accepted. An empty record set returns 0 without touching the network.
//
// The first failing chunk aborts the run: later chunks are not sent and the
// returned count is 0. The error is a *Error carrying the chunk position and
// wrapping the poster's error, so errors.As still finds the underlying
// *transport.APIError.
func (s *Submitter) PostBatched(ctx context.Context, path string, records []record.Record) (int, error) {
	batches, err := Split(records, s.size)
	if err != nil {
		return 0, err
	}
	if len(batches) == 0 {
		return 0, nil
	}

	posted := 0
	for _, b := range batches {
		s.logger.Info("posting batch",
			log.String(log.KeyPath, path),
			log.String(log.KeyBatch, b.String()),
			log.Int(log.KeyRecords, b.Size()))

		start := time.Now()
		_, err := s.poster.Post(ctx, path, s.payload(b))
		s.observe(path, b, time.Since(start), err)

		if err != nil {
			s.logger.Error("batch failed",
				log.String(log.KeyPath, path),
				log.String(log.KeyBatch, b.String()),
				log.Int("accepted_before", posted),
				log.Err(err))
			return 0, &Error{Index: b.Index, Total: b.Total, Offset: b.Offset, Accepted: posted, Err: err}
		}
		posted += b.Size()
	}

	s.logger.Info("all batches posted",
		log.String(log.KeyPath, path),
		log.Int(log.KeyBatches, len(batches)),
		log.Int(log.KeyRecords, posted))
	return posted, nil
}

func (s *Submitter) payload(b Batch) any {
	if s.envelope == "" {
		return b.Records
	}
	return map[string][]record.Record{s.envelope: b.Records}
}

func (s *Submitter) observe(path string, b Batch, d time.Duration, err error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveBatch(Result{
		Path:     path,
		Index:    b.Index,
		Total:    b.Total,
		Records:  b.Size(),
		Duration: d,
		Err:      err,
	})
}
