package batch

import (
	"errors"
	"fmt"

	"github.com/sapphire-forecast/sapphire-go/pkg/record"
)

// ErrInvalidBatchSize is returned when a batch size is not positive.
var ErrInvalidBatchSize = errors.New("batch: size must be positive")

// Batch is one contiguous chunk of a record set.
type Batch struct {
	// Index is the 1-based position of the chunk.
	Index int

	// Total is the number of chunks the record set was split into.
	Total int

	// Offset is the position of the chunk's first record in the input.
	Offset int

	Records []record.Record
}

// Size returns the number of records in the batch.
func (b Batch) Size() int {
	return len(b.Records)
}

// String returns "n/total".
func (b Batch) String() string {
	return fmt.Sprintf("%d/%d", b.Index, b.Total)
}

// Error reports the chunk that stopped a PostBatched run. It unwraps to
// the poster's error.
type Error struct {
	Index  int
	Total  int
	Offset int

	// Accepted is the number of records the server took before the failure.
	Accepted int

	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("batch %d/%d: %v", e.Index, e.Total, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Split partitions records into ceil(len/size) order-preserving chunks.
// Every chunk but the last holds exactly size records. The chunks share the
// input's backing array.
func Split(records []record.Record, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}
	if len(records) == 0 {
		return nil, nil
	}

	total := (len(records) + size - 1) / size
	batches := make([]Batch, 0, total)
	for off := 0; off < len(records); off += size {
		end := off + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, Batch{
			Index:   len(batches) + 1,
			Total:   total,
			Offset:  off,
			Records: records[off:end:end],
		})
	}
	return batches, nil
}
