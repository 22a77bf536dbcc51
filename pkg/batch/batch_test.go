package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapphire-forecast/sapphire-go/pkg/record"
)

func makeRecords(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		out[i] = record.New(record.F("id", int64(i)), record.F("code", "15013"))
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{name: "uneven", n: 2500, size: 1000, sizes: []int{1000, 1000, 500}},
		{name: "exact", n: 2000, size: 1000, sizes: []int{1000, 1000}},
		{name: "smaller than size", n: 3, size: 1000, sizes: []int{3}},
		{name: "size one", n: 3, size: 1, sizes: []int{1, 1, 1}},
		{name: "empty", n: 0, size: 10, sizes: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := makeRecords(tt.n)
			batches, err := Split(records, tt.size)
			require.NoError(t, err)
			require.Len(t, batches, len(tt.sizes))

			next := 0
			for i, b := range batches {
				assert.Equal(t, i+1, b.Index)
				assert.Equal(t, len(tt.sizes), b.Total)
				assert.Equal(t, next, b.Offset)
				assert.Equal(t, tt.sizes[i], b.Size())
				for _, r := range b.Records {
					id, _ := r.Get("id")
					assert.Equal(t, int64(next), id, "records must keep input order")
					next++
				}
			}
			assert.Equal(t, tt.n, next, "every record appears exactly once")
		})
	}
}

func TestSplit_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Split(makeRecords(5), size)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	}
}

func TestSplit_ChunksDoNotOverlap(t *testing.T) {
	records := makeRecords(5)
	batches, err := Split(records, 2)
	require.NoError(t, err)

	// Appending to a chunk must not clobber the next one.
	grown := append(batches[0].Records, record.New(record.F("id", int64(99))))
	assert.Len(t, grown, 3)
	id, _ := batches[1].Records[0].Get("id")
	assert.Equal(t, int64(2), id)
}

func TestBatch_String(t *testing.T) {
	assert.Equal(t, "2/3", Batch{Index: 2, Total: 3}.String())
}
