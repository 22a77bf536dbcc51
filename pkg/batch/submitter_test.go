package batch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sapphire-forecast/sapphire-go/pkg/record"
	"github.com/sapphire-forecast/sapphire-go/pkg/transport"
)

type mockPoster struct {
	mock.Mock
}

func (m *mockPoster) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	args := m.Called(ctx, path, body)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

// chunkLen reports the number of records in a posted body.
func chunkLen(body any) int {
	switch b := body.(type) {
	case map[string][]record.Record:
		return len(b[DefaultEnvelope])
	case []record.Record:
		return len(b)
	}
	return -1
}

func TestNewSubmitter_Validation(t *testing.T) {
	_, err := NewSubmitter(nil, 10)
	assert.Error(t, err)

	_, err = NewSubmitter(&mockPoster{}, 0)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	s, err := NewSubmitter(&mockPoster{}, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Size())
}

func TestPostBatched_SplitsSequentially(t *testing.T) {
	poster := &mockPoster{}
	var sizes []int
	var firstIDs []any
	poster.On("Post", mock.Anything, "/api/preprocessing/runoff/", mock.Anything).
		Run(func(args mock.Arguments) {
			body := args.Get(2).(map[string][]record.Record)
			sizes = append(sizes, len(body["data"]))
			id, _ := body["data"][0].Get("id")
			firstIDs = append(firstIDs, id)
		}).
		Return(json.RawMessage(`{"success":true}`), nil)

	s, err := NewSubmitter(poster, 1000)
	require.NoError(t, err)

	n, err := s.PostBatched(context.Background(), "/api/preprocessing/runoff/", makeRecords(2500))
	require.NoError(t, err)
	assert.Equal(t, 2500, n)
	assert.Equal(t, []int{1000, 1000, 500}, sizes)
	assert.Equal(t, []any{int64(0), int64(1000), int64(2000)}, firstIDs)
	poster.AssertNumberOfCalls(t, "Post", 3)
}

func TestPostBatched_EmptyInputMakesNoCalls(t *testing.T) {
	poster := &mockPoster{}
	s, err := NewSubmitter(poster, 1000)
	require.NoError(t, err)

	for _, records := range [][]record.Record{nil, {}} {
		n, err := s.PostBatched(context.Background(), "/x", records)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}
	poster.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostBatched_StopsAtFirstFailure(t *testing.T) {
	apiErr := &transport.APIError{
		Kind:       transport.KindStatus,
		StatusCode: 503,
		Message:    "api request failed: 503 Service Unavailable",
		Attempts:   3,
		Transient:  true,
	}

	poster := &mockPoster{}
	poster.On("Post", mock.Anything, "/x", mock.Anything).
		Return(json.RawMessage(`{}`), nil).Once()
	poster.On("Post", mock.Anything, "/x", mock.Anything).
		Return(nil, apiErr).Once()

	var results []Result
	s, err := NewSubmitter(poster, 2, WithObserver(ObserverFunc(func(r Result) {
		results = append(results, r)
	})))
	require.NoError(t, err)

	n, err := s.PostBatched(context.Background(), "/x", makeRecords(5))
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, err.Error(), "batch 2/3")
	poster.AssertNumberOfCalls(t, "Post", 2)

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 2, be.Index)
	assert.Equal(t, 3, be.Total)
	assert.Equal(t, 2, be.Offset)
	assert.Equal(t, 2, be.Accepted)

	var got *transport.APIError
	require.True(t, errors.As(err, &got))
	assert.Same(t, apiErr, got)
	assert.ErrorIs(t, err, transport.ErrRetriesExhausted)

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Records)
	assert.Equal(t, 2, results[1].Index)
	assert.Equal(t, 3, results[1].Total)
	assert.Same(t, apiErr, results[1].Err)
}

func TestPostBatched_FirstBatchFails(t *testing.T) {
	poster := &mockPoster{}
	poster.On("Post", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("boom")).Once()

	s, err := NewSubmitter(poster, 10)
	require.NoError(t, err)

	n, err := s.PostBatched(context.Background(), "/x", makeRecords(25))
	assert.EqualError(t, err, "batch 1/3: boom")
	assert.Equal(t, 0, n)
	poster.AssertNumberOfCalls(t, "Post", 1)
}

func TestPostBatched_Envelope(t *testing.T) {
	t.Run("default wraps in data", func(t *testing.T) {
		poster := &mockPoster{}
		poster.On("Post", mock.Anything, mock.Anything, mock.MatchedBy(func(body any) bool {
			_, ok := body.(map[string][]record.Record)
			return ok && chunkLen(body) == 3
		})).Return(json.RawMessage(`{}`), nil)

		s, _ := NewSubmitter(poster, 5)
		n, err := s.PostBatched(context.Background(), "/x", makeRecords(3))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		poster.AssertExpectations(t)
	})

	t.Run("empty envelope sends bare array", func(t *testing.T) {
		poster := &mockPoster{}
		poster.On("Post", mock.Anything, mock.Anything, mock.MatchedBy(func(body any) bool {
			_, ok := body.([]record.Record)
			return ok && chunkLen(body) == 3
		})).Return(json.RawMessage(`{}`), nil)

		s, _ := NewSubmitter(poster, 5, WithEnvelope(""))
		_, err := s.PostBatched(context.Background(), "/x", makeRecords(3))
		require.NoError(t, err)
		poster.AssertExpectations(t)
	})

	t.Run("payload encodes in record order", func(t *testing.T) {
		s, _ := NewSubmitter(&mockPoster{}, 5)
		raw, err := json.Marshal(s.payload(Batch{Records: makeRecords(1)}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":[{"id":0,"code":"15013"}]}`, string(raw))
	})
}
