package log

import "time"

// Logger is the structured logging port of the client.
type Logger interface {
	// Debug logs per-attempt detail (request ids, durations).
	Debug(msg string, fields ...Field)

	// Info logs progress such as batch submission.
	Info(msg string, fields ...Field)

	// Warn logs recoverable conditions such as a retry about to happen.
	Warn(msg string, fields ...Field)

	// Error logs failures that are returned to the caller.
	Error(msg string, fields ...Field)
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Common field keys shared by the transport and batch packages.
const (
	KeyMethod    = "method"
	KeyPath      = "path"
	KeyAttempt   = "attempt"
	KeyStatus    = "status"
	KeyRequestID = "request_id"
	KeyWait      = "wait"
	KeyBatch     = "batch"
	KeyBatches   = "batches"
	KeyRecords   = "records"
)
