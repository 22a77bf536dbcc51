package batch

import "time"

// Result describes one submitted batch.
type Result struct {
	Path     string
	Index    int
	Total    int
	Records  int
	Duration time.Duration
	Err      error
}

// Observer is notified after each batch is submitted, successful or not.
type Observer interface {
	ObserveBatch(r Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r Result)

// ObserveBatch calls f(r).
func (f ObserverFunc) ObserveBatch(r Result) { f(r) }
