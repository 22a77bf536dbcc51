package transport

import "time"

// Attempt describes one HTTP request made on behalf of a Get or Post.
type Attempt struct {
	Method     string
	Path       string
	RequestID  string
	Number     int
	StatusCode int
	Err        error
	Duration   time.Duration

	// Retry is true when another attempt follows after Wait.
	Retry bool
	Wait  time.Duration
}

// Success reports whether the attempt got a 2xx response.
func (a Attempt) Success() bool {
	return a.Err == nil && a.StatusCode/100 == 2
}

// Observer receives one Attempt per request made. Calls happen synchronously
// on the caller's goroutine.
type Observer interface {
	ObserveAttempt(a Attempt)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(a Attempt)

// ObserveAttempt calls f(a).
func (f ObserverFunc) ObserveAttempt(a Attempt) { f(a) }
