// Package metrics aggregates per-provider request outcomes.
package metrics

import "time"

// Sink receives the outcome of every relayed request.
type Sink interface {
	// RecordRequest records a completed or failed request.
	RecordRequest(provider string, duration time.Duration, success bool)

	// RecordAborted records a request whose client went away.
	// Aborts are counted as requests but never as errors.
	RecordAborted(provider string, duration time.Duration)
}
