// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcomes of a delete-user request.
const (
	OutcomeDeleted  = "deleted"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User deletion
	IncUserDelete(outcome string)
	ObserveUserDeleteDuration(duration time.Duration)

	// Authentication gate
	IncAuthFailure(reason string)
	IncAuthCacheHit()
	IncAuthCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
