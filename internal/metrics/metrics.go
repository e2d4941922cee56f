// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by the counters below.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
	StatusDropped = "dropped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncSignup()
	IncLogin(status string) // status: "success" or "failed"

	// Transcription metrics
	IncTranscription(status string) // status: "success", "failed", "timeout"
	ObserveTranscriptionDuration(duration time.Duration)

	// History cache metrics
	IncHistoryCacheHit()
	IncHistoryCacheMiss()

	// Side effects
	IncEventPublished(status string) // status: "success" or "dropped"
	IncAudioArchived(status string)  // status: "success" or "failed"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
