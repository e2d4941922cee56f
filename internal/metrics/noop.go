package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncSignup()                                          {}
func (n *NoopRecorder) IncLogin(status string)                              {}
func (n *NoopRecorder) IncTranscription(status string)                      {}
func (n *NoopRecorder) ObserveTranscriptionDuration(duration time.Duration) {}
func (n *NoopRecorder) IncHistoryCacheHit()                                 {}
func (n *NoopRecorder) IncHistoryCacheMiss()                                {}
func (n *NoopRecorder) IncEventPublished(status string)                     {}
func (n *NoopRecorder) IncAudioArchived(status string)                      {}
