package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups       uint64
	LoginsSuccess uint64
	LoginsFailed  uint64

	TranscriptionsSuccess        uint64
	TranscriptionsFailed         uint64
	TranscriptionsTimeout        uint64
	TranscriptionDurationCount   uint64
	TranscriptionDurationTotalNs int64

	HistoryCacheHits   uint64
	HistoryCacheMisses uint64

	EventsPublished uint64
	EventsDropped   uint64
	AudioArchived   uint64
	ArchiveFailures uint64
}

// InMemoryRecorder stores metrics in memory. It backs /metrics and tests.
type InMemoryRecorder struct {
	signups       atomic.Uint64
	loginsSuccess atomic.Uint64
	loginsFailed  atomic.Uint64

	transcriptionsSuccess        atomic.Uint64
	transcriptionsFailed         atomic.Uint64
	transcriptionsTimeout        atomic.Uint64
	transcriptionDurationCount   atomic.Uint64
	transcriptionDurationTotalNs atomic.Int64

	historyCacheHits   atomic.Uint64
	historyCacheMisses atomic.Uint64

	eventsPublished atomic.Uint64
	eventsDropped   atomic.Uint64
	audioArchived   atomic.Uint64
	archiveFailures atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Signups:                      m.signups.Load(),
		LoginsSuccess:                m.loginsSuccess.Load(),
		LoginsFailed:                 m.loginsFailed.Load(),
		TranscriptionsSuccess:        m.transcriptionsSuccess.Load(),
		TranscriptionsFailed:         m.transcriptionsFailed.Load(),
		TranscriptionsTimeout:        m.transcriptionsTimeout.Load(),
		TranscriptionDurationCount:   m.transcriptionDurationCount.Load(),
		TranscriptionDurationTotalNs: m.transcriptionDurationTotalNs.Load(),
		HistoryCacheHits:             m.historyCacheHits.Load(),
		HistoryCacheMisses:           m.historyCacheMisses.Load(),
		EventsPublished:              m.eventsPublished.Load(),
		EventsDropped:                m.eventsDropped.Load(),
		AudioArchived:                m.audioArchived.Load(),
		ArchiveFailures:              m.archiveFailures.Load(),
	}
}

// IncSignup increments the created-accounts counter.
func (m *InMemoryRecorder) IncSignup() {
	m.signups.Add(1)
}

// IncLogin increments login counters based on status.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == StatusSuccess {
		m.loginsSuccess.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

// IncTranscription increments transcription counters based on status.
func (m *InMemoryRecorder) IncTranscription(status string) {
	switch status {
	case StatusSuccess:
		m.transcriptionsSuccess.Add(1)
	case StatusTimeout:
		m.transcriptionsTimeout.Add(1)
	default:
		m.transcriptionsFailed.Add(1)
	}
}

// ObserveTranscriptionDuration records one upstream call.
func (m *InMemoryRecorder) ObserveTranscriptionDuration(duration time.Duration) {
	m.transcriptionDurationCount.Add(1)
	m.transcriptionDurationTotalNs.Add(duration.Nanoseconds())
}

// IncHistoryCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncHistoryCacheHit() {
	m.historyCacheHits.Add(1)
}

// IncHistoryCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncHistoryCacheMiss() {
	m.historyCacheMisses.Add(1)
}

// IncEventPublished increments event counters based on status.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == StatusSuccess {
		m.eventsPublished.Add(1)
		return
	}
	m.eventsDropped.Add(1)
}

// IncAudioArchived increments archive counters based on status.
func (m *InMemoryRecorder) IncAudioArchived(status string) {
	if status == StatusSuccess {
		m.audioArchived.Add(1)
		return
	}
	m.archiveFailures.Add(1)
}

var (
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
)
