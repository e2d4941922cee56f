package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncSignup()
	m.IncLogin(StatusSuccess)
	m.IncLogin(StatusFailed)
	m.IncLogin(StatusFailed)
	m.IncTranscription(StatusSuccess)
	m.IncTranscription(StatusTimeout)
	m.IncTranscription(StatusFailed)
	m.ObserveTranscriptionDuration(1500 * time.Millisecond)
	m.ObserveTranscriptionDuration(500 * time.Millisecond)
	m.IncHistoryCacheHit()
	m.IncHistoryCacheMiss()
	m.IncHistoryCacheMiss()
	m.IncEventPublished(StatusSuccess)
	m.IncEventPublished(StatusDropped)
	m.IncAudioArchived(StatusFailed)

	assert.Equal(t, Snapshot{
		Signups:                      1,
		LoginsSuccess:                1,
		LoginsFailed:                 2,
		TranscriptionsSuccess:        1,
		TranscriptionsFailed:         1,
		TranscriptionsTimeout:        1,
		TranscriptionDurationCount:   2,
		TranscriptionDurationTotalNs: int64(2 * time.Second),
		HistoryCacheHits:             1,
		HistoryCacheMisses:           2,
		EventsPublished:              1,
		EventsDropped:                1,
		ArchiveFailures:              1,
	}, m.Snapshot())
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncHistoryCacheHit()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), m.Snapshot().HistoryCacheHits)
}

func TestNoop_SatisfiesRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder = NewNoop()
	r.IncSignup()
	r.IncTranscription(StatusSuccess)
	r.ObserveTranscriptionDuration(time.Second)
}
