package handler

import (
	"fmt"
	"net/http"

	"github.com/murmur/murmur/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "murmur_signups_total %d\n", snap.Signups)
	writeMetric(w, "murmur_logins_total{status=\"success\"} %d\n", snap.LoginsSuccess)
	writeMetric(w, "murmur_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "murmur_transcriptions_total{status=\"success\"} %d\n", snap.TranscriptionsSuccess)
	writeMetric(w, "murmur_transcriptions_total{status=\"failed\"} %d\n", snap.TranscriptionsFailed)
	writeMetric(w, "murmur_transcriptions_total{status=\"timeout\"} %d\n", snap.TranscriptionsTimeout)
	writeMetric(w, "murmur_transcription_duration_seconds_count %d\n", snap.TranscriptionDurationCount)
	writeMetric(w, "murmur_transcription_duration_seconds_sum %.6f\n", float64(snap.TranscriptionDurationTotalNs)/1e9)

	writeMetric(w, "murmur_history_cache_hits_total %d\n", snap.HistoryCacheHits)
	writeMetric(w, "murmur_history_cache_misses_total %d\n", snap.HistoryCacheMisses)

	writeMetric(w, "murmur_events_published_total{status=\"success\"} %d\n", snap.EventsPublished)
	writeMetric(w, "murmur_events_published_total{status=\"dropped\"} %d\n", snap.EventsDropped)
	writeMetric(w, "murmur_audio_archived_total{status=\"success\"} %d\n", snap.AudioArchived)
	writeMetric(w, "murmur_audio_archived_total{status=\"failed\"} %d\n", snap.ArchiveFailures)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
