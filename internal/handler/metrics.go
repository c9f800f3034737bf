package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/userdesk/userdesk/internal/metrics"
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
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	for _, outcome := range sortedKeys(snap.UserDeletes) {
		writeMetric(w, "userdesk_user_deletes_total{outcome=%q} %d\n", outcome, snap.UserDeletes[outcome])
	}
	writeMetric(w, "userdesk_user_delete_duration_seconds_count %d\n", snap.UserDeleteDurationCount)
	writeMetric(w, "userdesk_user_delete_duration_seconds_sum %.6f\n", float64(snap.UserDeleteDurationTotalNs)/1e9)

	for _, reason := range sortedKeys(snap.AuthFailures) {
		writeMetric(w, "userdesk_auth_failures_total{reason=%q} %d\n", reason, snap.AuthFailures[reason])
	}
	writeMetric(w, "userdesk_auth_cache_hits_total %d\n", snap.AuthCacheHits)
	writeMetric(w, "userdesk_auth_cache_misses_total %d\n", snap.AuthCacheMisses)
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
