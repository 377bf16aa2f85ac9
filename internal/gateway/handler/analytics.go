package handler

import (
	"net/http"
	"time"

	"axon/internal/analytics"
)

// Analytics returns the aggregated dashboard payload.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	report := analytics.BuildReport(h.store.Snapshots(), time.Now())
	writeJSON(w, http.StatusOK, report)
}

// Stats is the lightweight counters endpoint.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var total float64
	for _, s := range h.store.Snapshots() {
		total += s.TotalRevenue
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions": h.store.Len(),
		"total_revenue":   total,
	})
}
