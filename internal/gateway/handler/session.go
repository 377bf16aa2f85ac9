package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Session exposes one session's state for debugging and analytics.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	snap, ok := h.store.Snapshot(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	messages := make([]map[string]string, 0, len(snap.Messages))
	for _, m := range snap.Messages {
		content := m.Content
		if runes := []rune(content); len(runes) > 100 {
			content = string(runes[:100]) + "..."
		}
		messages = append(messages, map[string]string{"role": m.Role, "content": content})
	}

	// current_intent is always present so clients can key on it; null
	// until the first analyzed turn.
	out := map[string]any{
		"session_id":     snap.SessionID,
		"message_count":  len(snap.Messages),
		"messages":       messages,
		"current_intent": nil,
		"nudges_shown":   len(snap.NudgesShown),
		"total_revenue":  fmt.Sprintf("$%.2f", snap.TotalRevenue),
	}
	if snap.CurrentIntent != nil {
		out["current_intent"] = map[string]any{
			"bucket":     snap.CurrentIntent.Bucket,
			"struggle":   snap.CurrentIntent.Struggle,
			"propensity": snap.CurrentIntent.PropensityScore,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
