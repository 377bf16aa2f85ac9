package handler

import "net/http"

// Root is the service banner and component overview.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "axon",
		"status":      "online",
		"version":     "0.3.0",
		"description": "Semantic monetization layer for conversational assistants",
		"components": map[string]string{
			"intent_analyzer": "active",
			"nudge_resolver":  "active",
			"synthesizer":     "active",
		},
	})
}

// Health probes the reasoner connection in addition to process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"status":          "healthy",
		"active_sessions": h.store.Len(),
	}
	if h.probe != nil {
		reply, err := h.probe.TestConnection(r.Context())
		if err != nil {
			out["status"] = "degraded"
			out["reasoner"] = map[string]string{"status": "error", "error": err.Error()}
		} else {
			out["reasoner"] = map[string]string{"status": "connected", "response": reply}
		}
	}
	writeJSON(w, http.StatusOK, out)
}
