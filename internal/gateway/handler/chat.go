package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"axon/internal/analytics"
	"axon/internal/llmclient"
	"axon/internal/types"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Image     string `json:"image,omitempty"`
	DemoMode  bool   `json:"demo_mode,omitempty"`
}

type chatResponse struct {
	Response       string         `json:"response"`
	SessionID      string         `json:"session_id"`
	IntentAnalysis map[string]any `json:"intent_analysis,omitempty"`
	NudgeInjected  bool           `json:"nudge_injected"`
	NudgeDetails   map[string]any `json:"nudge_details,omitempty"`
}

// Chat runs the full pipeline for one turn: analyze, trigger, resolve,
// synthesize, then record side effects on the session.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	ctx := r.Context()

	sessionID := h.store.GetOrCreate(req.SessionID)

	// Keep the raw payload out of the text log; the history only notes the
	// upload, the artifact store keeps the bytes.
	msgContent := req.Message
	if req.Image != "" {
		msgContent += " [User uploaded an image]"
	}

	// The whole turn runs under the session's turn lock: concurrent posts
	// for the same session are sequenced, so the analysis always matches
	// the history it was computed from and appends never interleave.
	var resp chatResponse
	h.store.WithTurn(sessionID, func() {
		var messages []types.Message
		h.store.Mutate(sessionID, func(s *types.ConversationState) {
			s.AddMessage("user", msgContent)
			messages = append([]types.Message(nil), s.Messages...)
		})

		if req.Image != "" && h.artifact != nil {
			h.archiveImage(ctx, sessionID, len(messages), req.Image)
		}

		analysis := h.analyzer.Analyze(ctx, messages, req.Image, req.DemoMode)
		h.store.Mutate(sessionID, func(s *types.ConversationState) {
			a := analysis
			s.CurrentIntent = &a
		})

		var resolved *types.Nudge
		if h.analyzer.ShouldTrigger(analysis) {
			resolved = h.resolver.FindNudge(ctx, analysis, "")
		}
		injected := h.synth.Accepts(resolved)

		response := h.synth.Respond(ctx, req.Message, h.recentContext(sessionID), resolved)

		h.store.Mutate(sessionID, func(s *types.ConversationState) {
			s.AddMessage("assistant", response)
		})

		var revenue float64
		if injected {
			revenue = 2.50
			if analysis.Bucket.Commercial() {
				revenue = 4.50
			}
			event := types.RevenueEvent{
				Amount:    revenue,
				Source:    "nudge_impression",
				Timestamp: time.Now(),
				Bucket:    string(analysis.Bucket),
				SessionID: sessionID,
			}
			h.store.Mutate(sessionID, func(s *types.ConversationState) {
				s.NudgesShown = append(s.NudgesShown, *resolved)
				s.TotalRevenue += revenue
				s.RevenueEvents = append(s.RevenueEvents, event)
			})
			h.hub.Broadcast(analytics.Event{
				Type:      "nudge_impression",
				SessionID: sessionID,
				Bucket:    string(analysis.Bucket),
				Product:   resolved.ProductName,
				Revenue:   revenue,
				Timestamp: event.Timestamp,
			})
		}
		h.recordUsage(ctx, sessionID, revenue)

		resp = chatResponse{
			Response:  response,
			SessionID: sessionID,
			IntentAnalysis: map[string]any{
				"bucket":     analysis.Bucket,
				"struggle":   analysis.Struggle,
				"propensity": analysis.PropensityScore,
				"entities":   analysis.DetectedEntities,
				"is_safe":    analysis.IsSafeForAds,
			},
			NudgeInjected: injected,
		}
		if injected {
			resp.NudgeDetails = map[string]any{
				"product":   resolved.ProductName,
				"vendor":    resolved.VendorName,
				"relevance": fmt.Sprintf("%.0f%%", resolved.RelevanceScore*100),
				"link":      resolved.Link,
				"images":    resolved.Images,
			}
		}
	})
	writeJSON(w, http.StatusOK, resp)
}

// recentContext renders the last few turns for the synthesizer prompt.
func (h *Handler) recentContext(sessionID string) string {
	snap, ok := h.store.Snapshot(sessionID)
	if !ok {
		return ""
	}
	recent := snap.RecentMessages(5)
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		lines = append(lines, strings.ToUpper(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func (h *Handler) archiveImage(ctx context.Context, sessionID string, turn int, image string) {
	data, err := llmclient.DecodeImagePayload(image)
	if err != nil {
		h.logger.Warn("image payload undecodable, skipping archive",
			zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	name := fmt.Sprintf("%d.jpg", turn)
	if err := h.artifact.Put(ctx, sessionID, name, data); err != nil {
		h.logger.Warn("image archive failed",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (h *Handler) recordUsage(ctx context.Context, sessionID string, revenue float64) {
	if h.keys == nil {
		return
	}
	if err := h.keys.RecordUsage(ctx, sessionID, revenue); err != nil {
		h.logger.Warn("usage counters not recorded", zap.Error(err))
	}
}
