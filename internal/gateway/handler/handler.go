// Package handler exposes the decision pipeline over the JSON REST surface.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"axon/internal/analytics"
	"axon/internal/gateway/repository/artifact"
	"axon/internal/gateway/repository/keys"
	"axon/internal/intent"
	"axon/internal/nudge"
	"axon/internal/session"
	"axon/internal/synth"
)

// ConnectionProber is the optional reasoner health probe used by /health.
type ConnectionProber interface {
	TestConnection(ctx context.Context) (string, error)
}

// Handler carries the wired pipeline plus its optional plumbing.
// The keys store and artifact store may be nil; the affected endpoints
// degrade instead of failing at startup.
type Handler struct {
	store    *session.Store
	analyzer *intent.Analyzer
	resolver *nudge.Resolver
	synth    *synth.Synthesizer
	probe    ConnectionProber
	artifact artifact.Store
	keys     *keys.Store
	hub      *analytics.Hub
	logger   *zap.Logger
}

type Deps struct {
	Store    *session.Store
	Analyzer *intent.Analyzer
	Resolver *nudge.Resolver
	Synth    *synth.Synthesizer
	Probe    ConnectionProber
	Artifact artifact.Store
	Keys     *keys.Store
	Hub      *analytics.Hub
	Logger   *zap.Logger
}

func New(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := deps.Hub
	if hub == nil {
		hub = analytics.NewHub(logger)
	}
	return &Handler{
		store:    deps.Store,
		analyzer: deps.Analyzer,
		resolver: deps.Resolver,
		synth:    deps.Synth,
		probe:    deps.Probe,
		artifact: deps.Artifact,
		keys:     deps.Keys,
		hub:      hub,
		logger:   logger,
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
