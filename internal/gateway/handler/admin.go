package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type createKeyRequest struct {
	Name string `json:"name"`
}

// ListKeys returns all operator API keys, newest first.
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	if h.keys == nil {
		writeError(w, http.StatusServiceUnavailable, "key store not configured")
		return
	}
	out, err := h.keys.List(r.Context())
	if err != nil {
		h.logger.Error("list keys failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list keys")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateKey mints a new API key.
func (h *Handler) CreateKey(w http.ResponseWriter, r *http.Request) {
	if h.keys == nil {
		writeError(w, http.StatusServiceUnavailable, "key store not configured")
		return
	}
	var req createKeyRequest
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	key, err := h.keys.Create(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		h.logger.Error("create key failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create key")
		return
	}
	writeJSON(w, http.StatusOK, key)
}

// RevokeKey flips a key's status to revoked.
func (h *Handler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	if h.keys == nil {
		writeError(w, http.StatusServiceUnavailable, "key store not configured")
		return
	}
	ok, err := h.keys.Revoke(r.Context(), chi.URLParam(r, "keyID"))
	if err != nil {
		h.logger.Error("revoke key failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not revoke key")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Key not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// AdminStats reads the operator counters from Redis.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	if h.keys == nil {
		writeError(w, http.StatusServiceUnavailable, "key store not configured")
		return
	}
	stats, err := h.keys.ReadStats(r.Context())
	if err != nil {
		h.logger.Error("read stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
