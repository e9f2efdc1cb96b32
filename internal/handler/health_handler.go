package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler pings the active store.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.Store.HealthCheck(ctx); err != nil {
		h.Logger.Warn("health check failed", zap.String("database", h.Store.Name()), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: h.Store.Name()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: h.Store.Name()})
}
