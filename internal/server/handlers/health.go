package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger reports backing-store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes plus the root banner.
type HealthHandler struct {
	logger  *slog.Logger
	db      Pinger
	version string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(logger *slog.Logger, db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		db:      db,
		version: version,
	}
}

// Index handles GET /.
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, map[string]string{
		"message": "minigate API",
		"version": h.version,
	}, http.StatusOK)
}

// Health handles GET /health. Liveness only; no dependencies checked.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Ready handles GET /ready. Fails with 503 when the database is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "readiness check failed", slog.Any("error", err))
		sendJSON(h.logger, w, map[string]bool{"ready": false}, http.StatusServiceUnavailable)
		return
	}
	sendJSON(h.logger, w, map[string]bool{"ready": true}, http.StatusOK)
}
