package handler

import (
	"net/http"
)

// ReadyChecker reports whether a dependency is reachable.
type ReadyChecker interface {
	IsConnected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	checks map[string]ReadyChecker
}

// NewHealthHandler creates a new health handler. checks may be nil when no
// dependency exposes liveness (e.g. the SQS backend is connectionless).
func NewHealthHandler(checks map[string]ReadyChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	for name, check := range h.checks {
		if check == nil || !check.IsConnected() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": name + " not connected",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
