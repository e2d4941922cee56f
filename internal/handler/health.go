package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// readinessTimeout bounds all dependency checks of one /readyz call.
const readinessTimeout = 5 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	logger *slog.Logger
	checks []namedCheck
}

type namedCheck struct {
	name    string
	checker HealthChecker
}

// NewHealthHandler creates a HealthHandler. A nil cache reports
// "not configured" and does not affect readiness.
func NewHealthHandler(logger *slog.Logger, db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		checks: []namedCheck{
			{name: "postgres", checker: db},
			{name: "redis", checker: cache},
		},
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe. It does not touch dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz returns 200 only when every configured dependency answers.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	healthy := true

	for _, c := range h.checks {
		if c.checker == nil {
			checks[c.name] = "not configured"
			continue
		}
		if err := c.checker.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", "dependency", c.name, "error", err)
			checks[c.name] = "unavailable"
			healthy = false
			continue
		}
		checks[c.name] = "ok"
	}

	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}
