package api

import (
	"context"
	"net/http"
	"time"

	"github.com/janseva/constituency-admin/internal/middleware"
)

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	logger.Debug("Health check requested")

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// Returns 200 if ready, 503 if not ready.
func (s *Server) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLoggerFromContext(r.Context())
	logger.Debug("Readiness check requested")

	checks := make(map[string]string)

	dbCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Ping(dbCtx); err != nil {
		logger.Warn("Database health check failed", "error", err)
		checks["database"] = "failed: " + err.Error()

		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:    "not_ready",
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
		return
	}

	checks["database"] = "ok"
	logger.Debug("Readiness check passed")

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}
