package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DependencyChecker reports whether one external dependency is reachable.
type DependencyChecker func(ctx context.Context) error

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	version string
	checks  map[string]DependencyChecker
	logger  *zap.Logger
}

// NewHealthHandlers creates health handlers over named dependency checks.
func NewHealthHandlers(version string, checks map[string]DependencyChecker, logger *zap.Logger) *HealthHandlers {
	return &HealthHandlers{version: version, checks: checks, logger: logger}
}

// Health handles GET /api/v1/health. The response is 200 when every
// dependency check passes, 503 otherwise, always with per-check detail.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			results[name] = "ok"
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       overall,
		"version":      h.version,
		"dependencies": results,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
