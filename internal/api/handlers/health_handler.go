package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/St1cky1/task-tracker/internal/log"
)

const healthTimeout = 2 * time.Second

// HealthChecker - хранилище, доступность которого проверяет /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]HealthChecker
}

func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			log.GetLogger().WithError(err).WithField("dependency", name).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "dependency": name})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
