package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-api/pkg/logger"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	environment string
	started     time.Time
	checks      map[string]Check
	now         func() time.Time
}

func NewHealthHandler(environment string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{environment: environment, started: time.Now(), checks: checks, now: time.Now}
}

// Health is the liveness probe.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"status":      "ok",
		"environment": h.environment,
		"timestamp":   h.now().UTC().Format(time.RFC3339),
	})
}

// Ready returns 200 only when every dependency check passes.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	deps := map[string]bool{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			logger.Warnf("readiness: %s: %v", name, err)
			deps[name] = false
			ready = false
			continue
		}
		deps[name] = true
	}

	uptime := time.Since(h.started).Round(time.Second).String()
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "not_ready", "deps": deps, "uptime": uptime})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ready", "deps": deps, "uptime": uptime})
}
