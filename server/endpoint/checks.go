// Package endpoint provides the health-check and build-info handlers mounted next
// to the governance API.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/govkit/component"
)

// HealthChecker returns the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// ReadyCheck reports whether queries can be answered, i.e. whether the
// registry cache has received its initial state.
type ReadyCheck func() bool

// Health reports the worst component status. Only unhealthy maps to 503;
// a degraded component (for example a lagging event sink) still serves.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var components []component.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}
		status, _ := worst(components)

		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeCheck(c, code, serviceName, string(status), gin.H{"components": components})
	}
}

// Readiness gates traffic on the initial registry sync and on every
// component being at least degraded.
func Readiness(serviceName string, checker HealthChecker, ready ReadyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		reason := ""
		if ready != nil && !ready() {
			reason = "initial sync pending"
		} else if checker != nil {
			if status, name := worst(checker(c.Request.Context())); status == component.StatusUnhealthy {
				reason = name + " unhealthy"
			}
		}

		if reason != "" {
			writeCheck(c, http.StatusServiceUnavailable, serviceName, "not_ready", gin.H{"reason": reason})
			return
		}
		writeCheck(c, http.StatusOK, serviceName, "ready", nil)
	}
}

// Liveness confirms the process can serve HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeCheck(c, http.StatusOK, serviceName, "alive", nil)
	}
}

// worst returns the most severe status and the first component carrying it.
func worst(components []component.Health) (component.HealthStatus, string) {
	status, name := component.StatusHealthy, ""
	for _, h := range components {
		switch {
		case h.Status == component.StatusUnhealthy:
			return h.Status, h.Name
		case h.Status == component.StatusDegraded && status == component.StatusHealthy:
			status, name = h.Status, h.Name
		}
	}
	return status, name
}

func writeCheck(c *gin.Context, code int, serviceName, status string, extra gin.H) {
	body := gin.H{
		"status":    status,
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}
