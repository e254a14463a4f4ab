package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	service        string
	artifactDigest string
	checks         map[string]ReadinessCheck
}

func NewHealthHandler(service, artifactDigest string, checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{service: service, artifactDigest: artifactDigest, checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready runs every dependency check. Routes are only registered once the
// artifacts have loaded, so the digest is always present here.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status":         state,
		"artifactDigest": h.artifactDigest,
		"checks":         results,
		"time":           time.Now().UTC().Format(time.RFC3339),
	})
}
