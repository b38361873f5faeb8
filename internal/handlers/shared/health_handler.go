package handlers

import (
	"context"
	"net/http"
	"time"

	"tutorhub/internal/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is a backing service the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version    string
	dependency map[string]Pinger
}

func NewHealthHandler(version string, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, dependency: dependencies}
}

// Health reports whether every configured dependency answers a ping
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.dependency))
	healthy := true
	for name, dep := range h.dependency {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "unavailable"
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"version":   h.version,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
		"service":   utils.AppName,
	})
}
