package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	service string
	db      Pinger
	redis   Pinger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil.
func NewHealthHandler(service string, db Pinger, redis Pinger) *HealthHandler {
	return &HealthHandler{service: service, db: db, redis: redis}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
	})
}

// Ready checks if the service is ready to accept traffic
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{"service": h.service}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		body["database"] = "disconnected"
		ready = false
	} else {
		body["database"] = "connected"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			body["redis"] = "disconnected"
			ready = false
		} else {
			body["redis"] = "connected"
		}
	}

	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["status"] = "ready"
	c.JSON(http.StatusOK, body)
}
