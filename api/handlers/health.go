package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/hostmon/internal/logger"
)

const healthCheckTimeout = 5 * time.Second

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type LoopStatus interface {
	IsRunning() bool
}

type HealthHandler struct {
	store HealthChecker
	loop  LoopStatus
}

// NewHealthHandler reports on the store and, when loop is non-nil, on the
// monitoring loop.
func NewHealthHandler(store HealthChecker, loop LoopStatus) *HealthHandler {
	return &HealthHandler{store: store, loop: loop}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	if err := h.store.HealthCheck(ctx); err != nil {
		logger.WarnCtxf(ctx, "Store health check failed: %v", err)
		checks["store"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["store"] = "healthy"
	}

	if h.loop != nil {
		if h.loop.IsRunning() {
			checks["monitor"] = "running"
		} else {
			checks["monitor"] = "stopped"
			status = "unhealthy"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: now(),
		Checks:    checks,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: now(),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: now(),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: now(),
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
