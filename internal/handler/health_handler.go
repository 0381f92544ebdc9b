package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	StatusOk             = "ok"
	StatusDown           = "down"
	healthStorageTimeout = 2 * time.Second
)

// Pinger reports whether the task store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// CheckHealth pings the task store.
// @Summary Storage health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthStorageTimeout)
	defer cancel()

	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: StatusDown, Storage: StatusDown})
		return
	}
	if err := h.store.Ping(ctx); err != nil {
		zap.L().Warn("storage ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: StatusDown, Storage: StatusDown})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: StatusOk, Storage: StatusOk})
}
