package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports whether the database answers
type HealthHandler struct {
	ping   func(ctx context.Context) error
	logger *slog.Logger
}

// NewHealthHandler creates a health handler. A nil ping always reports ok.
func NewHealthHandler(ping func(ctx context.Context) error, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.logger.Error("❌ [HealthHandler] Database unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
