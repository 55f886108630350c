package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger はヘルスチェック対象のストアです。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler はストアの疎通を確認するヘルスチェックです。
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler は新しいHealthHandlerを作成します。
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health はストアにPingし、200か503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Database connection is healthy",
		"latency": time.Since(start).String(),
	})
}
