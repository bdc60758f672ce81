package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/gin-gonic/gin"
)

// PingFunc checks a downstream dependency. A nil PingFunc means the
// dependency is not part of this deployment (memory-backed demo mode).
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	pingDB PingFunc
}

func NewHealthHandler(pingDB PingFunc) *HealthHandler {
	return &HealthHandler{pingDB: pingDB}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.pingDB == nil {
		ctx.JSON(http.StatusOK, gin.H{"status": "ready", "database": "not_configured"})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := h.pingDB(cctx); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "database": "unreachable"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "database": "ok"})
}
