package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard/internal/infrastructure/logger"
	"github.com/taskboard/taskboard/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger is implemented by the database and the list cache
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and dependency health
type HealthHandler struct {
	database Pinger
	cache    Pinger
	now      func() time.Time
}

// NewHealthHandler creates a HealthHandler. cache may be nil.
func NewHealthHandler(database, cache Pinger) *HealthHandler {
	return &HealthHandler{database: database, cache: cache, now: time.Now}
}

// RegisterRoutes mounts GET /health
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Check)
}

// Check returns 200 when the database answers and 503 otherwise. A failing
// cache degrades the report but not the status, since List falls back to
// the store.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	reqLog := logger.GetGinLogger(c)
	resp := dto.HealthResponse{
		Status:   "healthy",
		Time:     h.now().UTC().Format(time.RFC3339),
		Database: "ok",
	}
	status := http.StatusOK

	if err := h.database.Ping(ctx); err != nil {
		reqLog.Warn("Health check failed", zap.String("component", "database"), zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "error"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			reqLog.Warn("Health check degraded", zap.String("component", "cache"), zap.Error(err))
			resp.Cache = "error"
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	c.JSON(status, resp)
}
