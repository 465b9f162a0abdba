package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// Pinger is the slice of *sql.DB the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandlers reports process, database and cache health.
type HealthHandlers struct {
	db          Pinger
	cache       *stores.PageStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(db Pinger, cache *stores.PageStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache, logger: logger, perfTracker: perfTracker}
}

// GetHealth handles GET /api/v1/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dbStatus := "ok"
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Database().Error("Health check ping failed", "error", err.Error())
		status = http.StatusServiceUnavailable
		dbStatus = "unreachable"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbStatus,
		"uptime":   h.perfTracker.Uptime().Round(time.Second).String(),
	})
}

// GetStats handles GET /api/v1/health/stats - cache and operation timings
func (h *HealthHandlers) GetStats(c *gin.Context) {
	stats := h.perfTracker.Stats()
	operations := make([]gin.H, 0, len(stats))
	for _, s := range stats {
		operations = append(operations, gin.H{
			"operation": s.Operation,
			"count":     s.Count,
			"failures":  s.Failures,
			"averageMs": s.Average().Milliseconds(),
			"maxMs":     s.Max.Milliseconds(),
		})
	}
	response := gin.H{
		"cache":      h.cache.Stats(),
		"operations": operations,
		"uptime":     h.perfTracker.Uptime().Round(time.Second).String(),
	}
	if pageKey := c.Query("pageKey"); pageKey != "" {
		response["recent"] = h.perfTracker.Recent(pageKey)
	}
	c.JSON(http.StatusOK, response)
}
