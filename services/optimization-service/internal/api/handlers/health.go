package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/bestball/shared/types"
)

// DatabaseChecker is satisfied by *database.DB
type DatabaseChecker interface {
	HealthCheck() error
}

// CachePinger is satisfied by *cache.LineupCache
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints for optimization service
type HealthHandler struct {
	db     DatabaseChecker
	cache  CachePinger
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler. cache may be nil when Redis is not configured.
func NewHealthHandler(db DatabaseChecker, cache CachePinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := types.HealthStatus{
		Status:    "ok",
		Service:   "optimization-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// Database holds rosters and lineups
	if err := h.db.HealthCheck(); err != nil {
		response.Status = "unhealthy"
		response.Checks["database"] = "failed: " + err.Error()
	} else {
		response.Checks["database"] = "ok"
	}

	// Redis only caches solved lineups
	h.checkCache(c.Request.Context(), &response, func() {
		if response.Status == "ok" {
			response.Status = "degraded"
		}
	})

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetReady returns the readiness status
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := types.HealthStatus{
		Status:    "ready",
		Service:   "optimization-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if err := h.db.HealthCheck(); err != nil {
		response.Status = "not_ready"
		response.Checks["database"] = "failed: " + err.Error()
		h.logger.WithError(err).Warn("Readiness check failed")
	} else {
		response.Checks["database"] = "ok"
	}

	// A cache outage doesn't make the service not ready
	h.checkCache(c.Request.Context(), &response, func() {})

	statusCode := http.StatusOK
	if response.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

func (h *HealthHandler) checkCache(ctx context.Context, response *types.HealthStatus, onFailure func()) {
	if h.cache == nil {
		response.Checks["redis"] = "not_configured"
		return
	}
	if err := h.cache.Ping(ctx); err != nil {
		response.Checks["redis"] = "failed: " + err.Error()
		onFailure()
		return
	}
	response.Checks["redis"] = "ok"
}
