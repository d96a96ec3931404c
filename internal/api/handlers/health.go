// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/docrepo-service/internal/api/dto"
	"github.com/unifiedui/docrepo-service/internal/core/cache"
	"github.com/unifiedui/docrepo-service/internal/core/docdb"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	docDBClient docdb.Client
	cache       cache.Cache
}

// NewHealthHandler creates a new HealthHandler. c may be nil when caching is disabled.
func NewHealthHandler(docDBClient docdb.Client, c cache.Cache) *HealthHandler {
	return &HealthHandler{
		docDBClient: docDBClient,
		cache:       c,
	}
}

// Health handles the /health endpoint.
// @Summary Health check
// @Description Returns the overall health status and component statuses
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service healthy"
// @Failure 503 {object} dto.HealthResponse "Service unhealthy"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	components := make(map[string]string)
	healthy := true

	if err := h.docDBClient.Ping(c.Request.Context()); err != nil {
		components["docdb"] = "unhealthy"
		healthy = false
	} else {
		components["docdb"] = "healthy"
	}

	switch {
	case h.cache == nil:
		components["cache"] = "disabled"
	case h.cache.Ping(c.Request.Context()) != nil:
		// The document cache is optional; an unreachable cache degrades reads only.
		components["cache"] = "unhealthy"
	default:
		components["cache"] = "healthy"
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, dto.HealthResponse{
		Status:     status,
		Components: components,
	})
}

// Ready handles the /ready endpoint.
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service ready"
// @Failure 503 {object} dto.HealthResponse "Service not ready"
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.docDBClient.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "docdb unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// Live handles the /live endpoint.
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service alive"
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
