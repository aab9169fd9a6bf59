package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const serviceName = "shopify-integration-service"

// StatsProvider reports background worker statistics
type StatsProvider interface {
	Stats() map[string]interface{}
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db    *gorm.DB
	stats StatsProvider
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, stats StatsProvider) *HealthHandler {
	return &HealthHandler{db: db, stats: stats}
}

// Health handles the health check endpoint
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// Ready reports whether the database is reachable
func (h *HealthHandler) Ready(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	resp := gin.H{
		"status":  "ready",
		"service": serviceName,
	}
	if h.stats != nil {
		resp["dispatcher"] = h.stats.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
