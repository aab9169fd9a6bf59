package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
	"shopify-integration-service/internal/services"
)

// LogHandler handles integration log endpoints
type LogHandler struct {
	logs     *services.LogService
	webhooks *services.WebhookService
}

// NewLogHandler creates a new log handler
func NewLogHandler(logs *services.LogService, webhooks *services.WebhookService) *LogHandler {
	return &LogHandler{logs: logs, webhooks: webhooks}
}

// List returns integration logs, newest first
func (h *LogHandler) List(c *gin.Context) {
	shopID, ok := parseShopFilter(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	logs, total, err := h.logs.List(c.Request.Context(), repository.LogListOptions{
		ShopID: shopID,
		Method: c.Query("method"),
		Status: models.LogStatus(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Get returns a single log entry
func (h *LogHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	log, err := h.logs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": log})
}

// Resync replays the order sync of a log entry
func (h *LogHandler) Resync(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	log, err := h.webhooks.Resync(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": log})
}
