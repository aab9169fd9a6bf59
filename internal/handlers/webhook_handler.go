package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"shopify-integration-service/internal/services"
)

// WebhookHandler handles Shopify webhook endpoints
type WebhookHandler struct {
	service *services.WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// HandleShopifyWebhook verifies a webhook and queues its sync
func (h *WebhookHandler) HandleShopifyWebhook(c *gin.Context) {
	// Read raw body, the signature covers the exact bytes
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	if _, err := h.service.ProcessWebhook(c.Request.Context(), payload, headers); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
