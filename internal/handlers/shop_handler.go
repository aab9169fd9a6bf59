package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/services"
)

// ShopHandler handles shop configuration endpoints
type ShopHandler struct {
	service *services.ShopService
}

// NewShopHandler creates a new shop handler
func NewShopHandler(service *services.ShopService) *ShopHandler {
	return &ShopHandler{service: service}
}

// List returns every shop
func (h *ShopHandler) List(c *gin.Context) {
	shops, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  shops,
		"total": len(shops),
	})
}

// Get returns a single shop
func (h *ShopHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	shop, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shop})
}

// Create creates a shop
func (h *ShopHandler) Create(c *gin.Context) {
	var req services.ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": shop})
}

// Update replaces a shop's configuration
func (h *ShopHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shop})
}

// Delete removes a shop and its stored credentials
func (h *ShopHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "shop deleted"})
}

// UpdateCredentials replaces a shop's API credentials
func (h *ShopHandler) UpdateCredentials(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	shop, err := h.service.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.service.SetCredentials(ctx, shop, &creds); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "credentials updated"})
}
