package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shopify-integration-service/internal/repository"
	"shopify-integration-service/internal/services"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// statusFor maps service and repository errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, services.ErrShopNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrShopDisabled):
		return http.StatusForbidden
	case errors.Is(err, services.ErrPayoutSubmitted):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidShop),
		errors.Is(err, services.ErrNoCredentials),
		errors.Is(err, services.ErrUnsupportedTopic),
		errors.Is(err, services.ErrAccountNotConfigured):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// parseID reads the :id path parameter
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// parseShopFilter reads an optional shopId query parameter
func parseShopFilter(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("shopId")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shopId"})
		return nil, false
	}
	return &id, true
}

// pagination reads limit and offset query parameters
func pagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
