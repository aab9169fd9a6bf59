package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"shopify-integration-service/internal/middleware"
	"shopify-integration-service/internal/repository"
	"shopify-integration-service/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SyncHandler handles shop sync actions and payout endpoints
type SyncHandler struct {
	service *services.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(service *services.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// SyncPayoutsRequest optionally overrides the payout window start
type SyncPayoutsRequest struct {
	StartDate *time.Time `json:"startDate"`
}

// SyncPayouts records the payouts of a shop
func (h *SyncHandler) SyncPayouts(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SyncPayoutsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.service.SyncPayouts(c.Request.Context(), id, req.StartDate, middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// SyncProducts imports the active products of a shop
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.service.SyncProducts(c.Request.Context(), id, middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListPayouts returns payouts, newest first
func (h *SyncHandler) ListPayouts(c *gin.Context) {
	shopID, ok := parseShopFilter(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	payouts, total, err := h.service.ListPayouts(c.Request.Context(), repository.PayoutListOptions{
		ShopID: shopID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   payouts,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetPayout returns a payout with its transactions
func (h *SyncHandler) GetPayout(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	payout, err := h.service.GetPayout(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payout})
}

// SubmitPayout settles a draft payout
func (h *SyncHandler) SubmitPayout(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	payout, err := h.service.SubmitPayout(c.Request.Context(), id, middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payout})
}

// ExportPayout downloads a payout as an XLSX workbook
func (h *SyncHandler) ExportPayout(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	payout, err := h.service.GetPayout(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.ExportPayout(payout, &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+services.PayoutFilename(payout))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
