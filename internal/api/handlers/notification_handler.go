// internal/api/handlers/notification_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lontuktak/backend-go/internal/domain"
	"github.com/lontuktak/backend-go/internal/reorder"
	"github.com/lontuktak/backend-go/internal/service"
	"github.com/rs/zerolog/log"
)

type NotificationHandler struct {
	reportService *service.ReportService
}

func NewNotificationHandler(reportService *service.ReportService) *NotificationHandler {
	return &NotificationHandler{reportService: reportService}
}

// List returns the full reorder report computed from the two latest
// snapshots.
func (h *NotificationHandler) List(c *gin.Context) {
	report, err := h.reportService.Notifications(c.Request.Context())
	if err != nil {
		if errors.Is(err, reorder.ErrInsufficientData) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("failed to compute notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// Detail returns the drill-down view for one product.
func (h *NotificationHandler) Detail(c *gin.Context) {
	productKey := c.Param("product_key")

	detail, err := h.reportService.NotificationDetail(c.Request.Context(), productKey)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, reorder.ErrInsufficientData):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Str("product_key", productKey).Msg("failed to fetch notification detail")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notification detail"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    detail,
	})
}

type overrideRequest struct {
	MinStock *int `json:"min_stock"`
	Buffer   *int `json:"buffer"`
}

// SetOverride stores manual min-stock and/or buffer values for a product.
func (h *NotificationHandler) SetOverride(c *gin.Context) {
	productKey := c.Param("product_key")

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.MinStock == nil && req.Buffer == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one of min_stock or buffer is required"})
		return
	}

	if err := h.reportService.SetOverride(c.Request.Context(), productKey, req.MinStock, req.Buffer); err != nil {
		log.Error().Err(err).Str("product_key", productKey).Msg("failed to store override")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store override"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"product_key": productKey,
	})
}
