// internal/api/handlers/stock_handler.go
package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lontuktak/backend-go/internal/service"
	"github.com/rs/zerolog/log"
)

type StockHandler struct {
	stockService *service.StockService
}

func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Levels returns the latest per-product stock positions.
func (h *StockHandler) Levels(c *gin.Context) {
	levels, err := h.stockService.Levels(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch stock levels")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stock levels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    levels,
	})
}

// Dashboard returns the headline stock counters.
func (h *StockHandler) Dashboard(c *gin.Context) {
	stats, err := h.stockService.Dashboard(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch dashboard stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch dashboard stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// Upload ingests a stock snapshot file. The snapshot date defaults to today
// and can be set via the week_date form field (YYYY-MM-DD).
func (h *StockHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	weekDate := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.PostForm("week_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week_date must be formatted as YYYY-MM-DD"})
			return
		}
		weekDate = parsed
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	uploaded, err := h.stockService.UploadSnapshot(c.Request.Context(), fileHeader.Filename, data, weekDate)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to ingest snapshot")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    uploaded,
	})
}
