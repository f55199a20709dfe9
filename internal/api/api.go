// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lontuktak/backend-go/internal/api/handlers"
	"github.com/lontuktak/backend-go/internal/api/middleware"
	"github.com/lontuktak/backend-go/internal/service"
)

type Services struct {
	ReportService *service.ReportService
	StockService  *service.StockService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services != nil {
		if services.ReportService != nil {
			notificationHandler := handlers.NewNotificationHandler(services.ReportService)
			notificationGroup := router.Group("/api/notifications")
			{
				notificationGroup.GET("", notificationHandler.List)
				notificationGroup.GET("/:product_key", notificationHandler.Detail)
				notificationGroup.PUT("/:product_key/override", notificationHandler.SetOverride)
			}
		}

		if services.StockService != nil {
			stockHandler := handlers.NewStockHandler(services.StockService)
			stockGroup := router.Group("/stock")
			{
				stockGroup.GET("/levels", stockHandler.Levels)
				stockGroup.POST("/upload", stockHandler.Upload)
			}

			analysisGroup := router.Group("/analysis")
			{
				analysisGroup.GET("/dashboard", stockHandler.Dashboard)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
