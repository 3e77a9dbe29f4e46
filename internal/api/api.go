package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/api/handlers"
	"github.com/andresuchdata/bizdash-go/internal/api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Dashboard     handlers.DashboardService
	SpreadsheetID string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
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

	var h *handlers.DashboardHandler
	if services != nil && services.Dashboard != nil {
		h = handlers.NewDashboardHandler(services.Dashboard, services.SpreadsheetID)
	} else {
		h = handlers.NewDashboardHandler(nil, "")
	}

	router.GET("/health", h.Health)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/test", h.Test)

		if services != nil && services.Dashboard != nil {
			apiGroup.GET("/dashboard-data", h.GetDashboardData)
			apiGroup.POST("/dashboard-data/refresh", h.Refresh)
			apiGroup.GET("/debug-sheets", h.DebugSheets)

			sheetsGroup := apiGroup.Group("/sheets")
			{
				sheetsGroup.GET("/data", h.GetDashboardData)
				sheetsGroup.GET("/all", h.GetAll)
			}
		}
	}

	router.NoRoute(h.NotFound)

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
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
