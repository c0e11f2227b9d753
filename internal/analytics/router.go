package analytics

import (
	"tickethub/internal/shared/config"
	"tickethub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	admin := router.Group("/admin/analytics")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		admin.GET("/sales", controller.GetSalesSummary)
		admin.GET("/events/:id", controller.GetEventSales)
	}
}
