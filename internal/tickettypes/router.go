package tickettypes

import (
	"tickethub/internal/shared/config"
	"tickethub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTicketTypeRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - browse pricing and availability
	public := router.Group("")
	{
		public.GET("/events/:id/ticket-types", controller.GetTicketTypesByEvent)
		public.GET("/ticket-types/:id", controller.GetTicketType)
	}

	// Admin routes - inventory management
	admin := router.Group("/admin/ticket-types")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateTicketType)
		admin.PUT("/:id", controller.UpdateTicketType)
		admin.DELETE("/:id", controller.DeleteTicketType)
	}
}
