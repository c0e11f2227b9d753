package orders

import (
	"tickethub/internal/shared/config"
	"tickethub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupOrderRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Purchase endpoints require an authenticated buyer.
	purchase := router.Group("/events/:id")
	purchase.Use(middleware.JWTAuthWithConfig(cfg))
	{
		purchase.POST("/purchase", controller.Purchase)
		purchase.POST("/purchase/validate", controller.ValidatePurchase)
	}

	orders := router.Group("/orders")
	orders.Use(middleware.JWTAuthWithConfig(cfg))
	{
		orders.GET("", controller.GetUserOrders)
		orders.GET("/:id", controller.GetOrder)
	}

	// Ticket lookup by redemption code (door staff, admin).
	tickets := router.Group("/tickets")
	tickets.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		tickets.GET("/code/:code", controller.GetTicketByCode)
	}
}
