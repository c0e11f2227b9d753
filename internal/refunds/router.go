package refunds

import (
	"tickethub/internal/shared/config"
	"tickethub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRefundRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	refunds := router.Group("")
	refunds.Use(middleware.JWTAuthWithConfig(cfg))
	{
		refunds.POST("/orders/:id/refund", controller.RequestRefund)
		refunds.GET("/refunds", controller.GetUserRefunds)
		refunds.GET("/refunds/:id", controller.GetRefund)
	}
}
