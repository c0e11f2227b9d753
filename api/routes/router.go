package routes

import (
	"net/http"
	"time"

	"tickethub/internal/analytics"
	"tickethub/internal/auth"
	"tickethub/internal/events"
	"tickethub/internal/orders"
	"tickethub/internal/refunds"
	"tickethub/internal/shared/config"
	"tickethub/internal/shared/database"
	"tickethub/internal/tickettypes"
	"tickethub/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router wires every module's routes and dependencies together.
type Router struct {
	config       *config.Config
	db           *database.DB
	cacheService cache.Service
	orderService orders.Service
}

func NewRouter(cfg *config.Config, db *database.DB) *Router {
	r := &Router{
		config: cfg,
		db:     db,
	}
	if db.Redis != nil {
		r.cacheService = cache.NewService(db.Redis)
	}
	return r
}

// OrderService exposes the orders service so main can inject the
// confirmation publisher after Kafka comes up.
func (r *Router) OrderService() orders.Service {
	return r.orderService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		eventService := r.setupEventRoutes(api)
		r.setupTicketTypeRoutes(api, eventService)
		r.setupOrderRoutes(api)
		r.setupRefundRoutes(api)
		r.setupAnalyticsRoutes(api)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "tickethub",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "tickethub",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

func (r *Router) setupEventRoutes(rg *gin.RouterGroup) events.Service {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	eventService := events.NewService(eventRepo)
	if r.cacheService != nil {
		eventService.SetCacheService(r.cacheService)
	}
	eventController := events.NewController(eventService)

	events.SetupEventRoutes(rg, eventController, r.config)
	return eventService
}

func (r *Router) setupTicketTypeRoutes(rg *gin.RouterGroup, eventService events.Service) {
	typeRepo := tickettypes.NewRepository(r.db.GetPostgreSQL())
	typeService := tickettypes.NewService(typeRepo, eventService)
	if r.cacheService != nil {
		typeService.SetCacheService(r.cacheService)
	}
	typeController := tickettypes.NewController(typeService)

	tickettypes.SetupTicketTypeRoutes(rg, typeController, r.config)
}

func (r *Router) setupOrderRoutes(rg *gin.RouterGroup) {
	orderRepo := orders.NewRepository(r.db.GetPostgreSQL())
	r.orderService = orders.NewService(orderRepo, r.config.Purchase)
	orderController := orders.NewController(r.orderService)

	orders.SetupOrderRoutes(rg, orderController, r.config)
}

func (r *Router) setupRefundRoutes(rg *gin.RouterGroup) {
	refundRepo := refunds.NewRepository(r.db.GetPostgreSQL())
	refundService := refunds.NewService(refundRepo)
	refundController := refunds.NewController(refundService)

	refunds.SetupRefundRoutes(rg, refundController, r.config)
}

func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	analyticsRepo := analytics.NewRepository(r.db.GetPostgreSQL())
	analyticsService := analytics.NewService(analyticsRepo)
	if r.cacheService != nil {
		analyticsService.SetCacheService(r.cacheService)
	}
	analyticsController := analytics.NewController(analyticsService)

	analytics.SetupAnalyticsRoutes(rg, analyticsController, r.config)
}
