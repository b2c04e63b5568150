package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bizops-api/internal/config"
	domainRepo "github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/internal/infrastructure/logger"
	"github.com/sangkips/bizops-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bizops-api/internal/presentation/http/handler"
	"github.com/sangkips/bizops-api/internal/presentation/http/middleware"
	"github.com/sangkips/bizops-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Order *handler.OrderHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Log             *zap.Logger
	TenantRepo      domainRepo.TenantRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.TenantRateLimiter
	// Metrics serves GET /metrics; nil leaves the route out
	Metrics http.Handler
	// HealthCheck reports whether the database is reachable
	HealthCheck func(ctx context.Context) error
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	request.SetupValidator()

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.Recovery(log))
	router.Use(logger.GinMiddleware(log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unavailable",
					"service": deps.Cfg.App.Name,
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.TenantMiddleware(deps.TenantRepo))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerOrderRoutes(protected, h, deps, log)
	}

	return router
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps, log *zap.Logger) {
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		TTL:  deps.Cfg.Idempotency.TTL,
		Log:  log,
	})
	view := middleware.RequirePermission(middleware.PermissionOrdersView)
	manage := middleware.RequirePermission(middleware.PermissionOrdersManage)

	orders := protected.Group("/orders")
	{
		orders.GET("", view, h.Order.List)
		orders.POST("", manage, idempotency, h.Order.Create)
		orders.GET("/:id", view, h.Order.Get)
		orders.PATCH("/:id", manage, idempotency, h.Order.Update)
		orders.DELETE("/:id", manage, h.Order.Delete)
		orders.GET("/:id/activities", view, h.Order.Activities)
		orders.GET("/:id/invoice", view, h.Order.Invoice)
	}
}
