package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/flatmarket/config"
	"github.com/roomloop/flatmarket/internal/handler"
	"github.com/roomloop/flatmarket/internal/middleware"
)

type Router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	flatHandler    *handler.FlatHandler
	paymentHandler *handler.PaymentHandler
	healthHandler  *handler.HealthHandler

	sessionMw *middleware.SessionMiddleware
	Config    *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	flat *handler.FlatHandler,
	payment *handler.PaymentHandler,
	health *handler.HealthHandler,

	sessionMw *middleware.SessionMiddleware,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:    auth,
		userHandler:    user,
		flatHandler:    flat,
		paymentHandler: payment,
		healthHandler:  health,

		sessionMw: sessionMw,
		Config:    config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.ContextMiddleware("flatmarket"))
	router.Use(middleware.RequestTimeoutMiddleware(r.Config.App.Timeout))

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.Config.RateLimit.Request, time.Duration(r.Config.RateLimit.Duration)*time.Second))

			r.authRoutes(v1)
			r.flatRoutes(v1)
			r.paymentRoutes(v1)
			r.adminRoutes(v1)
		}
	}

	return router
}
