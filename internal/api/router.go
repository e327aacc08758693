package api

import (
	"github.com/gin-gonic/gin"

	"github.com/redago/redago-server/config"
	"github.com/redago/redago-server/internal/api/handler"
	"github.com/redago/redago-server/internal/api/middleware"
	"github.com/redago/redago-server/internal/repository"
	"github.com/redago/redago-server/internal/service"
)

type Router struct {
	authHandler         *handler.AuthHandler
	subscriptionHandler *handler.SubscriptionHandler
	essayHandler        *handler.EssayHandler
	paymentHandler      *handler.PaymentHandler
	quotaHandler        *handler.QuotaHandler
	adminHandler        *handler.AdminHandler
	websocketHandler    *handler.WebSocketHandler
	quotaService        *service.QuotaService
	userRepo            *repository.UserRepository
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	essayHandler *handler.EssayHandler,
	paymentHandler *handler.PaymentHandler,
	quotaHandler *handler.QuotaHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	quotaService *service.QuotaService,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		subscriptionHandler: subscriptionHandler,
		essayHandler:        essayHandler,
		paymentHandler:      paymentHandler,
		quotaHandler:        quotaHandler,
		adminHandler:        adminHandler,
		websocketHandler:    websocketHandler,
		quotaService:        quotaService,
		userRepo:            userRepo,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket (token via query string)
		api.GET("/ws", r.websocketHandler.Handle)

		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.authHandler.Profile)
				user.GET("/quota", r.quotaHandler.GetQuota)
			}

			subscriptions := authenticated.Group("/subscriptions")
			{
				subscriptions.POST("", r.subscriptionHandler.Create)
				subscriptions.GET("/active", r.subscriptionHandler.GetActive)
				subscriptions.GET("/history", r.subscriptionHandler.GetHistory)
				subscriptions.POST("/:id/renew", r.subscriptionHandler.Renew)
				subscriptions.POST("/:id/cancel", r.subscriptionHandler.Cancel)
			}

			essays := authenticated.Group("/essays")
			{
				essays.POST("", middleware.EntitlementGate(r.quotaService), r.essayHandler.Submit)
				essays.GET("", r.essayHandler.List)
				essays.GET("/:id", r.essayHandler.Get)
			}

			payments := authenticated.Group("/payments")
			{
				payments.POST("/confirm", r.paymentHandler.Confirm)
				payments.GET("", r.paymentHandler.History)
			}
		}

		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly(r.userRepo))
		{
			admin.GET("/subscriptions/statistics", r.adminHandler.Statistics)
			admin.GET("/subscriptions/expiring", r.adminHandler.Expiring)
			admin.POST("/subscriptions/sweep", r.adminHandler.Sweep)
			admin.POST("/subscriptions/:id/suspend", r.adminHandler.Suspend)
			admin.POST("/subscriptions/:id/reactivate", r.adminHandler.Reactivate)
		}
	}

	return engine
}
