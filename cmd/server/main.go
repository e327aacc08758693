package main

import (
	"fmt"
	"log"
	"os"

	"github.com/redago/redago-server/config"
	"github.com/redago/redago-server/internal/api"
	"github.com/redago/redago-server/internal/api/handler"
	"github.com/redago/redago-server/internal/database"
	"github.com/redago/redago-server/internal/pkg/cron"
	"github.com/redago/redago-server/internal/pkg/email"
	"github.com/redago/redago-server/internal/pkg/ws"
	"github.com/redago/redago-server/internal/repository"
	"github.com/redago/redago-server/internal/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	emailService := email.NewService(&cfg.Email)

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	essayRepo := repository.NewEssayRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	authService := service.NewAuthService(userRepo, cfg)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, rdb, emailService)
	quotaService := service.NewQuotaService(subscriptionRepo, essayRepo)
	essayService := service.NewEssayService(essayRepo, quotaService)
	paymentService := service.NewPaymentService(paymentRepo, subscriptionRepo, subscriptionService)

	authHandler := handler.NewAuthHandler(authService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	essayHandler := handler.NewEssayHandler(essayService, wsHub)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	quotaHandler := handler.NewQuotaHandler(quotaService)
	adminHandler := handler.NewAdminHandler(subscriptionService, paymentService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	cronService := cron.NewService(
		subscriptionService,
		paymentService,
		userRepo,
		emailService,
		wsHub,
		cfg.Notification.ExpiringSoonDays,
		cfg.Notification.SweepHour,
	)
	cronService.Start()
	defer cronService.Stop()

	router := api.NewRouter(
		authHandler,
		subscriptionHandler,
		essayHandler,
		paymentHandler,
		quotaHandler,
		adminHandler,
		websocketHandler,
		quotaService,
		userRepo,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
