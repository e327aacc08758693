package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/redago/redago-server/config"
	"github.com/redago/redago-server/internal/database"
	"github.com/redago/redago-server/internal/pkg/email"
	"github.com/redago/redago-server/internal/repository"
	"github.com/redago/redago-server/internal/service"
)

// One-shot expiration sweep, for running from an external scheduler instead
// of (or alongside) the in-process cron. Safe to rerun: a subscription only
// transitions once per lapse.

var (
	remind = flag.Bool("remind", false, "Also send expiring-soon reminder emails")
	days   = flag.Int("days", 3, "Reminder window in days (with -remind)")
)

func main() {
	flag.Parse()

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

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, statistics cache will not be invalidated: %v", err)
		rdb = nil
	}

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, rdb, nil)
	paymentService := service.NewPaymentService(paymentRepo, subscriptionRepo, subscriptionService)

	result, err := subscriptionService.ProcessExpired()
	if err != nil {
		log.Fatalf("Expiration sweep failed: %v", err)
	}

	for i := range result.Renewed {
		if err := paymentService.RecordAutoRenewal(&result.Renewed[i]); err != nil {
			log.Printf("Failed to record auto-renewal payment for subscription %d: %v",
				result.Renewed[i].ID, err)
		}
	}

	log.Printf("Sweep done: %d expired, %d auto-renewed", len(result.Expired), len(result.Renewed))

	if *remind {
		sendReminders(cfg, userRepo, subscriptionService, *days)
	}
}

func sendReminders(
	cfg *config.Config,
	userRepo *repository.UserRepository,
	subscriptionService *service.SubscriptionService,
	days int,
) {
	emailService := email.NewService(&cfg.Email)

	subs, err := subscriptionService.GetExpiring(days)
	if err != nil {
		log.Fatalf("Expiring-soon scan failed: %v", err)
	}

	sent := 0
	for i := range subs {
		sub := &subs[i]
		user, err := userRepo.GetByID(sub.UserID)
		if err != nil {
			log.Printf("Failed to load user %d: %v", sub.UserID, err)
			continue
		}
		if err := emailService.SendExpiringSoon(user.Email, user.Name, sub.DaysRemaining(time.Now())); err != nil {
			log.Printf("Failed to email %s: %v", user.Email, err)
			continue
		}
		sent++
	}
	log.Printf("Reminders sent: %d of %d expiring within %d days", sent, len(subs), days)
}
