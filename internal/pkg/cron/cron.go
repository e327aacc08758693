package cron

import (
	"log"
	"time"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/pkg/email"
	"github.com/redago/redago-server/internal/pkg/ws"
	"github.com/redago/redago-server/internal/repository"
	"github.com/redago/redago-server/internal/service"
)

// Service runs the in-process scheduled jobs: the nightly expiration sweep
// and the daily expiring-soon reminder. The sweep logic itself lives in
// SubscriptionService and stays triggerable from the admin endpoint and the
// sweeper binary; this is only the server's scheduler around it.
type Service struct {
	subscriptionService *service.SubscriptionService
	paymentService      *service.PaymentService
	userRepo            *repository.UserRepository
	emailService        *email.Service
	hub                 *ws.Hub
	expiringSoonDays    int
	sweepHour           int
	stopChan            chan struct{}
}

func NewService(
	subscriptionService *service.SubscriptionService,
	paymentService *service.PaymentService,
	userRepo *repository.UserRepository,
	emailService *email.Service,
	hub *ws.Hub,
	expiringSoonDays int,
	sweepHour int,
) *Service {
	if expiringSoonDays <= 0 {
		expiringSoonDays = 3
	}
	return &Service{
		subscriptionService: subscriptionService,
		paymentService:      paymentService,
		userRepo:            userRepo,
		emailService:        emailService,
		hub:                 hub,
		expiringSoonDays:    expiringSoonDays,
		sweepHour:           sweepHour,
		stopChan:            make(chan struct{}),
	}
}

func (s *Service) Start() {
	go s.runDaily()
	log.Println("Cron service started (expiration sweep + expiring-soon reminders)")
}

func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

func (s *Service) runDaily() {
	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), s.sweepHour, 0, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.RunSweep()
			s.RunExpiringSoonReminders()
		}
	}
}

// RunSweep executes one expiration sweep and fans out the side effects:
// payment rows for auto-renewals, expiry emails, websocket events.
func (s *Service) RunSweep() {
	result, err := s.subscriptionService.ProcessExpired()
	if err != nil {
		log.Printf("Expiration sweep failed: %v", err)
		return
	}

	for i := range result.Renewed {
		sub := &result.Renewed[i]
		if s.paymentService != nil {
			_ = s.paymentService.RecordAutoRenewal(sub)
		}
	}

	for i := range result.Expired {
		sub := &result.Expired[i]
		if s.hub != nil {
			s.hub.NotifySubscription(sub.UserID, model.SubscriptionExpired)
		}
		s.notifyExpired(sub)
	}

	if len(result.Expired) > 0 || len(result.Renewed) > 0 {
		log.Printf("Expiration sweep: %d expired, %d auto-renewed", len(result.Expired), len(result.Renewed))
	}
}

// RunExpiringSoonReminders emails every subscriber whose plan ends within
// the configured window.
func (s *Service) RunExpiringSoonReminders() {
	subs, err := s.subscriptionService.GetExpiring(s.expiringSoonDays)
	if err != nil {
		log.Printf("Expiring-soon scan failed: %v", err)
		return
	}

	now := time.Now()
	for i := range subs {
		sub := &subs[i]
		user, err := s.userRepo.GetByID(sub.UserID)
		if err != nil {
			log.Printf("Failed to load user %d for reminder: %v", sub.UserID, err)
			continue
		}
		if s.emailService != nil {
			if err := s.emailService.SendExpiringSoon(user.Email, user.Name, sub.DaysRemaining(now)); err != nil {
				log.Printf("Failed to send expiring-soon email to %s: %v", user.Email, err)
			}
		}
	}
}

func (s *Service) notifyExpired(sub *model.Subscription) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(sub.UserID)
	if err != nil {
		log.Printf("Failed to load user %d for expiry notice: %v", sub.UserID, err)
		return
	}
	if err := s.emailService.SendExpired(user.Email, user.Name); err != nil {
		log.Printf("Failed to send expiry email to %s: %v", user.Email, err)
	}
}
