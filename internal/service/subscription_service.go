package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/model/dto"
	"github.com/redago/redago-server/internal/plan"
	"github.com/redago/redago-server/internal/repository"
)

var (
	ErrSubscriptionNotFound        = errors.New("subscription not found")
	ErrNoActiveSubscription        = errors.New("subscription is not active")
	ErrNotSuspended                = errors.New("subscription is not suspended")
	ErrNotOwner                    = errors.New("subscription belongs to another user")
	ErrDuplicateActiveSubscription = repository.ErrDuplicateActive
)

const (
	subscriptionDays = 30

	statsCacheKey = "subscription:statistics"
	statsCacheTTL = 5 * time.Minute
)

// SubscriptionService implements the subscription lifecycle state machine.
type SubscriptionService struct {
	subscriptionRepo *repository.SubscriptionRepository
	userRepo         *repository.UserRepository
	rdb              *redis.Client
	mailer           Mailer
}

// Mailer sends the subscription-confirmed notice. Satisfied by
// email.Service; nil disables sending.
type Mailer interface {
	SendWelcome(to, name, planType string) error
}

func NewSubscriptionService(
	subscriptionRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	mailer Mailer,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		rdb:              rdb,
		mailer:           mailer,
	}
}

// Create opens a new 30-day subscription with the catalog price snapshotted
// onto the row. An existing active subscription is force-cancelled first;
// the two writes happen in one store transaction.
func (s *SubscriptionService) Create(userID int64, planType, paymentMethod string, autoRenew bool) (*model.Subscription, error) {
	price, err := plan.PriceOf(planType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &model.Subscription{
		UserID:        userID,
		PlanType:      planType,
		Status:        model.SubscriptionActive,
		Price:         price,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, subscriptionDays),
		PaymentMethod: paymentMethod,
		AutoRenew:     autoRenew,
	}

	if err := s.subscriptionRepo.CreateExclusive(sub); err != nil {
		return nil, err
	}

	s.invalidateStats()
	s.sendWelcome(sub)
	return sub, nil
}

// sendWelcome mails the confirmation notice, best-effort and off the request
// path.
func (s *SubscriptionService) sendWelcome(sub *model.Subscription) {
	if s.mailer == nil {
		return
	}
	user, err := s.userRepo.GetByID(sub.UserID)
	if err != nil {
		log.Printf("Failed to load user %d for welcome email: %v", sub.UserID, err)
		return
	}
	go func() {
		if err := s.mailer.SendWelcome(user.Email, user.Name, sub.PlanType); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}()
}

// Renew extends the subscription by months x 30 days from its stored end
// date and sets it back to active. Anchoring at the stored end date means a
// late renewal does not reset the clock to today.
func (s *SubscriptionService) Renew(userID, subscriptionID int64, months int) (*model.Subscription, error) {
	sub, err := s.getOwned(userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	renewed, err := s.subscriptionRepo.Renew(sub, months)
	if err != nil {
		return nil, err
	}

	s.invalidateStats()
	return renewed, nil
}

// Cancel requires the subscription to be active and severs the user's
// back-reference in the same transaction.
func (s *SubscriptionService) Cancel(userID, subscriptionID int64) error {
	sub, err := s.getOwned(userID, subscriptionID)
	if err != nil {
		return err
	}
	if sub.Status != model.SubscriptionActive {
		return ErrNoActiveSubscription
	}

	if err := s.subscriptionRepo.CancelWithBackRef(sub); err != nil {
		return err
	}

	s.invalidateStats()
	return nil
}

// Suspend is an administrative, reversible pause: active -> inactive. The
// back-reference stays in place so Reactivate can restore the row untouched.
func (s *SubscriptionService) Suspend(subscriptionID int64) (*model.Subscription, error) {
	sub, err := s.getByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubscriptionActive {
		return nil, ErrNoActiveSubscription
	}

	if err := s.subscriptionRepo.UpdateFields(sub.ID, map[string]interface{}{
		"status": model.SubscriptionInactive,
	}); err != nil {
		return nil, err
	}

	s.invalidateStats()
	return s.getByID(subscriptionID)
}

// Reactivate reverses a suspension: inactive -> active.
func (s *SubscriptionService) Reactivate(subscriptionID int64) (*model.Subscription, error) {
	sub, err := s.getByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubscriptionInactive {
		return nil, ErrNotSuspended
	}

	if err := s.subscriptionRepo.UpdateFields(sub.ID, map[string]interface{}{
		"status": model.SubscriptionActive,
	}); err != nil {
		return nil, err
	}

	s.invalidateStats()
	return s.getByID(subscriptionID)
}

// GetActive returns the user's currently valid subscription, or
// ErrNoActiveSubscription.
func (s *SubscriptionService) GetActive(userID int64) (*model.Subscription, error) {
	sub, err := s.subscriptionRepo.GetActiveByUser(userID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}
	return sub, nil
}

// GetHistory returns all of the user's subscriptions, newest first.
func (s *SubscriptionService) GetHistory(userID int64) ([]model.Subscription, error) {
	return s.subscriptionRepo.HistoryByUser(userID)
}

// GetExpiring lists active subscriptions ending within the given days.
func (s *SubscriptionService) GetExpiring(days int) ([]model.Subscription, error) {
	return s.subscriptionRepo.ExpiringWithin(time.Now(), days)
}

// SweepResult summarizes one expiration sweep run.
type SweepResult struct {
	Expired []model.Subscription
	Renewed []model.Subscription
}

// ProcessExpired runs the expiration sweep: lapsed active subscriptions are
// expired and their owners' back-references cleared; lapsed auto-renew
// subscriptions get a fresh 30-day period anchored at the old end date.
// Idempotent between lapses. Triggered by cron, the sweeper binary, or the
// admin endpoint; never self-scheduling.
func (s *SubscriptionService) ProcessExpired() (*SweepResult, error) {
	now := time.Now()

	expired, err := s.subscriptionRepo.ExpireStale(now)
	if err != nil {
		return nil, err
	}

	renewed, err := s.subscriptionRepo.RenewStaleAutoRenew(now)
	if err != nil {
		return nil, err
	}

	if len(expired) > 0 || len(renewed) > 0 {
		s.invalidateStats()
	}
	return &SweepResult{Expired: expired, Renewed: renewed}, nil
}

// GetStatistics aggregates subscription counts and revenue, cached in Redis
// for a few minutes. Cache failures fall through to a direct computation.
func (s *SubscriptionService) GetStatistics() (*dto.SubscriptionStatistics, error) {
	ctx := context.Background()

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var stats dto.SubscriptionStatistics
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	now := time.Now()
	byStatus, err := s.subscriptionRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	byPlan, err := s.subscriptionRepo.CountActiveByPlan(now)
	if err != nil {
		return nil, err
	}
	revenue, err := s.subscriptionRepo.ActiveRevenue(now)
	if err != nil {
		return nil, err
	}
	expiring, err := s.subscriptionRepo.ExpiringWithin(now, 7)
	if err != nil {
		return nil, err
	}

	stats := &dto.SubscriptionStatistics{
		ByStatus:      byStatus,
		ActiveByPlan:  byPlan,
		ActiveRevenue: revenue,
		ExpiringSoon:  int64(len(expiring)),
	}

	if s.rdb != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, statsCacheKey, data, statsCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache subscription statistics: %v", err)
			}
		}
	}

	return stats, nil
}

func (s *SubscriptionService) getByID(id int64) (*model.Subscription, error) {
	sub, err := s.subscriptionRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) getOwned(userID, subscriptionID int64) (*model.Subscription, error) {
	sub, err := s.getByID(subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrNotOwner
	}
	return sub, nil
}

func (s *SubscriptionService) invalidateStats() {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.Background(), statsCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate statistics cache: %v", err)
	}
}
