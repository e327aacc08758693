package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model/dto"
	"github.com/redago/redago-server/internal/pkg/week"
	"github.com/redago/redago-server/internal/plan"
	"github.com/redago/redago-server/internal/repository"
)

// Denial reasons reported by the entitlement check.
const (
	ReasonNoActiveSubscription = "no active subscription"
	ReasonQuotaReached         = "weekly essay quota reached"
)

var ErrQuotaExceeded = errors.New("weekly essay quota reached")

// QuotaService answers whether a user may submit an essay right now. The
// result is computed fresh on every call, never cached: concurrent
// submissions must each re-check against the live count.
type QuotaService struct {
	subscriptionRepo *repository.SubscriptionRepository
	essayRepo        *repository.EssayRepository
}

func NewQuotaService(
	subscriptionRepo *repository.SubscriptionRepository,
	essayRepo *repository.EssayRepository,
) *QuotaService {
	return &QuotaService{
		subscriptionRepo: subscriptionRepo,
		essayRepo:        essayRepo,
	}
}

// CanSubmitEssay combines the date-aware active-subscription lookup with the
// current week bucket count.
func (s *QuotaService) CanSubmitEssay(userID int64) (*dto.EntitlementResult, error) {
	return s.canSubmitAt(userID, time.Now())
}

func (s *QuotaService) canSubmitAt(userID int64, now time.Time) (*dto.EntitlementResult, error) {
	sub, err := s.subscriptionRepo.GetActiveByUser(userID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.EntitlementResult{
				Allowed: false,
				Reason:  ReasonNoActiveSubscription,
			}, nil
		}
		return nil, err
	}

	max, err := plan.QuotaOf(sub.PlanType)
	if err != nil {
		return nil, err
	}

	weekNumber, year := week.Bucket(now)
	current, err := s.essayRepo.CountInBucket(userID, weekNumber, year)
	if err != nil {
		return nil, err
	}

	result := &dto.EntitlementResult{
		Allowed:  current < max,
		Current:  current,
		Max:      max,
		PlanType: sub.PlanType,
	}
	if !result.Allowed {
		result.Reason = ReasonQuotaReached
	}
	return result, nil
}

// CountThisWeek returns the user's submission count in the current bucket.
func (s *QuotaService) CountThisWeek(userID int64) (int, error) {
	weekNumber, year := week.Bucket(time.Now())
	return s.essayRepo.CountInBucket(userID, weekNumber, year)
}
