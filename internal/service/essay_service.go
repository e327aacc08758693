package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/model/dto"
	"github.com/redago/redago-server/internal/pkg/week"
	"github.com/redago/redago-server/internal/repository"
)

var (
	ErrEssayNotFound   = errors.New("essay not found")
	ErrEssayPermission = errors.New("essay belongs to another user")
)

type EssayService struct {
	essayRepo    *repository.EssayRepository
	quotaService *QuotaService
}

func NewEssayService(essayRepo *repository.EssayRepository, quotaService *QuotaService) *EssayService {
	return &EssayService{
		essayRepo:    essayRepo,
		quotaService: quotaService,
	}
}

// Submit records a new essay in the current week bucket. The entitlement
// check runs first for an informative denial, then the insert recounts the
// bucket inside its own transaction, so two concurrent submissions at
// quota-1 cannot both land.
func (s *EssayService) Submit(userID int64, req *dto.SubmitEssayRequest) (*model.Essay, *dto.EntitlementResult, error) {
	ent, err := s.quotaService.CanSubmitEssay(userID)
	if err != nil {
		return nil, nil, err
	}
	if !ent.Allowed {
		if ent.Reason == ReasonNoActiveSubscription {
			return nil, ent, ErrNoActiveSubscription
		}
		return nil, ent, ErrQuotaExceeded
	}

	weekNumber, year := week.Bucket(time.Now())
	essay := &model.Essay{
		UserID:     userID,
		Title:      req.Title,
		Theme:      req.Theme,
		Content:    req.Content,
		Status:     model.EssaySubmitted,
		WeekNumber: weekNumber,
		Year:       year,
	}

	if err := s.essayRepo.CreateWithinQuota(essay, ent.Max); err != nil {
		if errors.Is(err, repository.ErrWeeklyLimitReached) {
			// lost the race to a concurrent submission
			ent.Allowed = false
			ent.Reason = ReasonQuotaReached
			ent.Current = ent.Max
			return nil, ent, ErrQuotaExceeded
		}
		return nil, nil, err
	}

	ent.Current++
	return essay, ent, nil
}

func (s *EssayService) Get(userID, essayID int64) (*model.Essay, error) {
	essay, err := s.essayRepo.GetByID(essayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEssayNotFound
		}
		return nil, err
	}
	if essay.UserID != userID {
		return nil, ErrEssayPermission
	}
	return essay, nil
}

func (s *EssayService) List(userID int64, page, pageSize int) ([]model.Essay, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.essayRepo.ListByUser(userID, page, pageSize)
}
