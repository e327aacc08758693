package service

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/model/dto"
	"github.com/redago/redago-server/internal/plan"
	"github.com/redago/redago-server/internal/repository"
)

var ErrAmountPlanMismatch = errors.New("amount does not match the plan price")

// PaymentService is the glue between the (simulated) payment gateway and the
// subscription lifecycle: a confirmed payment either opens a subscription or
// renews the existing one.
type PaymentService struct {
	paymentRepo         *repository.PaymentRepository
	subscriptionRepo    *repository.SubscriptionRepository
	subscriptionService *SubscriptionService
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	subscriptionService *SubscriptionService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:         paymentRepo,
		subscriptionRepo:    subscriptionRepo,
		subscriptionService: subscriptionService,
	}
}

// Confirm handles a "payment confirmed" event. The plan comes from the hint
// when present (validated against the amount), otherwise it is inferred from
// the amount alone.
func (s *PaymentService) Confirm(userID int64, req *dto.ConfirmPaymentRequest) (*model.Subscription, error) {
	planType := req.PlanType
	if planType == "" {
		inferred, err := plan.FromAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		planType = inferred
	} else {
		price, err := plan.PriceOf(planType)
		if err != nil {
			return nil, err
		}
		if price != req.Amount {
			return nil, ErrAmountPlanMismatch
		}
	}

	payment := &model.Payment{
		UserID:        userID,
		Amount:        req.Amount,
		PlanType:      planType,
		Method:        req.Method,
		Status:        model.PaymentConfirmed,
		TransactionID: req.TransactionID,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	// Same plan again extends the current record; a different plan (or no
	// prior record) opens a fresh subscription, force-cancelling any active one.
	latest, err := s.subscriptionRepo.GetLatestByUser(userID)
	switch {
	case err == nil && latest.PlanType == planType && latest.Status != model.SubscriptionCancelled:
		return s.subscriptionService.Renew(userID, latest.ID, 1)
	case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
		return s.subscriptionService.Create(userID, planType, req.Method, req.AutoRenew)
	default:
		return nil, err
	}
}

// RecordAutoRenewal writes the payment row for a sweep-driven renewal.
func (s *PaymentService) RecordAutoRenewal(sub *model.Subscription) error {
	payment := &model.Payment{
		UserID:   sub.UserID,
		Amount:   sub.Price,
		PlanType: sub.PlanType,
		Method:   model.MethodAutoRenew,
		Status:   model.PaymentConfirmed,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		log.Printf("Failed to record auto-renewal payment for subscription %d: %v", sub.ID, err)
		return err
	}
	return nil
}

func (s *PaymentService) History(userID int64) ([]model.Payment, error) {
	return s.paymentRepo.ListByUser(userID)
}
