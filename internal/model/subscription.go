package model

import (
	"time"
)

// Subscription statuses. "inactive" is a reversible administrative suspension,
// not a terminal state.
const (
	SubscriptionActive    = "active"
	SubscriptionInactive  = "inactive"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

type Subscription struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	UserID   int64  `gorm:"not null;index" json:"user_id"`
	PlanType string `gorm:"size:20;not null" json:"plan_type"` // master, vip
	Status   string `gorm:"size:20;default:active;index" json:"status"`
	// Price is snapshotted from the catalog at creation and never re-derived;
	// catalog changes must not touch existing rows.
	Price         float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	StartDate     time.Time `gorm:"not null" json:"start_date"`
	EndDate       time.Time `gorm:"not null;index" json:"end_date"`
	PaymentMethod string    `gorm:"size:20" json:"payment_method,omitempty"` // pix, credit_card, boleto
	AutoRenew     bool      `gorm:"default:false" json:"auto_renew"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsExpired reports whether the validity window has lapsed at now. A row can
// still carry status=active after its end date until the sweep runs.
func (s *Subscription) IsExpired(now time.Time) bool {
	return s.EndDate.Before(now)
}

// DaysRemaining returns whole days left until the end date, never negative.
func (s *Subscription) DaysRemaining(now time.Time) int {
	if s.EndDate.Before(now) {
		return 0
	}
	return int(s.EndDate.Sub(now).Hours() / 24)
}

// IsNearExpiration reports whether the subscription is still valid but ends
// within the given number of days.
func (s *Subscription) IsNearExpiration(now time.Time, days int) bool {
	if s.EndDate.Before(now) {
		return false
	}
	return s.EndDate.Before(now.AddDate(0, 0, days))
}
