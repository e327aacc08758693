package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/pkg/week"
)

// TestUser creates a user row with sensible defaults.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := time.Now().UnixNano()
	user := &model.User{
		Name:         fmt.Sprintf("Test User %d", n%10000),
		Email:        fmt.Sprintf("test_%d@example.com", n),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Role:         model.RoleStudent,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithRole sets the user role.
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithEmail sets the user email.
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// TestSubscription creates a subscription row, active for 30 days from now by
// default, and points the user's back-reference at it.
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	now := time.Now()
	sub := &model.Subscription{
		UserID:        userID,
		PlanType:      "master",
		Status:        model.SubscriptionActive,
		Price:         40.00,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, 30),
		PaymentMethod: model.MethodPix,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	if err := db.Model(&model.User{}).Where("id = ?", userID).
		Update("subscription_id", sub.ID).Error; err != nil {
		t.Fatalf("Failed to set subscription back-reference: %v", err)
	}

	return sub
}

// WithPlan sets the plan type and its snapshotted price.
func WithPlan(planType string, price float64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.PlanType = planType
		s.Price = price
	}
}

// WithStatus sets the subscription status.
func WithStatus(status string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// WithWindow sets the validity window.
func WithWindow(start, end time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.StartDate = start
		s.EndDate = end
	}
}

// WithAutoRenew sets the auto-renewal flag.
func WithAutoRenew(autoRenew bool) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.AutoRenew = autoRenew
	}
}

// TestEssay creates an essay row stamped into the current week bucket.
func TestEssay(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Essay)) *model.Essay {
	t.Helper()

	weekNumber, year := week.Bucket(time.Now())
	essay := &model.Essay{
		UserID:     userID,
		Title:      fmt.Sprintf("Test Essay %d", time.Now().UnixNano()%10000),
		Content:    "Lorem ipsum dolor sit amet.",
		Status:     model.EssaySubmitted,
		WeekNumber: weekNumber,
		Year:       year,
	}

	for _, opt := range opts {
		opt(essay)
	}

	if err := db.Create(essay).Error; err != nil {
		t.Fatalf("Failed to create test essay: %v", err)
	}

	return essay
}

// WithBucket pins the essay into a specific week bucket.
func WithBucket(weekNumber, year int) func(*model.Essay) {
	return func(e *model.Essay) {
		e.WeekNumber = weekNumber
		e.Year = year
	}
}
