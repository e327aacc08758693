package model

import (
	"time"
)

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;default:student" json:"role"`
	// Weak back-reference to the current subscription. Cleared on cancel and
	// expire; never authoritative for validity (the date-aware query is).
	SubscriptionID *int64    `json:"subscription_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
