package model

import (
	"time"
)

// Essay statuses.
const (
	EssaySubmitted = "submitted"
	EssayCorrected = "corrected"
)

type Essay struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	UserID  int64  `gorm:"not null;index:idx_essays_bucket,priority:1" json:"user_id"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Theme   string `gorm:"size:200" json:"theme,omitempty"`
	Content string `gorm:"type:text;not null" json:"content"`
	Status  string `gorm:"size:20;default:submitted" json:"status"`
	Score   *int   `json:"score,omitempty"`
	// Week bucket recorded at submission time; quota counting filters on the
	// exact (user, week, year) triple.
	WeekNumber  int        `gorm:"not null;index:idx_essays_bucket,priority:2" json:"week_number"`
	Year        int        `gorm:"not null;index:idx_essays_bucket,priority:3" json:"year"`
	CorrectedAt *time.Time `json:"corrected_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Essay) TableName() string {
	return "essays"
}
