package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model"
)

// ErrWeeklyLimitReached is returned by CreateWithinQuota when the recount
// inside the insert transaction finds the bucket already full.
var ErrWeeklyLimitReached = errors.New("weekly essay limit reached")

type EssayRepository struct {
	db *gorm.DB
}

func NewEssayRepository(db *gorm.DB) *EssayRepository {
	return &EssayRepository{db: db}
}

func (r *EssayRepository) Create(essay *model.Essay) error {
	return r.db.Create(essay).Error
}

// CountInBucket counts the user's submissions recorded in the exact
// (week, year) bucket.
func (r *EssayRepository) CountInBucket(userID int64, weekNumber, year int) (int, error) {
	var count int64
	err := r.db.Model(&model.Essay{}).
		Where("user_id = ? AND week_number = ? AND year = ?", userID, weekNumber, year).
		Count(&count).Error
	return int(count), err
}

// CreateWithinQuota inserts the essay only if its bucket holds fewer than
// limit submissions, recounting inside the same transaction. Two concurrent
// submissions at quota-1 race on the earlier entitlement check; this recheck
// is what guarantees only one of them lands.
func (r *EssayRepository) CreateWithinQuota(essay *model.Essay, limit int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Essay{}).
			Where("user_id = ? AND week_number = ? AND year = ?", essay.UserID, essay.WeekNumber, essay.Year).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) >= limit {
			return ErrWeeklyLimitReached
		}
		return tx.Create(essay).Error
	})
}

func (r *EssayRepository) GetByID(id int64) (*model.Essay, error) {
	var essay model.Essay
	err := r.db.Where("id = ?", id).First(&essay).Error
	if err != nil {
		return nil, err
	}
	return &essay, nil
}

func (r *EssayRepository) ListByUser(userID int64, page, pageSize int) ([]model.Essay, int64, error) {
	var total int64
	if err := r.db.Model(&model.Essay{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var essays []model.Essay
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&essays).Error
	return essays, total, err
}
