package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model"
)

// ErrDuplicateActive signals that the one-active-subscription-per-user
// invariant was observed broken mid-transaction. CreateExclusive prevents it;
// this error only surfaces if the guard itself trips.
var ErrDuplicateActive = errors.New("duplicate active subscription")

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// CreateExclusive inserts a new subscription for sub.UserID, force-cancelling
// any currently active row and updating the user's back-reference, all in one
// transaction. This is what keeps at most one active row per user.
func (r *SubscriptionRepository) CreateExclusive(sub *model.Subscription) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ?", sub.UserID, model.SubscriptionActive).
			Update("status", model.SubscriptionCancelled).Error; err != nil {
			return err
		}

		if err := tx.Create(sub).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ?", sub.UserID, model.SubscriptionActive).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 1 {
			return ErrDuplicateActive
		}

		return tx.Model(&model.User{}).Where("id = ?", sub.UserID).
			Update("subscription_id", sub.ID).Error
	})
}

func (r *SubscriptionRepository) GetByID(id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetActiveByUser returns the user's subscription that is both status=active
// and still inside its validity window. Callers must use this, not a raw
// status filter: a lapsed row can sit at status=active until the sweep runs.
func (r *SubscriptionRepository) GetActiveByUser(userID int64, now time.Time) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.
		Where("user_id = ? AND status = ? AND end_date > ?", userID, model.SubscriptionActive, now).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetLatestByUser returns the user's most recent subscription in any status.
func (r *SubscriptionRepository) GetLatestByUser(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) HistoryByUser(userID int64) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Subscription{}).Where("id = ?", id).Updates(fields).Error
}

// CancelWithBackRef flips the subscription to cancelled and clears the owner's
// back-reference atomically.
func (r *SubscriptionRepository) CancelWithBackRef(sub *model.Subscription) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Subscription{}).Where("id = ?", sub.ID).
			Update("status", model.SubscriptionCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ? AND subscription_id = ?", sub.UserID, sub.ID).
			Update("subscription_id", nil).Error
	})
}

// Renew extends the validity window by months*30 days anchored at the stored
// end date (never at "now": a late renewal does not reset the clock) and sets
// the row back to active. Any other active row the user somehow holds is
// cancelled in the same transaction, and the back-reference is restored.
func (r *SubscriptionRepository) Renew(sub *model.Subscription, months int) (*model.Subscription, error) {
	newEnd := sub.EndDate.AddDate(0, 0, months*30)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ? AND id <> ?", sub.UserID, model.SubscriptionActive, sub.ID).
			Update("status", model.SubscriptionCancelled).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Subscription{}).Where("id = ?", sub.ID).
			Updates(map[string]interface{}{
				"status":   model.SubscriptionActive,
				"end_date": newEnd,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).Where("id = ?", sub.UserID).
			Update("subscription_id", sub.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(sub.ID)
}

// ExpiringWithin returns active subscriptions that are still valid at now but
// end within the given number of days.
func (r *SubscriptionRepository) ExpiringWithin(now time.Time, days int) ([]model.Subscription, error) {
	limit := now.AddDate(0, 0, days)
	var subs []model.Subscription
	err := r.db.
		Where("status = ? AND end_date > ? AND end_date <= ?", model.SubscriptionActive, now, limit).
		Order("end_date ASC").Find(&subs).Error
	return subs, err
}

// ExpireStale transitions every lapsed active subscription without
// auto-renewal to expired and clears the owners' back-references, atomically.
// Running it again with no new lapses finds nothing and changes nothing.
func (r *SubscriptionRepository) ExpireStale(now time.Time) ([]model.Subscription, error) {
	var stale []model.Subscription

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ? AND end_date < ? AND auto_renew = ?", model.SubscriptionActive, now, false).
			Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(stale))
		userIDs := make([]int64, 0, len(stale))
		for _, s := range stale {
			ids = append(ids, s.ID)
			userIDs = append(userIDs, s.UserID)
		}

		if err := tx.Model(&model.Subscription{}).Where("id IN ?", ids).
			Update("status", model.SubscriptionExpired).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).
			Where("id IN ? AND subscription_id IN ?", userIDs, ids).
			Update("subscription_id", nil).Error
	})
	if err != nil {
		return nil, err
	}

	return stale, nil
}

// RenewStaleAutoRenew extends every lapsed active auto-renew subscription by
// one 30-day period anchored at its stored end date, atomically, and returns
// the renewed rows with their new end dates.
func (r *SubscriptionRepository) RenewStaleAutoRenew(now time.Time) ([]model.Subscription, error) {
	var stale []model.Subscription

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ? AND end_date < ? AND auto_renew = ?", model.SubscriptionActive, now, true).
			Find(&stale).Error; err != nil {
			return err
		}

		for i := range stale {
			stale[i].EndDate = stale[i].EndDate.AddDate(0, 0, 30)
			if err := tx.Model(&model.Subscription{}).Where("id = ?", stale[i].ID).
				Update("end_date", stale[i].EndDate).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stale, nil
}

// CountByStatus returns subscription counts grouped by status.
func (r *SubscriptionRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.Subscription{}).
		Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// CountActiveByPlan returns currently valid subscription counts per plan type.
func (r *SubscriptionRepository) CountActiveByPlan(now time.Time) (map[string]int64, error) {
	type row struct {
		PlanType string
		Count    int64
	}
	var rows []row
	err := r.db.Model(&model.Subscription{}).
		Select("plan_type, COUNT(*) as count").
		Where("status = ? AND end_date > ?", model.SubscriptionActive, now).
		Group("plan_type").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.PlanType] = rw.Count
	}
	return counts, nil
}

// ActiveRevenue sums the snapshotted price of currently valid subscriptions.
func (r *SubscriptionRepository) ActiveRevenue(now time.Time) (float64, error) {
	var total *float64
	err := r.db.Model(&model.Subscription{}).
		Select("SUM(price)").
		Where("status = ? AND end_date > ?", model.SubscriptionActive, now).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
