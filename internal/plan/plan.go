package plan

import (
	"errors"
)

// Plan types sold by the platform.
const (
	Master = "master"
	VIP    = "vip"
)

var ErrInvalidPlanType = errors.New("invalid plan type")

// Plan is a compiled-in catalog entry. Prices and quotas are snapshotted onto
// subscriptions at creation, so changing these values never touches existing rows.
type Plan struct {
	Type         string  `json:"type"`
	MonthlyPrice float64 `json:"monthly_price"`
	WeeklyQuota  int     `json:"weekly_quota"`
}

var catalog = map[string]Plan{
	Master: {Type: Master, MonthlyPrice: 40.00, WeeklyQuota: 2},
	VIP:    {Type: VIP, MonthlyPrice: 50.00, WeeklyQuota: 4},
}

// Valid reports whether planType names a catalog entry.
func Valid(planType string) bool {
	_, ok := catalog[planType]
	return ok
}

// PriceOf returns the monthly price for a plan type.
func PriceOf(planType string) (float64, error) {
	p, ok := catalog[planType]
	if !ok {
		return 0, ErrInvalidPlanType
	}
	return p.MonthlyPrice, nil
}

// QuotaOf returns the weekly essay quota for a plan type.
func QuotaOf(planType string) (int, error) {
	p, ok := catalog[planType]
	if !ok {
		return 0, ErrInvalidPlanType
	}
	return p.WeeklyQuota, nil
}

// FromAmount maps a confirmed payment amount back to a plan type. Used when
// the gateway event carries no plan hint.
func FromAmount(amount float64) (string, error) {
	for _, p := range catalog {
		if p.MonthlyPrice == amount {
			return p.Type, nil
		}
	}
	return "", ErrInvalidPlanType
}

// All returns the catalog entries, for listing endpoints.
func All() []Plan {
	return []Plan{catalog[Master], catalog[VIP]}
}
