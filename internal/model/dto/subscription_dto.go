package dto

// CreateSubscriptionRequest starts a new subscription for the caller.
type CreateSubscriptionRequest struct {
	PlanType      string `json:"plan_type" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	AutoRenew     bool   `json:"auto_renew"`
}

type RenewSubscriptionRequest struct {
	Months int `json:"months" binding:"required,min=1,max=12"`
}

// EntitlementResult answers "can this user submit an essay right now". Always
// structured, never a bare boolean, so callers can render a useful message.
type EntitlementResult struct {
	Allowed  bool   `json:"allowed"`
	Reason   string `json:"reason,omitempty"`
	Current  int    `json:"current"`
	Max      int    `json:"max"`
	PlanType string `json:"plan_type,omitempty"`
}

// SubscriptionStatistics is the admin dashboard aggregate.
type SubscriptionStatistics struct {
	ByStatus      map[string]int64 `json:"by_status"`
	ActiveByPlan  map[string]int64 `json:"active_by_plan"`
	ActiveRevenue float64          `json:"active_revenue"`
	ExpiringSoon  int64            `json:"expiring_soon"`
}
