package dto

// ConfirmPaymentRequest is the payload the simulated gateway posts back once
// a charge is confirmed. PlanType is a hint; when absent the plan is inferred
// from the amount.
type ConfirmPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PlanType      string  `json:"plan_type"`
	Method        string  `json:"method" binding:"required"`
	TransactionID string  `json:"transaction_id"`
	AutoRenew     bool    `json:"auto_renew"`
}
