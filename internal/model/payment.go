package model

import (
	"time"
)

// Payment statuses and methods. The gateway is simulated: a payment row is
// only written once the (fake) gateway reports it confirmed.
const (
	PaymentConfirmed = "confirmed"

	MethodPix        = "pix"
	MethodCreditCard = "credit_card"
	MethodBoleto     = "boleto"
	MethodAutoRenew  = "auto_renew"
)

type Payment struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	Amount        float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	PlanType      string    `gorm:"size:20;not null" json:"plan_type"`
	Method        string    `gorm:"size:20;not null" json:"method"`
	Status        string    `gorm:"size:20;default:confirmed" json:"status"`
	TransactionID string    `gorm:"size:100" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
