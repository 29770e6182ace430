package model

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Valid reports whether the status is one of the known values.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// Payment records a settled (or admin-overridden) gateway payment.
// SubscriptionStart/SubscriptionEnd are populated exactly when the status
// is completed. The unique index on gateway_payment_id rejects a duplicate
// settlement retry for the same gateway payment.
type Payment struct {
	gorm.Model
	UserID uint `gorm:"column:user_id;not null;index"`

	GatewayOrderID   string `gorm:"column:gateway_order_id;not null;index"`
	GatewayPaymentID string `gorm:"column:gateway_payment_id;uniqueIndex"`
	Signature        string `gorm:"column:signature"`

	// Amount in minor currency units (paise)
	Amount   int64         `gorm:"column:amount;not null"`
	Currency string        `gorm:"column:currency;type:varchar(8);not null"`
	Status   PaymentStatus `gorm:"column:status;type:varchar(16);not null;index"`

	SubscriptionType  Role       `gorm:"column:subscription_type;type:varchar(16)"`
	SubscriptionStart *time.Time `gorm:"column:subscription_start_date"`
	SubscriptionEnd   *time.Time `gorm:"column:subscription_end_date"`
}
