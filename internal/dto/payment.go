package dto

import (
	"time"

	"github.com/roomloop/flatmarket/internal/model"
)

type CreateOrderRequest struct {
	SubscriptionType string `json:"subscription_type" binding:"required"`
}

// OrderResponse is the gateway order handle the client completes payment
// against.
type OrderResponse struct {
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	SubscriptionType string `json:"subscription_type"`
	KeyID            string `json:"key_id"`
}

// VerifyPaymentRequest carries the gateway's payment confirmation back
// from the client. All five fields are required; the signature is the sole
// proof of payment authenticity.
type VerifyPaymentRequest struct {
	OrderID          string `json:"order_id" binding:"required"`
	PaymentID        string `json:"payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
	SubscriptionType string `json:"subscription_type" binding:"required"`
	Amount           int64  `json:"amount" binding:"required,gt=0"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending completed failed"`
}

type PaymentResponse struct {
	ID               uint                `json:"id"`
	UserID           uint                `json:"user_id"`
	GatewayOrderID   string              `json:"gateway_order_id"`
	GatewayPaymentID string              `json:"gateway_payment_id"`
	Amount           int64               `json:"amount"`
	Currency         string              `json:"currency"`
	Status           model.PaymentStatus `json:"status"`
	SubscriptionType model.Role          `json:"subscription_type,omitempty"`
	SubscriptionFrom *time.Time          `json:"subscription_start_date,omitempty"`
	SubscriptionTo   *time.Time          `json:"subscription_end_date,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// SettlementResponse is returned from the verify endpoint: the recorded
// payment plus the updated user view.
type SettlementResponse struct {
	Payment PaymentResponse `json:"payment"`
	User    UserResponse    `json:"user"`
}

// NewPaymentResponse maps a model onto the API view.
func NewPaymentResponse(p *model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           p.Status,
		SubscriptionType: p.SubscriptionType,
		SubscriptionFrom: p.SubscriptionStart,
		SubscriptionTo:   p.SubscriptionEnd,
		CreatedAt:        p.CreatedAt,
	}
}
