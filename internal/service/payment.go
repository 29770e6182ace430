package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/model"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/gateway"
	"github.com/roomloop/flatmarket/pkg/logger"
)

// Subscription prices in paise, keyed by role.
const (
	priceTenant int64 = 29900
	priceOwner  int64 = 49900
	priceBroker int64 = 99900

	subscriptionDuration = 30 * 24 * time.Hour
)

// paymentStore is the persistence surface PaymentService needs.
type paymentStore interface {
	GetByID(ctx context.Context, id uint) (*model.Payment, error)
	List(ctx context.Context, limit, offset int) ([]model.Payment, int64, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Payment, error)
	CreateSettled(ctx context.Context, payment *model.Payment) error
	Complete(ctx context.Context, payment *model.Payment, subStart, subEnd time.Time) error
	UpdateStatus(ctx context.Context, id uint, status model.PaymentStatus) error
}

// orderCreator is the gateway surface PaymentService needs.
type orderCreator interface {
	CreateOrder(ctx context.Context, params gateway.CreateOrderParams) (*gateway.Order, error)
	KeyID() string
}

// userReader looks up users for settlement.
type userReader interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// PaymentService issues gateway orders, verifies payment signatures and
// settles subscriptions.
type PaymentService struct {
	payments  paymentStore
	users     userReader
	gateway   orderCreator
	keySecret []byte
	currency  string
	now       func() time.Time
}

func NewPaymentService(payments paymentStore, users userReader, gw orderCreator, keySecret, currency string) *PaymentService {
	return &PaymentService{
		payments:  payments,
		users:     users,
		gateway:   gw,
		keySecret: []byte(keySecret),
		currency:  currency,
		now:       time.Now,
	}
}

// PriceFor returns the subscription price in paise for a role. The switch
// is exhaustive over purchasable roles so a new role fails loudly here
// instead of selling for a stale price.
func PriceFor(role model.Role) (int64, error) {
	switch role {
	case model.RoleTenant:
		return priceTenant, nil
	case model.RoleOwner:
		return priceOwner, nil
	case model.RoleBroker:
		return priceBroker, nil
	case model.RoleAdmin:
		return 0, apperrors.ErrInvalidSubscriptionType
	default:
		return 0, apperrors.ErrInvalidSubscriptionType
	}
}

// CreateOrder opens a gateway order for the requested subscription type.
func (s *PaymentService) CreateOrder(ctx context.Context, userID uint, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "payment_service", "CreateOrder")

	subType := model.Role(strings.ToLower(strings.TrimSpace(req.SubscriptionType)))
	amount, err := PriceFor(subType)
	if err != nil {
		return nil, err
	}

	receipt := "rcpt_" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderParams{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"user_id":           strconv.FormatUint(uint64(userID), 10),
			"subscription_type": string(subType),
		},
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Gateway order creation failed").
			Uint("user_id", userID).
			String("subscription_type", string(subType)).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrGatewayUnavailable, err)
	}

	logger.InfoWithContext(ctx, "Order created").
		Uint("user_id", userID).
		String("order_id", order.ID).
		Int64("amount", amount).
		Log()

	return &dto.OrderResponse{
		OrderID:          order.ID,
		Amount:           amount,
		Currency:         order.Currency,
		SubscriptionType: string(subType),
		KeyID:            s.gateway.KeyID(),
	}, nil
}

// VerifySignature checks the gateway's HMAC over "orderID|paymentID".
// Comparison is constant-time.
func (s *PaymentService) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, s.keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Settle verifies a payment confirmation and activates the subscription.
// The payment record and the user's subscription flags are written in one
// transaction; a retry for an already-settled gateway payment is rejected.
func (s *PaymentService) Settle(ctx context.Context, userID uint, req dto.VerifyPaymentRequest) (*dto.SettlementResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "payment_service", "Settle")

	subType := model.Role(strings.ToLower(strings.TrimSpace(req.SubscriptionType)))
	price, err := PriceFor(subType)
	if err != nil {
		return nil, err
	}
	if req.Amount != price {
		logger.WarnWithContext(ctx, "Settlement amount mismatch").
			Uint("user_id", userID).
			Int64("claimed_amount", req.Amount).
			Int64("expected_amount", price).
			Log()
		return nil, apperrors.ErrInvalidInput
	}

	if !s.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		logger.WarnWithContext(ctx, "Payment signature rejected").
			Uint("user_id", userID).
			String("order_id", req.OrderID).
			String("payment_id", req.PaymentID).
			Log()
		return nil, apperrors.ErrInvalidSignature
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	start, end := s.subscriptionWindow(user)
	payment := &model.Payment{
		UserID:            userID,
		GatewayOrderID:    req.OrderID,
		GatewayPaymentID:  req.PaymentID,
		Signature:         req.Signature,
		Amount:            price,
		Currency:          s.currency,
		Status:            model.PaymentCompleted,
		SubscriptionType:  subType,
		SubscriptionStart: &start,
		SubscriptionEnd:   &end,
	}

	if err := s.payments.CreateSettled(ctx, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.WarnWithContext(ctx, "Duplicate settlement rejected").
				Uint("user_id", userID).
				String("payment_id", req.PaymentID).
				Log()
			return nil, apperrors.ErrDuplicatePayment
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	updated.Password = ""

	logger.InfoWithContext(ctx, "Subscription activated").
		Uint("user_id", userID).
		String("subscription_type", string(subType)).
		String("expires_at", end.Format(time.RFC3339)).
		Log()

	return &dto.SettlementResponse{
		Payment: dto.NewPaymentResponse(payment),
		User:    dto.NewUserResponse(updated),
	}, nil
}

// subscriptionWindow computes the new subscription span. Remaining time on
// an active subscription is preserved: the new period stacks on top of it.
func (s *PaymentService) subscriptionWindow(user *model.User) (time.Time, time.Time) {
	now := s.now()
	base := now
	if user.IsSubscribed && user.SubscriptionExpiry != nil && user.SubscriptionExpiry.After(now) {
		base = *user.SubscriptionExpiry
	}
	return now, base.Add(subscriptionDuration)
}

// GetByID returns a single payment for the admin surface.
func (s *PaymentService) GetByID(ctx context.Context, id uint) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return payment, nil
}

// List returns a page of all payments, newest first.
func (s *PaymentService) List(ctx context.Context, limit, offset int) ([]model.Payment, int64, error) {
	payments, total, err := s.payments.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return payments, total, nil
}

// ListByUser returns a user's payments, newest first.
func (s *PaymentService) ListByUser(ctx context.Context, userID uint) ([]model.Payment, error) {
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return payments, nil
}

// SetStatus is the admin status override. Marking a payment completed
// grants the subscription it paid for, but a payment that is already
// completed is left untouched so repeated calls cannot stack extensions.
func (s *PaymentService) SetStatus(ctx context.Context, paymentID uint, status model.PaymentStatus) (*model.Payment, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "payment_service", "SetStatus")

	if !status.Valid() {
		return nil, apperrors.ErrInvalidPaymentStatus
	}

	payment, err := s.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if status == model.PaymentCompleted {
		if payment.Status == model.PaymentCompleted {
			logger.InfoWithContext(ctx, "Payment already completed, override skipped").
				Uint("payment_id", paymentID).
				Log()
			return payment, nil
		}

		user, err := s.users.GetByID(ctx, payment.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}

		start, end := s.subscriptionWindow(user)
		if err := s.payments.Complete(ctx, payment, start, end); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrPaymentNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}

		payment.Status = model.PaymentCompleted
		payment.SubscriptionStart = &start
		payment.SubscriptionEnd = &end
		return payment, nil
	}

	if err := s.payments.UpdateStatus(ctx, paymentID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	payment.Status = status
	payment.SubscriptionStart = nil
	payment.SubscriptionEnd = nil
	return payment, nil
}
