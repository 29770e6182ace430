package repository

import (
	"context"
	"time"

	"github.com/roomloop/flatmarket/internal/model"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/logger"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*model.Payment, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "GetByID")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var payment model.Payment
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&payment)
	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to get payment by ID").
			Uint("payment_id", id).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return &payment, nil
}

// List returns a page of payments, newest first.
func (r *PaymentRepository) List(ctx context.Context, limit, offset int) ([]model.Payment, int64, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "List")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var payments []model.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Payment{})

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count payments").
			Err(err).
			Log()
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch payments").
			Int("limit", limit).
			Int("offset", offset).
			Err(err).
			Log()
		return nil, 0, err
	}

	return payments, total, nil
}

// ListByUser returns all payments made by a user, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID uint) ([]model.Payment, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ListByUser")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	var payments []model.Payment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch payments by user").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, err
	}

	return payments, nil
}

// CreateSettled records a completed payment and updates the paying user's
// subscription state in one transaction. Either both writes land or
// neither does.
func (r *PaymentRepository) CreateSettled(ctx context.Context, payment *model.Payment) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "CreateSettled")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		result := tx.Model(&model.User{}).Where("id = ?", payment.UserID).Updates(map[string]interface{}{
			"is_subscribed":            true,
			"subscription_expiry_date": payment.SubscriptionEnd,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to settle payment").
			Uint("user_id", payment.UserID).
			String("gateway_order_id", payment.GatewayOrderID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Payment settled").
		Uint("payment_id", payment.ID).
		Uint("user_id", payment.UserID).
		Int64("amount", payment.Amount).
		Duration(time.Since(start)).
		Log()

	return nil
}

// Complete marks an existing payment completed with the given subscription
// window and extends the user's subscription, in one transaction. Used by
// the admin status override.
func (r *PaymentRepository) Complete(ctx context.Context, payment *model.Payment, subStart, subEnd time.Time) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Complete")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
			"status":                  model.PaymentCompleted,
			"subscription_start_date": subStart,
			"subscription_end_date":   subEnd,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.User{}).Where("id = ?", payment.UserID).Updates(map[string]interface{}{
			"is_subscribed":            true,
			"subscription_expiry_date": subEnd,
		}).Error
	})

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to complete payment").
			Uint("payment_id", payment.ID).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Payment completed by override").
		Uint("payment_id", payment.ID).
		Uint("user_id", payment.UserID).
		Log()

	return nil
}

// UpdateStatus sets a non-completed status. Subscription dates are cleared
// so they stay populated exactly when the status is completed.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uint, status model.PaymentStatus) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "UpdateStatus")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "repository")

	result := r.db.WithContext(ctx).Model(&model.Payment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":                  status,
		"subscription_start_date": nil,
		"subscription_end_date":   nil,
	})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update payment status").
			Uint("payment_id", id).
			String("status", string(status)).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
