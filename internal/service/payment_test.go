package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/model"
	"github.com/roomloop/flatmarket/pkg/gateway"
)

const testKeySecret = "rzp_test_secret"

// signFor computes the gateway's signature the way the gateway would.
func signFor(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type fakePaymentStore struct {
	payments    map[uint]*model.Payment
	settled     []*model.Payment
	nextID      uint
	createErr   error
	completeErr error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[uint]*model.Payment{}, nextID: 1}
}

func (f *fakePaymentStore) GetByID(_ context.Context, id uint) (*model.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) List(_ context.Context, limit, offset int) ([]model.Payment, int64, error) {
	var out []model.Payment
	for _, p := range f.payments {
		out = append(out, *p)
	}
	return out, int64(len(f.payments)), nil
}

func (f *fakePaymentStore) ListByUser(_ context.Context, userID uint) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) CreateSettled(_ context.Context, payment *model.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, p := range f.payments {
		if p.GatewayPaymentID == payment.GatewayPaymentID {
			return gorm.ErrDuplicatedKey
		}
	}
	payment.ID = f.nextID
	f.nextID++
	cp := *payment
	f.payments[payment.ID] = &cp
	f.settled = append(f.settled, &cp)
	return nil
}

func (f *fakePaymentStore) Complete(_ context.Context, payment *model.Payment, subStart, subEnd time.Time) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	p, ok := f.payments[payment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = model.PaymentCompleted
	p.SubscriptionStart = &subStart
	p.SubscriptionEnd = &subEnd
	return nil
}

func (f *fakePaymentStore) UpdateStatus(_ context.Context, id uint, status model.PaymentStatus) error {
	p, ok := f.payments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	p.SubscriptionStart = nil
	p.SubscriptionEnd = nil
	return nil
}

type fakeUserReader struct {
	users map[uint]*model.User
}

func (f *fakeUserReader) GetByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeGateway struct {
	lastParams gateway.CreateOrderParams
	err        error
}

func (f *fakeGateway) CreateOrder(_ context.Context, params gateway.CreateOrderParams) (*gateway.Order, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.Order{
		ID:       "order_TEST1",
		Amount:   params.Amount,
		Currency: params.Currency,
		Receipt:  params.Receipt,
		Status:   "created",
	}, nil
}

func (f *fakeGateway) KeyID() string { return "rzp_test_key" }

func newTestPaymentService(store *fakePaymentStore, users *fakeUserReader, gw *fakeGateway) *PaymentService {
	return NewPaymentService(store, users, gw, testKeySecret, "INR")
}

func testUser(id uint, role model.Role) *model.User {
	u := &model.User{Name: "Test User", Email: "user@example.com", Role: role}
	u.ID = id
	return u
}

func TestPriceFor(t *testing.T) {
	tests := []struct {
		role      model.Role
		price     int64
		expectErr bool
	}{
		{model.RoleTenant, 29900, false},
		{model.RoleOwner, 49900, false},
		{model.RoleBroker, 99900, false},
		{model.RoleAdmin, 0, true},
		{model.Role("vip"), 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			price, err := PriceFor(tt.role)
			if tt.expectErr {
				if !errors.Is(err, apperrors.ErrInvalidSubscriptionType) {
					t.Errorf("Expected ErrInvalidSubscriptionType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PriceFor(%s) failed: %v", tt.role, err)
			}
			if price != tt.price {
				t.Errorf("Expected price %d, got %d", tt.price, price)
			}
		})
	}
}

func TestPaymentService_CreateOrder(t *testing.T) {
	gw := &fakeGateway{}
	svc := newTestPaymentService(newFakePaymentStore(), &fakeUserReader{}, gw)

	order, err := svc.CreateOrder(context.Background(), 5, dto.CreateOrderRequest{SubscriptionType: "owner"})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if order.OrderID != "order_TEST1" {
		t.Errorf("Expected order ID order_TEST1, got %s", order.OrderID)
	}
	if order.Amount != 49900 {
		t.Errorf("Expected amount 49900, got %d", order.Amount)
	}
	if order.KeyID != "rzp_test_key" {
		t.Errorf("Expected key ID rzp_test_key, got %s", order.KeyID)
	}
	if gw.lastParams.Notes["subscription_type"] != "owner" {
		t.Errorf("Expected subscription_type note owner, got %s", gw.lastParams.Notes["subscription_type"])
	}
}

func TestPaymentService_CreateOrder_AdminNotPurchasable(t *testing.T) {
	svc := newTestPaymentService(newFakePaymentStore(), &fakeUserReader{}, &fakeGateway{})

	_, err := svc.CreateOrder(context.Background(), 5, dto.CreateOrderRequest{SubscriptionType: "admin"})
	if !errors.Is(err, apperrors.ErrInvalidSubscriptionType) {
		t.Errorf("Expected ErrInvalidSubscriptionType, got %v", err)
	}
}

func TestPaymentService_CreateOrder_GatewayDown(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection refused")}
	svc := newTestPaymentService(newFakePaymentStore(), &fakeUserReader{}, gw)

	_, err := svc.CreateOrder(context.Background(), 5, dto.CreateOrderRequest{SubscriptionType: "tenant"})
	if !errors.Is(err, apperrors.ErrGatewayUnavailable) {
		t.Errorf("Expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestPaymentService_VerifySignature(t *testing.T) {
	svc := newTestPaymentService(newFakePaymentStore(), &fakeUserReader{}, &fakeGateway{})

	if !svc.VerifySignature("order_1", "pay_1", signFor("order_1", "pay_1")) {
		t.Error("Expected valid signature to verify")
	}
	if svc.VerifySignature("order_1", "pay_1", signFor("order_1", "pay_2")) {
		t.Error("Expected signature over wrong payment to fail")
	}
	if svc.VerifySignature("order_1", "pay_1", "deadbeef") {
		t.Error("Expected garbage signature to fail")
	}

	// Mutating any single character of the inputs must flip the result.
	sig := signFor("order_1", "pay_1")
	mutated := []byte(sig)
	mutated[0] ^= 1
	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
	}{
		{"mutated signature", "order_1", "pay_1", string(mutated)},
		{"mutated order id", "order_2", "pay_1", sig},
		{"mutated payment id", "order_1", "pay_2", sig},
		{"truncated signature", "order_1", "pay_1", sig[:len(sig)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if svc.VerifySignature(tt.orderID, tt.paymentID, tt.signature) {
				t.Error("Expected mutated input to fail verification")
			}
		})
	}
}

func TestPaymentService_Settle(t *testing.T) {
	store := newFakePaymentStore()
	users := &fakeUserReader{users: map[uint]*model.User{9: testUser(9, model.RoleTenant)}}
	svc := newTestPaymentService(store, users, &fakeGateway{})

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	result, err := svc.Settle(context.Background(), 9, dto.VerifyPaymentRequest{
		OrderID:          "order_1",
		PaymentID:        "pay_1",
		Signature:        signFor("order_1", "pay_1"),
		SubscriptionType: "tenant",
		Amount:           29900,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if result.Payment.Status != model.PaymentCompleted {
		t.Errorf("Expected status completed, got %s", result.Payment.Status)
	}
	if result.Payment.SubscriptionTo == nil {
		t.Fatal("Expected subscription end date to be set")
	}
	wantEnd := now.Add(30 * 24 * time.Hour)
	if !result.Payment.SubscriptionTo.Equal(wantEnd) {
		t.Errorf("Expected subscription end %v, got %v", wantEnd, *result.Payment.SubscriptionTo)
	}
	if len(store.settled) != 1 {
		t.Fatalf("Expected one settled payment, got %d", len(store.settled))
	}
	if store.settled[0].GatewayPaymentID != "pay_1" {
		t.Errorf("Expected gateway payment ID pay_1, got %s", store.settled[0].GatewayPaymentID)
	}
}

func TestPaymentService_Settle_StacksOnActiveSubscription(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	currentExpiry := now.Add(10 * 24 * time.Hour)

	user := testUser(9, model.RoleTenant)
	user.IsSubscribed = true
	user.SubscriptionExpiry = &currentExpiry

	store := newFakePaymentStore()
	users := &fakeUserReader{users: map[uint]*model.User{9: user}}
	svc := newTestPaymentService(store, users, &fakeGateway{})
	svc.now = func() time.Time { return now }

	result, err := svc.Settle(context.Background(), 9, dto.VerifyPaymentRequest{
		OrderID:          "order_2",
		PaymentID:        "pay_2",
		Signature:        signFor("order_2", "pay_2"),
		SubscriptionType: "tenant",
		Amount:           29900,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	wantEnd := currentExpiry.Add(30 * 24 * time.Hour)
	if !result.Payment.SubscriptionTo.Equal(wantEnd) {
		t.Errorf("Expected remaining time preserved (end %v), got %v", wantEnd, *result.Payment.SubscriptionTo)
	}
}

func TestPaymentService_Settle_BadSignature(t *testing.T) {
	store := newFakePaymentStore()
	users := &fakeUserReader{users: map[uint]*model.User{9: testUser(9, model.RoleTenant)}}
	svc := newTestPaymentService(store, users, &fakeGateway{})

	_, err := svc.Settle(context.Background(), 9, dto.VerifyPaymentRequest{
		OrderID:          "order_1",
		PaymentID:        "pay_1",
		Signature:        "forged",
		SubscriptionType: "tenant",
		Amount:           29900,
	})
	if !errors.Is(err, apperrors.ErrInvalidSignature) {
		t.Errorf("Expected ErrInvalidSignature, got %v", err)
	}
	if len(store.settled) != 0 {
		t.Error("Expected no payment recorded for a forged signature")
	}
}

func TestPaymentService_Settle_AmountMismatch(t *testing.T) {
	users := &fakeUserReader{users: map[uint]*model.User{9: testUser(9, model.RoleTenant)}}
	svc := newTestPaymentService(newFakePaymentStore(), users, &fakeGateway{})

	_, err := svc.Settle(context.Background(), 9, dto.VerifyPaymentRequest{
		OrderID:          "order_1",
		PaymentID:        "pay_1",
		Signature:        signFor("order_1", "pay_1"),
		SubscriptionType: "tenant",
		Amount:           100,
	})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for amount mismatch, got %v", err)
	}
}

func TestPaymentService_Settle_DuplicateRejected(t *testing.T) {
	store := newFakePaymentStore()
	users := &fakeUserReader{users: map[uint]*model.User{9: testUser(9, model.RoleTenant)}}
	svc := newTestPaymentService(store, users, &fakeGateway{})

	req := dto.VerifyPaymentRequest{
		OrderID:          "order_1",
		PaymentID:        "pay_1",
		Signature:        signFor("order_1", "pay_1"),
		SubscriptionType: "tenant",
		Amount:           29900,
	}

	if _, err := svc.Settle(context.Background(), 9, req); err != nil {
		t.Fatalf("First settle failed: %v", err)
	}

	_, err := svc.Settle(context.Background(), 9, req)
	if !errors.Is(err, apperrors.ErrDuplicatePayment) {
		t.Errorf("Expected ErrDuplicatePayment on retry, got %v", err)
	}
	if len(store.settled) != 1 {
		t.Errorf("Expected exactly one settled payment, got %d", len(store.settled))
	}
}

func TestPaymentService_SetStatus_CompleteGrantsSubscription(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := newFakePaymentStore()
	pending := &model.Payment{UserID: 9, GatewayPaymentID: "pay_3", Status: model.PaymentPending}
	pending.ID = 1
	store.payments[1] = pending
	store.nextID = 2

	users := &fakeUserReader{users: map[uint]*model.User{9: testUser(9, model.RoleTenant)}}
	svc := newTestPaymentService(store, users, &fakeGateway{})
	svc.now = func() time.Time { return now }

	payment, err := svc.SetStatus(context.Background(), 1, model.PaymentCompleted)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	if payment.Status != model.PaymentCompleted {
		t.Errorf("Expected status completed, got %s", payment.Status)
	}
	wantEnd := now.Add(30 * 24 * time.Hour)
	if payment.SubscriptionEnd == nil || !payment.SubscriptionEnd.Equal(wantEnd) {
		t.Errorf("Expected subscription end %v, got %v", wantEnd, payment.SubscriptionEnd)
	}
}

func TestPaymentService_SetStatus_CompletedIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(30 * 24 * time.Hour)

	store := newFakePaymentStore()
	completed := &model.Payment{
		UserID:           9,
		GatewayPaymentID: "pay_4",
		Status:           model.PaymentCompleted,
		SubscriptionEnd:  &end,
	}
	completed.ID = 1
	store.payments[1] = completed
	store.completeErr = errors.New("Complete must not be called for an already-completed payment")

	users := &fakeUserReader{users: map[uint]*model.User{9: testUser(9, model.RoleTenant)}}
	svc := newTestPaymentService(store, users, &fakeGateway{})
	svc.now = func() time.Time { return now.Add(48 * time.Hour) }

	payment, err := svc.SetStatus(context.Background(), 1, model.PaymentCompleted)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	if payment.SubscriptionEnd == nil || !payment.SubscriptionEnd.Equal(end) {
		t.Errorf("Expected subscription end unchanged at %v, got %v", end, payment.SubscriptionEnd)
	}
}

func TestPaymentService_SetStatus_FailClearsDates(t *testing.T) {
	store := newFakePaymentStore()
	now := time.Now()
	p := &model.Payment{
		UserID:            9,
		Status:            model.PaymentPending,
		SubscriptionStart: &now,
	}
	p.ID = 1
	store.payments[1] = p

	users := &fakeUserReader{users: map[uint]*model.User{9: testUser(9, model.RoleTenant)}}
	svc := newTestPaymentService(store, users, &fakeGateway{})

	payment, err := svc.SetStatus(context.Background(), 1, model.PaymentFailed)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	if payment.Status != model.PaymentFailed {
		t.Errorf("Expected status failed, got %s", payment.Status)
	}
	if payment.SubscriptionStart != nil || payment.SubscriptionEnd != nil {
		t.Error("Expected subscription dates cleared for a failed payment")
	}
}

func TestPaymentService_SetStatus_UnknownPayment(t *testing.T) {
	users := &fakeUserReader{users: map[uint]*model.User{}}
	svc := newTestPaymentService(newFakePaymentStore(), users, &fakeGateway{})

	_, err := svc.SetStatus(context.Background(), 404, model.PaymentFailed)
	if !errors.Is(err, apperrors.ErrPaymentNotFound) {
		t.Errorf("Expected ErrPaymentNotFound, got %v", err)
	}
}

func TestPaymentService_SetStatus_InvalidStatus(t *testing.T) {
	users := &fakeUserReader{users: map[uint]*model.User{}}
	svc := newTestPaymentService(newFakePaymentStore(), users, &fakeGateway{})

	_, err := svc.SetStatus(context.Background(), 1, model.PaymentStatus("refunded"))
	if !errors.Is(err, apperrors.ErrInvalidPaymentStatus) {
		t.Errorf("Expected ErrInvalidPaymentStatus, got %v", err)
	}
}
