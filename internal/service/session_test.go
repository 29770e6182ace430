package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roomloop/flatmarket/config"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/model"
)

func newTestSessionService() *SessionService {
	return NewSessionService(&config.Config{
		Session: config.SessionConfig{
			Secret:     "test_session_secret",
			Expiry:     30 * 24 * time.Hour,
			CookieName: "token",
		},
	})
}

func subscribedUser(expiry time.Time) *model.User {
	u := &model.User{
		Name:         "Asha Verma",
		Email:        "asha@example.com",
		Role:         model.RoleTenant,
		IsSubscribed: true,
	}
	u.ID = 42
	u.SubscriptionExpiry = &expiry
	return u
}

func TestSessionService_IssueAndVerify(t *testing.T) {
	svc := newTestSessionService()
	expiry := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)
	user := subscribedUser(expiry)

	token, err := svc.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("Expected user ID 42, got %d", claims.UserID)
	}
	if claims.Email != "asha@example.com" {
		t.Errorf("Expected email asha@example.com, got %s", claims.Email)
	}
	if claims.Role != model.RoleTenant {
		t.Errorf("Expected role tenant, got %s", claims.Role)
	}
	if !claims.IsSubscribed {
		t.Error("Expected is_subscribed claim to be true")
	}
	if claims.SubscriptionExpiry != expiry.Unix() {
		t.Errorf("Expected subscription expiry %d, got %d", expiry.Unix(), claims.SubscriptionExpiry)
	}
}

func TestSessionService_Verify_NoSubscription(t *testing.T) {
	svc := newTestSessionService()
	user := &model.User{
		Name:  "Ravi Kumar",
		Email: "ravi@example.com",
		Role:  model.RoleOwner,
	}
	user.ID = 7

	token, err := svc.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.IsSubscribed {
		t.Error("Expected is_subscribed claim to be false")
	}
	if claims.SubscriptionExpiry != 0 {
		t.Errorf("Expected zero subscription expiry, got %d", claims.SubscriptionExpiry)
	}
}

func TestSessionService_Verify_RejectsGarbage(t *testing.T) {
	svc := newTestSessionService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"not a jwt", "not-a-token"},
		{"truncated jwt", "eyJhbGciOiJIUzI1NiJ9.e30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(context.Background(), tt.token); !errors.Is(err, apperrors.ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestSessionService_Verify_RejectsForeignSignature(t *testing.T) {
	issuer := newTestSessionService()
	user := subscribedUser(time.Now().Add(time.Hour))

	token, err := issuer.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	verifier := NewSessionService(&config.Config{
		Session: config.SessionConfig{
			Secret:     "a_different_secret",
			Expiry:     time.Hour,
			CookieName: "token",
		},
	})

	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
