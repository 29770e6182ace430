package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/model"
)

type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string, includePassword bool) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			if !includePassword {
				cp.Password = ""
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) List(_ context.Context, limit, offset int, search string) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.users {
		cp := *u
		cp.Password = ""
		out = append(out, cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, id uint, updates map[string]interface{}) error {
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, val := range updates {
		switch col {
		case "name":
			u.Name = val.(string)
		case "phone":
			u.Phone = val.(string)
		case "profile_picture":
			u.ProfilePicture = val.(string)
		case "password":
			u.Password = val.(string)
		case "role":
			u.Role = val.(model.Role)
		case "is_subscribed":
			u.IsSubscribed = val.(bool)
		}
	}
	return nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id uint) error { return nil }

func (f *fakeUserStore) Delete(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

func registerTestUser(t *testing.T, svc *UserService, email, role string) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return user
}

func TestUserService_Register(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	user := registerTestUser(t, svc, "Asha@Example.com", "tenant")

	if user.Email != "asha@example.com" {
		t.Errorf("Expected lowercased email, got %s", user.Email)
	}
	if user.Role != model.RoleTenant {
		t.Errorf("Expected role tenant, got %s", user.Role)
	}
	if user.IsSubscribed {
		t.Error("Expected new accounts to be unsubscribed")
	}
	if user.Password != "" {
		t.Error("Expected password stripped from the returned user")
	}

	stored := store.users[user.ID]
	if stored.Password == "secret123" {
		t.Error("Expected password to be hashed, found plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")); err != nil {
		t.Errorf("Stored hash does not match the password: %v", err)
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	registerTestUser(t, svc, "asha@example.com", "tenant")

	tests := []string{
		"asha@example.com",
		"ASHA@EXAMPLE.COM",
		"  asha@example.com  ",
	}

	for _, email := range tests {
		_, err := svc.Register(context.Background(), dto.RegisterRequest{
			Name:     "Other",
			Email:    email,
			Password: "secret123",
			Role:     "owner",
		})
		if !errors.Is(err, apperrors.ErrEmailExists) {
			t.Errorf("Register(%q): expected ErrEmailExists, got %v", email, err)
		}
	}
}

func TestUserService_Register_RejectsBadRoles(t *testing.T) {
	svc := NewUserService(newFakeUserStore())

	for _, role := range []string{"admin", "landlord", ""} {
		_, err := svc.Register(context.Background(), dto.RegisterRequest{
			Name:     "X",
			Email:    "x@example.com",
			Password: "secret123",
			Role:     role,
		})
		if !errors.Is(err, apperrors.ErrInvalidRole) {
			t.Errorf("Register with role %q: expected ErrInvalidRole, got %v", role, err)
		}
	}
}

func TestUserService_Login(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	registered := registerTestUser(t, svc, "ravi@example.com", "broker")

	user, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "RAVI@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Expected user %d, got %d", registered.ID, user.ID)
	}
	if user.Password != "" {
		t.Error("Expected password stripped from login result")
	}
}

func TestUserService_Login_InvalidCredentials(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	registerTestUser(t, svc, "ravi@example.com", "broker")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ravi@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), dto.LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, apperrors.ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestUserService_UpdatePassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)
	user := registerTestUser(t, svc, "asha@example.com", "tenant")

	err := svc.UpdatePassword(context.Background(), user.ID, dto.UpdatePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret456",
		ConfirmPassword: "newsecret456",
	})
	if err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), dto.LoginRequest{Email: user.Email, Password: "newsecret456"}); err != nil {
		t.Errorf("Login with new password failed: %v", err)
	}
}

func TestUserService_UpdatePassword_Errors(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	user := registerTestUser(t, svc, "asha@example.com", "tenant")

	err := svc.UpdatePassword(context.Background(), user.ID, dto.UpdatePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret456",
		ConfirmPassword: "different",
	})
	if !errors.Is(err, apperrors.ErrPasswordMismatch) {
		t.Errorf("Expected ErrPasswordMismatch, got %v", err)
	}

	err = svc.UpdatePassword(context.Background(), user.ID, dto.UpdatePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret456",
		ConfirmPassword: "newsecret456",
	})
	if !errors.Is(err, apperrors.ErrIncorrectPassword) {
		t.Errorf("Expected ErrIncorrectPassword, got %v", err)
	}
}

func TestUserService_AdminUpdate(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)
	user := registerTestUser(t, svc, "asha@example.com", "tenant")

	subscribed := true
	updated, err := svc.AdminUpdate(context.Background(), user.ID, dto.AdminUpdateUserRequest{
		Role:         "owner",
		IsSubscribed: &subscribed,
	})
	if err != nil {
		t.Fatalf("AdminUpdate failed: %v", err)
	}

	if updated.Role != model.RoleOwner {
		t.Errorf("Expected role owner, got %s", updated.Role)
	}
	if !updated.IsSubscribed {
		t.Error("Expected user to be subscribed after admin update")
	}

	if _, err := svc.AdminUpdate(context.Background(), user.ID, dto.AdminUpdateUserRequest{Role: "superuser"}); !errors.Is(err, apperrors.ErrInvalidRole) {
		t.Errorf("Expected ErrInvalidRole, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	svc := NewUserService(newFakeUserStore())
	user := registerTestUser(t, svc, "asha@example.com", "tenant")

	if err := svc.Delete(context.Background(), user.ID, user.ID); !errors.Is(err, apperrors.ErrSelfDeletion) {
		t.Errorf("Expected ErrSelfDeletion, got %v", err)
	}

	if err := svc.Delete(context.Background(), 999, user.ID); err != nil {
		t.Errorf("Delete failed: %v", err)
	}

	if err := svc.Delete(context.Background(), 999, user.ID); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for a second delete, got %v", err)
	}
}
