package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/model"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/logger"
)

// userStore is the persistence surface UserService needs. Implemented by
// repository.UserRepository; faked in tests.
type userStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string, includePassword bool) (*model.User, error)
	List(ctx context.Context, limit, offset int, search string) ([]model.User, int64, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	UpdateLastLogin(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type UserService struct {
	users userStore
}

func NewUserService(users userStore) *UserService {
	return &UserService{users: users}
}

// Register creates a new account. Emails are unique case-insensitively and
// the admin role cannot be self-assigned.
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "user_service", "Register")

	role := model.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if !role.Purchasable() {
		logger.WarnWithContext(ctx, "Registration rejected").
			String("email", req.Email).
			String("role", req.Role).
			Log()
		return nil, apperrors.ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.GetByEmail(ctx, email, false); err == nil {
		return nil, apperrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    strings.TrimSpace(req.Phone),
		Password: string(hash),
		Role:     role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the lookup; the unique
		// index is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		Uint("user_id", user.ID).
		String("role", string(user.Role)).
		Log()

	user.Password = ""
	return user, nil
}

// Login verifies credentials and returns the account. Unknown email and
// wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, req dto.LoginRequest) (*model.User, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "user_service", "Login")

	user, err := s.users.GetByEmail(ctx, req.Email, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Non-fatal; the login still succeeds
		logger.WarnWithContext(ctx, "Failed to stamp last login").
			Uint("user_id", user.ID).
			Err(err).
			Log()
	}

	logger.InfoWithContext(ctx, "User logged in").
		Uint("user_id", user.ID).
		Log()

	user.Password = ""
	user.LastLogin = time.Now()
	return user, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	user.Password = ""
	return user, nil
}

// UpdateProfile applies self-service profile edits. Role, email and
// subscription state are not reachable from here.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*model.User, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "user_service", "UpdateProfile")

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		updates["phone"] = strings.TrimSpace(req.Phone)
	}
	if req.ProfilePicture != "" {
		updates["profile_picture"] = req.ProfilePicture
	}

	if len(updates) > 0 {
		if err := s.users.Update(ctx, userID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	return s.GetByID(ctx, userID)
}

// UpdatePassword rotates a user's password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID uint, req dto.UpdatePasswordRequest) error {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "user_service", "UpdatePassword")

	if req.NewPassword != req.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperrors.ErrIncorrectPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.Update(ctx, userID, map[string]interface{}{"password": string(hash)}); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password updated").
		Uint("user_id", userID).
		Log()

	return nil
}

// List returns a page of users for the admin surface.
func (s *UserService) List(ctx context.Context, limit, offset int, search string) ([]model.User, int64, error) {
	users, total, err := s.users.List(ctx, limit, offset, search)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return users, total, nil
}

// AdminUpdate applies an admin edit, including role and subscription state.
func (s *UserService) AdminUpdate(ctx context.Context, userID uint, req dto.AdminUpdateUserRequest) (*model.User, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "user_service", "AdminUpdate")

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		updates["phone"] = strings.TrimSpace(req.Phone)
	}
	if req.Role != "" {
		role := model.Role(strings.ToLower(req.Role))
		if !role.Valid() {
			return nil, apperrors.ErrInvalidRole
		}
		updates["role"] = role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		updates["password"] = string(hash)
	}
	if req.IsSubscribed != nil {
		updates["is_subscribed"] = *req.IsSubscribed
	}
	if req.SubscriptionExpiry != nil {
		updates["subscription_expiry_date"] = *req.SubscriptionExpiry
	}

	if len(updates) > 0 {
		if err := s.users.Update(ctx, userID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	return s.GetByID(ctx, userID)
}

// Delete removes a user. Admins cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, actorID, userID uint) error {
	ctx = ctxutil.NewContextWithRequest(ctx, nil, "user_service", "Delete")

	if actorID == userID {
		return apperrors.ErrSelfDeletion
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User deleted by admin").
		Uint("user_id", userID).
		Uint("actor_id", actorID).
		Log()

	return nil
}
