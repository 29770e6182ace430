package dto

import (
	"time"

	"github.com/roomloop/flatmarket/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,min=10,max=15"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name           string `json:"name" binding:"omitempty,min=2,max=50"`
	Phone          string `json:"phone" binding:"omitempty,min=10,max=15"`
	ProfilePicture string `json:"profile_picture" binding:"omitempty,url,max=2048"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// AdminUpdateUserRequest is the admin-only edit surface: role and
// subscription state are mutable here and nowhere else outside settlement.
type AdminUpdateUserRequest struct {
	Name               string     `json:"name" binding:"omitempty,min=2,max=50"`
	Phone              string     `json:"phone" binding:"omitempty,min=10,max=15"`
	Role               string     `json:"role" binding:"omitempty"`
	Password           string     `json:"password" binding:"omitempty,min=6,max=100"`
	IsSubscribed       *bool      `json:"is_subscribed"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry_date"`
}

// UserResponse is the sanitized user view. It deliberately has no
// password field, so a credential hash can never serialize out.
type UserResponse struct {
	ID                 uint       `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone,omitempty"`
	ProfilePicture     string     `json:"profile_picture,omitempty"`
	Role               model.Role `json:"role"`
	IsSubscribed       bool       `json:"is_subscribed"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry_date,omitempty"`
	LastLogin          time.Time  `json:"last_login"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// SessionClaims is the decoded, verified payload of a session token.
// IsSubscribed/SubscriptionExpiry are a snapshot taken at issuance.
type SessionClaims struct {
	UserID             uint
	Name               string
	Email              string
	Role               model.Role
	IsSubscribed       bool
	SubscriptionExpiry int64 // unix seconds, 0 when none
}

// NewUserResponse maps a model onto the sanitized view.
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		ProfilePicture:     u.ProfilePicture,
		Role:               u.Role,
		IsSubscribed:       u.IsSubscribed,
		SubscriptionExpiry: u.SubscriptionExpiry,
		LastLogin:          u.LastLogin,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
