package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/roomloop/flatmarket/config"
	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/model"
	"github.com/roomloop/flatmarket/pkg/logger"
)

// SessionService issues and verifies session tokens. Claims carry a
// snapshot of the user's identity and subscription state taken at issuance;
// verification never touches the database.
type SessionService struct {
	secret       []byte
	expiry       time.Duration
	cookieName   string
	cookieDomain string
	secureCookie bool
}

func NewSessionService(cfg *config.Config) *SessionService {
	return &SessionService{
		secret:       []byte(cfg.Session.Secret),
		expiry:       cfg.Session.Expiry,
		cookieName:   cfg.Session.CookieName,
		cookieDomain: cfg.Session.CookieDomain,
		secureCookie: cfg.IsProduction(),
	}
}

// CookieName returns the session cookie name.
func (s *SessionService) CookieName() string {
	return s.cookieName
}

// Issue signs a session token for the given user.
func (s *SessionService) Issue(ctx context.Context, user *model.User) (string, error) {
	now := time.Now()

	var subscriptionExpiry int64
	if user.SubscriptionExpiry != nil {
		subscriptionExpiry = user.SubscriptionExpiry.Unix()
	}

	claims := jwt.MapClaims{
		"user_id":             user.ID,
		"name":                user.Name,
		"email":               user.Email,
		"role":                string(user.Role),
		"is_subscribed":       user.IsSubscribed,
		"subscription_expiry": subscriptionExpiry,
		"iat":                 now.Unix(),
		"exp":                 now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sign session token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return signed, nil
}

// Verify parses and validates a session token and returns its claims.
// Any parse or signature failure collapses to ErrInvalidToken.
func (s *SessionService) Verify(ctx context.Context, tokenString string) (*dto.SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		logger.DebugWithContext(ctx, "Session token rejected").
			Err(err).
			Log()
		return nil, apperrors.ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}

	userID, ok := mapClaims["user_id"].(float64)
	if !ok || userID <= 0 {
		return nil, apperrors.ErrInvalidToken
	}
	role, _ := mapClaims["role"].(string)
	if !model.Role(role).Valid() {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &dto.SessionClaims{
		UserID: uint(userID),
		Role:   model.Role(role),
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if subscribed, ok := mapClaims["is_subscribed"].(bool); ok {
		claims.IsSubscribed = subscribed
	}
	if expiry, ok := mapClaims["subscription_expiry"].(float64); ok {
		claims.SubscriptionExpiry = int64(expiry)
	}

	return claims, nil
}

// SetCookie writes the session cookie onto the response.
func (s *SessionService) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		s.cookieName,
		token,
		int(s.expiry.Seconds()),
		"/",
		s.cookieDomain,
		s.secureCookie,
		true, // HTTP-only
	)
}

// ClearCookie expires the session cookie.
func (s *SessionService) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.cookieName, "", -1, "/", s.cookieDomain, s.secureCookie, true)
}
