package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/flatmarket/internal/constants"
	"github.com/roomloop/flatmarket/internal/dto"
	"github.com/roomloop/flatmarket/internal/model"
	"github.com/roomloop/flatmarket/internal/service"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/logger"
)

const claimsContextKey = "session_claims"

type SessionMiddleware struct {
	sessions *service.SessionService
}

func NewSessionMiddleware(sessions *service.SessionService) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// tokenFromRequest extracts the session token, preferring the cookie with
// a Bearer header fallback for non-browser clients.
func (m *SessionMiddleware) tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(m.sessions.CookieName()); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

// RequireAuth validates the session token and stores its claims on the
// request. Verification is claims-only; no database read happens here.
func (m *SessionMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.tokenFromRequest(c)
		if token == "" {
			logger.DebugWithContext(c.Request.Context(), "Missing session token").
				String("path", c.Request.URL.Path).
				String("method", c.Request.Method).
				Log()
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
			c.Abort()
			return
		}

		claims, err := m.sessions.Verify(c.Request.Context(), token)
		if err != nil {
			logger.WarnWithContext(c.Request.Context(), "Session token rejected").
				String("path", c.Request.URL.Path).
				String("method", c.Request.Method).
				Err(err).
				Log()
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// RequireRole allows only the given roles past. Must run after RequireAuth.
func (m *SessionMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		logger.WarnWithContext(c.Request.Context(), "Role check failed").
			Uint("user_id", claims.UserID).
			String("role", string(claims.Role)).
			String("path", c.Request.URL.Path).
			Log()
		c.JSON(http.StatusForbidden, constants.BuildErrorResponse(constants.MsgAccessDenied, nil))
		c.Abort()
	}
}

// RequireSubscription gates subscriber-only content. The subscription must
// be flagged active AND unexpired in the claims snapshot; a token minted
// before an expiry still stops working once the expiry passes. Admins pass
// unconditionally. Must run after RequireAuth.
func (m *SessionMiddleware) RequireSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
			c.Abort()
			return
		}

		if claims.Role == model.RoleAdmin {
			c.Next()
			return
		}

		if !claims.IsSubscribed || claims.SubscriptionExpiry == 0 ||
			time.Now().Unix() >= claims.SubscriptionExpiry {
			logger.DebugWithContext(c.Request.Context(), "Subscription gate closed").
				Uint("user_id", claims.UserID).
				Bool("is_subscribed", claims.IsSubscribed).
				Int64("subscription_expiry", claims.SubscriptionExpiry).
				Log()
			c.JSON(http.StatusForbidden, constants.BuildErrorResponse(constants.MsgSubscriptionRequired, nil))
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClaimsFromContext returns the verified session claims set by RequireAuth.
func ClaimsFromContext(c *gin.Context) (*dto.SessionClaims, bool) {
	val, exists := c.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*dto.SessionClaims)
	return claims, ok
}
