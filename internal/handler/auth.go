package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/flatmarket/internal/constants"
	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/middleware"
	"github.com/roomloop/flatmarket/internal/service"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/logger"
	"github.com/roomloop/flatmarket/pkg/validation"
)

type AuthHandler struct {
	userService *service.UserService
	sessions    *service.SessionService
}

func NewAuthHandler(userService *service.UserService, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
	}
}

// Register creates an account and opens a session for it.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid registration payload").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.FormatErrors(err)))
		return
	}

	logger.InfoWithContext(ctx, "Registration request").
		String("email", req.Email).
		String("role", req.Role).
		Log()

	user, err := h.userService.Register(ctx, req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Registration failed").
			String("email", req.Email).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	token, err := h.sessions.Issue(ctx, user)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	h.sessions.SetCookie(c, token)
	logger.LogAuth(user.Email, "register", true)

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	})
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login payload").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.FormatErrors(err)))
		return
	}

	user, err := h.userService.Login(ctx, req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.LogAuth(req.Email, "login", false)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	token, err := h.sessions.Issue(ctx, user)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	h.sessions.SetCookie(c, token)
	logger.LogAuth(user.Email, "login", true)

	c.JSON(http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; logout is cookie removal.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("logged out"))
}

// Me returns the current account, read fresh from the database.
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Me")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
		return
	}

	user, err := h.userService.GetByID(ctx, claims.UserID)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
