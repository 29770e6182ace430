package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomloop/flatmarket/internal/constants"
	"github.com/roomloop/flatmarket/internal/dto"
	apperrors "github.com/roomloop/flatmarket/internal/errors"
	"github.com/roomloop/flatmarket/internal/middleware"
	"github.com/roomloop/flatmarket/internal/model"
	"github.com/roomloop/flatmarket/internal/service"
	ctxutil "github.com/roomloop/flatmarket/pkg/context"
	"github.com/roomloop/flatmarket/pkg/logger"
	"github.com/roomloop/flatmarket/pkg/validation"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	userService    *service.UserService
	sessions       *service.SessionService
}

func NewPaymentHandler(paymentService *service.PaymentService, userService *service.UserService, sessions *service.SessionService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		userService:    userService,
		sessions:       sessions,
	}
}

// CreateOrder opens a gateway order for a subscription purchase.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "CreateOrder")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.FormatErrors(err)))
		return
	}

	order, err := h.paymentService.CreateOrder(ctx, claims.UserID, req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Order creation failed").
			Uint("user_id", claims.UserID).
			String("subscription_type", req.SubscriptionType).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, order)
}

// Verify settles a payment confirmation. On success the subscription is
// active and a fresh session cookie carrying the new claims snapshot is
// issued, so the subscriber gate opens without a re-login.
func (h *PaymentHandler) Verify(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VerifyPayment")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.FormatErrors(err)))
		return
	}

	result, err := h.paymentService.Settle(ctx, claims.UserID, req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Payment verification failed").
			Uint("user_id", claims.UserID).
			String("order_id", req.OrderID).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	user, err := h.userService.GetByID(ctx, claims.UserID)
	if err == nil {
		if token, terr := h.sessions.Issue(ctx, user); terr == nil {
			h.sessions.SetCookie(c, token)
		}
	}

	c.JSON(http.StatusOK, result)
}

// Mine returns the caller's payment history.
func (h *PaymentHandler) Mine(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "MyPayments")

	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAuthRequired, nil))
		return
	}

	payments, err := h.paymentService.ListByUser(ctx, claims.UserID)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	responses := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, dto.NewPaymentResponse(&payments[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": responses})
}

// List returns a page of all payments. Admin only.
func (h *PaymentHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ListPayments")

	pagination := constants.ParsePaginationParams(c)

	payments, total, err := h.paymentService.List(ctx, pagination.Limit, pagination.Offset)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to list payments").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	responses := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, dto.NewPaymentResponse(&payments[i]))
	}

	pageTotal := int((total + int64(pagination.Limit) - 1) / int64(pagination.Limit))
	c.JSON(http.StatusOK, constants.BuildListResponse(total, pagination.Page, pageTotal, responses))
}

// SetStatus is the admin payment-status override.
func (h *PaymentHandler) SetStatus(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "SetPaymentStatus")

	id, err := parseIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("invalid payment id", nil))
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, validation.FormatErrors(err)))
		return
	}

	payment, err := h.paymentService.SetStatus(ctx, id, model.PaymentStatus(req.Status))
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Payment status override failed").
			Uint("payment_id", id).
			String("status", req.Status).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, dto.NewPaymentResponse(payment))
}
