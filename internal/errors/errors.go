package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// User errors
	ErrUserNotFound       = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrEmailExists        = NewDomainError("EMAIL_EXISTS", "email already registered")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "invalid credentials")
	ErrInvalidRole        = NewDomainError("INVALID_ROLE", "invalid role")
	ErrSelfDeletion       = NewDomainError("SELF_DELETION", "users cannot delete themselves")

	// Authentication errors
	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "authentication required")
	ErrInvalidToken = NewDomainError("INVALID_TOKEN", "authentication required")

	// Authorization errors
	ErrSubscriptionRequired = NewDomainError("SUBSCRIPTION_REQUIRED", "subscription required")
	ErrAccessDenied         = NewDomainError("ACCESS_DENIED", "access denied")
	ErrNotFlatOwner         = NewDomainError("NOT_FLAT_OWNER", "not authorized to update this flat")

	// Flat errors
	ErrFlatNotFound = NewDomainError("FLAT_NOT_FOUND", "flat not found")

	// Payment errors
	ErrPaymentNotFound         = NewDomainError("PAYMENT_NOT_FOUND", "payment not found")
	ErrInvalidSubscriptionType = NewDomainError("INVALID_SUBSCRIPTION_TYPE", "invalid subscription type")
	ErrInvalidSignature        = NewDomainError("INVALID_SIGNATURE", "invalid payment signature")
	ErrDuplicatePayment        = NewDomainError("DUPLICATE_PAYMENT", "payment already recorded")
	ErrInvalidPaymentStatus    = NewDomainError("INVALID_PAYMENT_STATUS", "invalid payment status")
	ErrGatewayUnavailable      = NewDomainError("GATEWAY_UNAVAILABLE", "something went wrong")

	// Validation errors
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "invalid input")
	ErrPasswordMismatch  = NewDomainError("PASSWORD_MISMATCH", "new password and confirmation do not match")
	ErrIncorrectPassword = NewDomainError("INCORRECT_PASSWORD", "current password is incorrect")

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "something went wrong")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes.
// This should only be used in the handler/presentation layer.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

// domainErrorToHTTPStatus maps specific domain errors to HTTP status codes.
// A signature mismatch is a malformed payment claim, not an identity
// problem, so it maps to 400 rather than 401/403.
func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT", "PASSWORD_MISMATCH", "INVALID_ROLE", "EMAIL_EXISTS",
		"INVALID_SUBSCRIPTION_TYPE", "INVALID_SIGNATURE", "DUPLICATE_PAYMENT",
		"INVALID_PAYMENT_STATUS":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "INVALID_TOKEN", "INCORRECT_PASSWORD":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "SUBSCRIPTION_REQUIRED", "ACCESS_DENIED", "NOT_FLAT_OWNER", "SELF_DELETION":
		return http.StatusForbidden

	// 404 Not Found
	case "USER_NOT_FOUND", "FLAT_NOT_FOUND", "PAYMENT_NOT_FOUND":
		return http.StatusNotFound

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts a user-facing error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
