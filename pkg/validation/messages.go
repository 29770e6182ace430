package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomMessage returns per-field overrides for validation failures.
func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"required": "email is required",
			"email":    "email is not a valid address",
		},
		"Phone": {
			"required": "phone number is required",
			"numeric":  "phone number must contain only digits",
		},
		"Password": {
			"required": "password is required",
			"min":      "password must be at least 8 characters",
		},
		"Name": {
			"required": "name is required",
		},
		"Role": {
			"required": "role is required",
			"oneof":    "role must be one of tenant, owner or broker",
		},
		"SubscriptionType": {
			"required": "subscription type is required",
		},
		"OrderID": {
			"required": "order_id is required",
		},
		"PaymentID": {
			"required": "payment_id is required",
		},
		"Signature": {
			"required": "signature is required",
		},
	}
	return customValidationMessages[field]
}

// DefaultMessage builds a generic message for a validation tag.
func DefaultMessage(field, tag string) string {
	field = strings.ToLower(field)

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "min":
		return fmt.Sprintf("%s is below the minimum length or value", field)
	case "max":
		return fmt.Sprintf("%s exceeds the maximum length or value", field)
	case "len":
		return fmt.Sprintf("%s has an invalid length", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to the minimum", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than the minimum", field)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to the maximum", field)
	case "lt":
		return fmt.Sprintf("%s must be less than the maximum", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", field)
	case "boolean":
		return fmt.Sprintf("%s must be true or false", field)
	case "datetime":
		return fmt.Sprintf("%s must be a valid date/time", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of the allowed values", field)
	case "lowercase":
		return fmt.Sprintf("%s must be lowercase", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// FormatErrors converts a validator error into user-facing messages. Non
// validation errors collapse to a single generic message.
func FormatErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request payload"}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if custom := CustomMessage(fe.Field()); custom != nil {
			if msg, ok := custom[fe.Tag()]; ok {
				messages = append(messages, msg)
				continue
			}
		}
		messages = append(messages, DefaultMessage(fe.Field(), fe.Tag()))
	}
	return messages
}
