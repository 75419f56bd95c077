package utils

import (
	"errors"  // Error inspection
	"fmt"     // Formatting
	"strings" // Joining messages

	"github.com/go-playground/validator/v10" // Validation errors raised by gin binding
)

// FormatValidationError turns binding errors into a short human readable message
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fieldMessage(fe))
		}
		return strings.Join(messages, "; ")
	}
	return "invalid request"
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
