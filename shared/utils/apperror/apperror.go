package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// AppError is a typed service-layer failure carrying its HTTP status.
// Every error that reaches the response boundary is either an AppError or
// degrades to a generic 500 with no internal detail leaked.
type AppError struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// FieldError is one field/message pair of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func New(statusCode int, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message}
}

// Unauthenticated: missing, invalid or expired token, inactive user.
func Unauthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

// Forbidden: role mismatch or cross-tenant access.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

// Conflict: uniqueness violation or duplicate assignment.
func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

// InvalidInput: schema validation failure with per-field details.
func InvalidInput(message string, details interface{}) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message, Details: details}
}

// InvalidState: business-rule violation, e.g. deleting the last admin.
func InvalidState(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// From maps any error to an AppError. Datastore constraint violations and
// binding failures get their taxonomy status; everything unknown becomes a
// generic 500.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return InvalidInput("Validation error", fieldErrors(validationErrs))
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("Record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("Resource already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return New(http.StatusBadRequest, "Referenced record does not exist")
	}

	return New(http.StatusInternalServerError, "Something went wrong")
}

// fieldErrors converts validator errors into field/message pairs.
func fieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "uuid":
		return fe.Field() + " must be a valid UUID"
	default:
		return fe.Field() + " is invalid"
	}
}
