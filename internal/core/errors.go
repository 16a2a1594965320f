// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenInvalid = errors.New("token invalid")
)

// AppError is an error that knows how it should be rendered to clients.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, "BAD_REQUEST")
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		fmt.Sprintf("%s already exists", field),
		http.StatusConflict,
		"DUPLICATE",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "token has expired", http.StatusUnauthorized, "TOKEN_EXPIRED")
}

func TokenRevokedError() *AppError {
	return NewAppError(ErrTokenRevoked, "token has been revoked", http.StatusUnauthorized, "TOKEN_REVOKED")
}

func TokenInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "token is invalid or expired", http.StatusUnauthorized, "TOKEN_INVALID")
}

// FormatValidationError flattens validator errors into one client message.
func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}

	return strings.Join(msgs, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf(
			"%s must be one of: %s",
			field,
			strings.ReplaceAll(fe.Param(), " ", ", "),
		)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, toSnakeCase(fe.Param()))
	case "uuid":
		return field + " must be a valid id"
	default:
		return field + " is invalid"
	}
}

// toSnakeCase turns a Go field name such as StartDate or CustomerID into
// start_date / customer_id.
func toSnakeCase(s string) string {
	var b strings.Builder
	var prevLower bool
	for _, r := range s {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
		prevLower = !isUpper
	}
	return b.String()
}
