// AngelaMos | 2026
// errors_test.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	appErr := NotFoundError("user")

	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, "user not found", appErr.Message)
	assert.ErrorIs(t, appErr, ErrNotFound)

	wrapped := fmt.Errorf("handler: %w", appErr)
	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.True(t, IsAppError(wrapped))
	assert.False(t, IsAppError(errors.New("plain")))
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"bad request", BadRequestError("x"), http.StatusBadRequest, "BAD_REQUEST"},
		{"unauthorized", UnauthorizedError(""), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", ForbiddenError(""), http.StatusForbidden, "FORBIDDEN"},
		{"duplicate", DuplicateError("email"), http.StatusConflict, "DUPLICATE"},
		{"expired", TokenExpiredError(), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"revoked", TokenRevokedError(), http.StatusUnauthorized, "TOKEN_REVOKED"},
		{"invalid", TokenInvalidError(), http.StatusUnauthorized, "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}

	assert.Equal(t, "authentication required", UnauthorizedError("").Message)
	assert.Equal(t, "email already exists", DuplicateError("email").Message)
}

type validationSample struct {
	Email      string    `json:"email"       validate:"required,email"`
	Password   string    `json:"password"    validate:"required,min=6"`
	Role       string    `json:"role"        validate:"required,oneof=Admin Accountant Viewer"`
	CustomerID string    `json:"customer_id" validate:"required,uuid"`
	StartDate  time.Time `json:"start_date"  validate:"required"`
	EndDate    time.Time `json:"end_date"    validate:"required,gtfield=StartDate"`
}

func TestFormatValidationError(t *testing.T) {
	v := NewValidator()
	now := time.Now()

	err := v.Struct(validationSample{
		Email:      "bad",
		Password:   "123",
		Role:       "Owner",
		CustomerID: "nope",
		StartDate:  now,
		EndDate:    now.Add(-time.Hour),
	})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password must be at least 6 characters long")
	assert.Contains(t, msg, "role must be one of: Admin, Accountant, Viewer")
	assert.Contains(t, msg, "customer_id must be a valid id")
	assert.Contains(t, msg, "end_date must be after start_date")

	assert.Equal(t, "invalid request", FormatValidationError(errors.New("other")))
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "start_date", toSnakeCase("StartDate"))
	assert.Equal(t, "customer_id", toSnakeCase("CustomerID"))
	assert.Equal(t, "amount", toSnakeCase("Amount"))
}
