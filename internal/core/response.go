// AngelaMos | 2026
// response.go

package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the success envelope shared by every JSON endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope. Error is the short status label,
// Message the human readable detail.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func OKWithMessage(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data, Message: message})
}

func Created(w http.ResponseWriter, data any, message string) {
	JSON(w, http.StatusCreated, Response{Success: true, Data: data, Message: message})
}

func Paginated(w http.ResponseWriter, data any, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	JSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// JSONError renders err. Errors that are not AppErrors become a generic 500.
func JSONError(w http.ResponseWriter, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = NewAppError(
			err,
			"an unexpected error occurred",
			http.StatusInternalServerError,
			"INTERNAL_ERROR",
		)
	}

	JSON(w, appErr.StatusCode, ErrorResponse{
		Success: false,
		Error:   http.StatusText(appErr.StatusCode),
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, BadRequestError(message))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func Conflict(w http.ResponseWriter, field string) {
	JSONError(w, DuplicateError(field))
}

// InternalServerError logs err with the request's trace and hides it from
// the client.
func InternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}

	SetSpanError(ctx, err)
	slog.ErrorContext(ctx, "request failed",
		"error", err,
		"trace_id", TraceIDFromContext(ctx),
	)

	JSON(w, http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   http.StatusText(http.StatusInternalServerError),
		Code:    "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
	})
}
