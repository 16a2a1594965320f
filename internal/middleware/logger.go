// AngelaMos | 2026
// logger.go

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"bytes", wrapped.bytes,
				"duration", time.Since(start),
				"request_id", GetRequestID(r.Context()),
			}
			if userID := GetUserID(r.Context()); userID != "" {
				attrs = append(attrs, "user_id", userID)
			}
			if traceID := core.TraceIDFromContext(r.Context()); traceID != "" {
				attrs = append(attrs, "trace_id", traceID)
			}

			switch {
			case wrapped.status >= http.StatusInternalServerError:
				logger.ErrorContext(r.Context(), "request completed", attrs...)
			case wrapped.status >= http.StatusBadRequest:
				logger.WarnContext(r.Context(), "request completed", attrs...)
			default:
				logger.InfoContext(r.Context(), "request completed", attrs...)
			}
		})
	}
}

// Recoverer turns a handler panic into a 500 envelope and logs the stack.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"request_id", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				core.JSONError(w, core.NewAppError(
					nil,
					"an unexpected error occurred",
					http.StatusInternalServerError,
					"INTERNAL_ERROR",
				))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
