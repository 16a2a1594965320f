// AngelaMos | 2026
// handler.go

package database

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Runner interface {
	Run(ctx context.Context, seed bool) (*InitResult, error)
}

type StatusResponse struct {
	Connected bool `json:"connected"`
}

type Handler struct {
	pinger       Pinger
	runner       Runner
	isProduction bool
}

func NewHandler(pinger Pinger, runner Runner, isProduction bool) *Handler {
	return &Handler{
		pinger:       pinger,
		runner:       runner,
		isProduction: isProduction,
	}
}

// RegisterRoutes mounts /database/init. optionalAuth must attach claims
// when present so production can restrict POST to admins.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/database", func(r chi.Router) {
		r.Get("/init", h.Status)
		r.With(optionalAuth).Post("/init", h.Initialize)
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "database connection test failed", "error", err)
		core.JSONError(w, core.NewAppError(
			err,
			"Database connection failed",
			http.StatusInternalServerError,
			"DATABASE_UNAVAILABLE",
		))
		return
	}

	core.OKWithMessage(w, StatusResponse{Connected: true}, "Database connection successful")
}

func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	if h.isProduction && !middleware.IsAdmin(r.Context()) {
		if !middleware.IsAuthenticated(r.Context()) {
			core.Unauthorized(w, "authentication required")
			return
		}
		core.Forbidden(w, "only administrators can initialize the database")
		return
	}

	result, err := h.runner.Run(r.Context(), true)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "database initialized",
		"seeded_users", result.SeededUsers,
		"user_id", middleware.GetUserID(r.Context()),
	)
	core.OKWithMessage(w, result, "Database initialized successfully")
}
