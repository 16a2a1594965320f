// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts /users. Reading a single user needs any session;
// everything else is Admin only.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/{userID}", h.GetUser)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Put("/{userID}", h.UpdateUser)
			r.Delete("/{userID}", h.DeleteUser)
		})
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:           parseIntQuery(r, "page", 1),
		PageSize:       parseIntQuery(r, "page_size", 20),
		Search:         q.Get("search"),
		Role:           q.Get("role"),
		IncludeDeleted: parseBoolQuery(r, "include_deleted") || parseBoolQuery(r, "includeDeleted"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Created(w, ToUserResponse(user), "User created successfully")
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OKWithMessage(w, ToUserResponse(user), "User updated successfully")
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	targetID := chi.URLParam(r, "userID")

	if err := h.service.DeleteUser(r.Context(), requesterID, targetID); err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OKWithMessage(w, nil, "User deleted successfully")
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrDuplicateKey):
		core.Conflict(w, "user with this email")
	default:
		core.InternalServerError(w, r, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func parseBoolQuery(r *http.Request, key string) bool {
	parsed, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && parsed
}
