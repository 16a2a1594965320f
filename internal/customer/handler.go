// AngelaMos | 2026
// handler.go

package customer

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

// RegisterRoutes mounts /customers. Any role may read; Admin and
// Accountant may write.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/customers", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListCustomers)
		r.Get("/{customerID}", h.GetCustomer)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("Admin", "Accountant"))
			r.Post("/", h.CreateCustomer)
			r.Put("/{customerID}", h.UpdateCustomer)
			r.Delete("/{customerID}", h.DeleteCustomer)
		})
	})
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	params := ListCustomersParams{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	}
	params.Normalize()

	customers, total, err := h.service.ListCustomers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.Paginated(w, ToCustomerResponseList(customers), params.Page, params.PageSize, total)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	core.OK(w, ToCustomerResponse(c))
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	core.Created(w, ToCustomerResponse(c), "Customer created successfully")
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.UpdateCustomer(r.Context(), chi.URLParam(r, "customerID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	core.OKWithMessage(w, ToCustomerResponse(c), "Customer updated successfully")
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCustomer(r.Context(), chi.URLParam(r, "customerID")); err != nil {
		writeError(w, r, err)
		return
	}

	core.OKWithMessage(w, nil, "Customer deleted successfully")
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "customer")
	default:
		core.InternalServerError(w, r, err)
	}
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultVal
	}
	return v
}
