// AngelaMos | 2026
// handler.go

package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/invoices", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListInvoices)
		r.Get("/quote", h.Quote)
		r.Get("/export", h.Export)
		r.Get("/{invoiceID}", h.GetInvoice)
		r.Get("/{invoiceID}/pdf", h.DownloadPDF)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("Admin", "Accountant"))
			r.Post("/", h.CreateInvoice)
			r.Put("/{invoiceID}", h.UpdateInvoice)
			r.Delete("/{invoiceID}", h.DeleteInvoice)
		})
	})
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	params.Normalize()

	invoices, total, err := h.service.ListInvoices(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	core.Paginated(w, ToInvoiceResponseList(invoices), params.Page, params.PageSize, total)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	core.OK(w, ToInvoiceResponse(inv))
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	inv, err := h.service.CreateInvoice(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	core.Created(w, ToInvoiceResponse(inv), "Invoice created successfully")
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	inv, err := h.service.UpdateInvoice(r.Context(), chi.URLParam(r, "invoiceID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	core.OKWithMessage(w, ToInvoiceResponse(inv), "Invoice updated successfully")
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteInvoice(r.Context(), chi.URLParam(r, "invoiceID")); err != nil {
		writeError(w, r, err)
		return
	}

	core.OKWithMessage(w, nil, "Invoice deleted successfully")
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := ParseDate(q.Get("start_date"))
	if err != nil {
		core.BadRequest(w, "start_date must be a date (YYYY-MM-DD)")
		return
	}
	end, err := ParseDate(q.Get("end_date"))
	if err != nil {
		core.BadRequest(w, "end_date must be a date (YYYY-MM-DD)")
		return
	}

	invoiceType := q.Get("type")
	quote, err := h.service.Quote(invoiceType, start.Time, end.Time)
	if err != nil {
		writeError(w, r, err)
		return
	}

	core.OK(w, QuoteResponse{
		Type:      invoiceType,
		StartDate: start,
		EndDate:   end,
		Days:      quote.Days,
		DailyRate: quote.DailyRate,
		Amount:    quote.Amount,
	})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		core.BadRequest(w, "format must be one of: csv, xlsx")
		return
	}

	invoices, err := h.service.ExportInvoices(r.Context(), listParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if format == FormatXLSX {
		err = WriteXLSX(&buf, invoices)
	} else {
		err = WriteCSV(&buf, invoices)
	}
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	filename := fmt.Sprintf("invoices-%s.%s", time.Now().UTC().Format("20060102"), format)
	writeFile(w, ContentType(format), filename, buf.Bytes())
}

func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	inv, doc, err := h.service.InvoicePDF(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeFile(w, "application/pdf", inv.ID+".pdf", doc)
}

func writeFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "invoice")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "customer not found")
	case errors.Is(err, core.ErrDuplicateKey):
		core.Conflict(w, "invoice")
	default:
		core.InternalServerError(w, r, err)
	}
}

func listParams(r *http.Request) ListInvoicesParams {
	q := r.URL.Query()
	return ListInvoicesParams{
		Page:       queryInt(r, "page", 1),
		PageSize:   queryInt(r, "page_size", 20),
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		CustomerID: q.Get("customer_id"),
		Search:     q.Get("search"),
	}
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return defaultVal
	}
	return v
}
