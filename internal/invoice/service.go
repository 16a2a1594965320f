// AngelaMos | 2026
// service.go

package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/invoice-manager/internal/core"
	"github.com/carterperez-dev/invoice-manager/internal/customer"
)

// exportPageSize and maxExportRows bound one export request.
const (
	exportPageSize = 100
	maxExportRows  = 10_000
)

// CustomerReader resolves the customer an invoice is billed to.
// customer.Service satisfies it.
type CustomerReader interface {
	GetCustomer(ctx context.Context, id string) (*customer.Customer, error)
}

type Service struct {
	repo      Repository
	customers CustomerReader
}

func NewService(repo Repository, customers CustomerReader) *Service {
	return &Service{repo: repo, customers: customers}
}

func (s *Service) CreateInvoice(
	ctx context.Context,
	req CreateInvoiceRequest,
) (*Invoice, error) {
	quote, err := PriceFor(req.Type, req.StartDate.Time, req.EndDate.Time)
	if err != nil {
		return nil, err
	}

	amount := quote.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount, err = CheckAmount(amount); err != nil {
		return nil, err
	}

	cust, err := s.customers.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.BadRequestError("customer not found")
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, err
	}

	sendStatus := req.SendStatus
	if sendStatus == "" {
		sendStatus = SendStatusSend
	}

	inv := &Invoice{
		ID:           id,
		CustomerID:   cust.ID,
		CustomerName: cust.Name,
		Type:         req.Type,
		StartDate:    req.StartDate.Time,
		EndDate:      req.EndDate.Time,
		Status:       StatusDraft,
		Amount:       amount,
		SendStatus:   sendStatus,
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invoice created",
		"invoice_id", inv.ID,
		"customer_id", inv.CustomerID,
		"amount", inv.Amount.StringFixed(2),
	)

	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateInvoice applies a partial update. When the type or period changes
// without an explicit amount, the amount is priced again.
func (s *Service) UpdateInvoice(
	ctx context.Context,
	id string,
	req UpdateInvoiceRequest,
) (*Invoice, error) {
	if req.IsEmpty() {
		return nil, core.BadRequestError("no fields to update")
	}

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	repriced := false
	if req.Type != nil {
		repriced = repriced || *req.Type != inv.Type
		inv.Type = *req.Type
	}
	if req.StartDate != nil {
		repriced = repriced || !req.StartDate.Equal(inv.StartDate)
		inv.StartDate = req.StartDate.Time
	}
	if req.EndDate != nil {
		repriced = repriced || !req.EndDate.Equal(inv.EndDate)
		inv.EndDate = req.EndDate.Time
	}
	if req.Status != nil {
		if !IsValidStatus(*req.Status) {
			return nil, core.BadRequestError("status must be one of: Draft, Sent, Paid, Overdue")
		}
		inv.Status = *req.Status
	}
	if req.SendStatus != nil {
		if !IsValidSendStatus(*req.SendStatus) {
			return nil, core.BadRequestError("send_status must be one of: Send, Failed, Discard")
		}
		inv.SendStatus = *req.SendStatus
	}

	quote, err := PriceFor(inv.Type, inv.StartDate, inv.EndDate)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Amount != nil:
		if inv.Amount, err = CheckAmount(*req.Amount); err != nil {
			return nil, err
		}
	case repriced:
		if inv.Amount, err = CheckAmount(quote.Amount); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// InvoicePDF renders one invoice. A customer that has since been deleted
// is printed with the name stored on the invoice.
func (s *Service) InvoicePDF(ctx context.Context, id string) (*Invoice, []byte, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	cust, err := s.customers.GetCustomer(ctx, inv.CustomerID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, nil, fmt.Errorf("get customer: %w", err)
	}

	doc, err := RenderPDF(inv, cust)
	if err != nil {
		return nil, nil, err
	}

	return inv, doc, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListInvoices(
	ctx context.Context,
	params ListInvoicesParams,
) ([]Invoice, int, error) {
	if err := validateFilters(params); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, params)
}

// ExportInvoices returns every invoice matching the filters, ignoring
// pagination, up to maxExportRows.
func (s *Service) ExportInvoices(
	ctx context.Context,
	params ListInvoicesParams,
) ([]Invoice, error) {
	if err := validateFilters(params); err != nil {
		return nil, err
	}

	params.PageSize = exportPageSize
	var all []Invoice
	for page := 1; ; page++ {
		params.Page = page
		batch, total, err := s.repo.List(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)

		if len(batch) < exportPageSize || len(all) >= total {
			break
		}
		if len(all) >= maxExportRows {
			slog.WarnContext(ctx, "invoice export truncated",
				"total", total,
				"exported", len(all),
			)
			break
		}
	}

	return all, nil
}

func (s *Service) Quote(
	invoiceType string,
	start, end time.Time,
) (Quote, error) {
	return PriceFor(invoiceType, start, end)
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	totals, err := s.repo.TotalsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]StatusTotal, len(totals))
	for _, t := range totals {
		byStatus[t.Status] = t
	}

	summary := &Summary{
		TotalAmount: decimal.Zero,
		ByStatus:    make([]StatusTotal, 0, len(Statuses)),
	}
	for _, status := range Statuses {
		t, ok := byStatus[status]
		if !ok {
			t = StatusTotal{Status: status, Amount: decimal.Zero}
		}
		summary.ByStatus = append(summary.ByStatus, t)
		summary.TotalInvoices += t.Count
		summary.TotalAmount = summary.TotalAmount.Add(t.Amount)
	}
	summary.PaidInvoices = byStatus[StatusPaid].Count
	summary.OverdueInvoices = byStatus[StatusOverdue].Count

	return summary, nil
}

func validateFilters(params ListInvoicesParams) error {
	if params.Status != "" && !IsValidStatus(params.Status) {
		return core.BadRequestError("status must be one of: Draft, Sent, Paid, Overdue")
	}
	if params.Type != "" && !IsValidType(params.Type) {
		return core.BadRequestError("type must be one of: Prepaid, Postpaid, Test")
	}
	return nil
}
