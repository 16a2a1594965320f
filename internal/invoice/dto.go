// AngelaMos | 2026
// dto.go

package invoice

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar day. It accepts "2006-01-02" or an RFC 3339 timestamp
// and always renders as "2006-01-02".
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return NewDate(t), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

type CreateInvoiceRequest struct {
	CustomerID string           `json:"customer_id" validate:"required,max=64"`
	Type       string           `json:"type"        validate:"required,oneof=Prepaid Postpaid Test"`
	StartDate  Date             `json:"start_date"  validate:"required"`
	EndDate    Date             `json:"end_date"    validate:"required"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	SendStatus string           `json:"send_status" validate:"omitempty,oneof=Send Failed Discard"`
}

type UpdateInvoiceRequest struct {
	Type       *string          `json:"type,omitempty"        validate:"omitempty,oneof=Prepaid Postpaid Test"`
	StartDate  *Date            `json:"start_date,omitempty"`
	EndDate    *Date            `json:"end_date,omitempty"`
	Status     *string          `json:"status,omitempty"      validate:"omitempty,oneof=Draft Sent Paid Overdue"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	SendStatus *string          `json:"send_status,omitempty" validate:"omitempty,oneof=Send Failed Discard"`
}

func (r UpdateInvoiceRequest) IsEmpty() bool {
	return r.Type == nil &&
		r.StartDate == nil &&
		r.EndDate == nil &&
		r.Status == nil &&
		r.Amount == nil &&
		r.SendStatus == nil
}

type InvoiceResponse struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Type         string          `json:"type"`
	StartDate    Date            `json:"start_date"`
	EndDate      Date            `json:"end_date"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	SendStatus   string          `json:"send_status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type QuoteResponse struct {
	Type      string          `json:"type"`
	StartDate Date            `json:"start_date"`
	EndDate   Date            `json:"end_date"`
	Days      int             `json:"days"`
	DailyRate decimal.Decimal `json:"daily_rate"`
	Amount    decimal.Decimal `json:"amount"`
}

type ListInvoicesParams struct {
	Page       int
	PageSize   int
	Status     string
	Type       string
	CustomerID string
	Search     string
}

func (p *ListInvoicesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListInvoicesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// StatusTotal is the count and summed amount of live invoices in one status.
type StatusTotal struct {
	Status string          `db:"status" json:"status"`
	Count  int             `db:"count"  json:"count"`
	Amount decimal.Decimal `db:"amount" json:"amount"`
}

type Summary struct {
	TotalInvoices   int             `json:"total_invoices"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidInvoices    int             `json:"paid_invoices"`
	OverdueInvoices int             `json:"overdue_invoices"`
	ByStatus        []StatusTotal   `json:"by_status"`
}

func ToInvoiceResponse(inv *Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:           inv.ID,
		CustomerID:   inv.CustomerID,
		CustomerName: inv.CustomerName,
		Type:         inv.Type,
		StartDate:    NewDate(inv.StartDate),
		EndDate:      NewDate(inv.EndDate),
		Status:       inv.Status,
		Amount:       inv.Amount,
		SendStatus:   inv.SendStatus,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
}

func ToInvoiceResponseList(invoices []Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, ToInvoiceResponse(&invoices[i]))
	}
	return out
}
