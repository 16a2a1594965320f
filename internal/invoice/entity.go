// AngelaMos | 2026
// entity.go

package invoice

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID           string          `db:"id"`
	CustomerID   string          `db:"customer_id"`
	CustomerName string          `db:"customer_name"`
	Type         string          `db:"type"`
	StartDate    time.Time       `db:"start_date"`
	EndDate      time.Time       `db:"end_date"`
	Status       string          `db:"status"`
	Amount       decimal.Decimal `db:"amount"`
	SendStatus   string          `db:"send_status"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
	DeletedAt    *time.Time      `db:"deleted_at"`
}

const (
	TypePrepaid  = "Prepaid"
	TypePostpaid = "Postpaid"
	TypeTest     = "Test"
)

const (
	StatusDraft   = "Draft"
	StatusSent    = "Sent"
	StatusPaid    = "Paid"
	StatusOverdue = "Overdue"
)

const (
	SendStatusSend    = "Send"
	SendStatusFailed  = "Failed"
	SendStatusDiscard = "Discard"
)

// Statuses lists every status in display order.
var Statuses = []string{StatusDraft, StatusSent, StatusPaid, StatusOverdue}

func IsValidType(t string) bool {
	return t == TypePrepaid || t == TypePostpaid || t == TypeTest
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

func IsValidSendStatus(s string) bool {
	return s == SendStatusSend || s == SendStatusFailed || s == SendStatusDiscard
}

// FormatID renders a sequence number as INV-001. Numbers past 999 keep
// all their digits.
func FormatID(n int64) string {
	return fmt.Sprintf("INV-%03d", n)
}
