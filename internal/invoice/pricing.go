// AngelaMos | 2026
// pricing.go

package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

var dailyRates = map[string]decimal.Decimal{
	TypePrepaid:  decimal.NewFromInt(50),
	TypePostpaid: decimal.NewFromInt(75),
	TypeTest:     decimal.NewFromInt(25),
}

type Quote struct {
	Days      int
	DailyRate decimal.Decimal
	Amount    decimal.Decimal
}

func DailyRate(invoiceType string) (decimal.Decimal, bool) {
	rate, ok := dailyRates[invoiceType]
	return rate, ok
}

const secondsPerDay = 24 * 60 * 60

// maxAmount is the first value that no longer fits NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

// BillableDays counts started days between start and end. It works on Unix
// seconds so spans longer than a time.Duration can hold stay exact.
func BillableDays(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	secs := end.Unix() - start.Unix()
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 || secs == 0 {
		days++
	}
	return int(days)
}

// CheckAmount rejects amounts the invoices table cannot store.
func CheckAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, core.BadRequestError("amount must be greater than 0")
	}
	amount = amount.Round(2)
	if amount.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, core.BadRequestError("amount must be less than 10000000000")
	}
	return amount, nil
}

func PriceFor(invoiceType string, start, end time.Time) (Quote, error) {
	rate, ok := DailyRate(invoiceType)
	if !ok {
		return Quote{}, core.BadRequestError("type must be one of: Prepaid, Postpaid, Test")
	}
	if !end.After(start) {
		return Quote{}, core.BadRequestError("end_date must be after start_date")
	}

	days := BillableDays(start, end)
	return Quote{
		Days:      days,
		DailyRate: rate,
		Amount:    rate.Mul(decimal.NewFromInt(int64(days))),
	}, nil
}
