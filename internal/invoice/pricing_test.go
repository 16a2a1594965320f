// AngelaMos | 2026
// pricing_test.go

package invoice

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/invoice-manager/internal/core"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPriceFor(t *testing.T) {
	tests := []struct {
		name  string
		typ   string
		start string
		end   string
		days  int
		want  int64
	}{
		{"prepaid one day", TypePrepaid, "2026-01-01", "2026-01-02", 1, 50},
		{"postpaid month", TypePostpaid, "2026-01-01", "2026-01-31", 30, 2250},
		{"test week", TypeTest, "2026-03-01", "2026-03-08", 7, 175},
		{"across leap day", TypePrepaid, "2028-02-28", "2028-03-01", 2, 100},
		{"four centuries", TypePrepaid, "2000-01-01", "2400-01-01", 146097, 7304850},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := PriceFor(tt.typ, day(tt.start), day(tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.days, q.Days)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(q.Amount), q.Amount.String())
		})
	}
}

func TestPriceFor_Rejects(t *testing.T) {
	_, err := PriceFor("Enterprise", day("2026-01-01"), day("2026-01-02"))
	assert.True(t, core.IsAppError(err))

	_, err = PriceFor(TypeTest, day("2026-01-02"), day("2026-01-02"))
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "end_date must be after start_date", appErr.Message)

	_, err = PriceFor(TypeTest, day("2026-01-03"), day("2026-01-02"))
	assert.Error(t, err)
}

func TestBillableDays_PartialDayRoundsUp(t *testing.T) {
	start := day("2026-01-01")
	assert.Equal(t, 1, BillableDays(start, start.Add(time.Hour)))
	assert.Equal(t, 2, BillableDays(start, start.Add(25*time.Hour)))
	assert.Zero(t, BillableDays(start, start))
	assert.Equal(t, 1, BillableDays(start, start.Add(time.Millisecond)))
}

func TestBillableDays_SpansBeyondDuration(t *testing.T) {
	assert.Equal(t, 146097, BillableDays(day("2000-01-01"), day("2400-01-01")))
	assert.Equal(t, 2932896, BillableDays(day("1970-01-01"), day("9999-12-31")))
}

func TestCheckAmount(t *testing.T) {
	got, err := CheckAmount(decimal.RequireFromString("12.345"))
	require.NoError(t, err)
	assert.Equal(t, "12.35", got.StringFixed(2))

	_, err = CheckAmount(decimal.RequireFromString("9999999999.99"))
	require.NoError(t, err)

	for _, bad := range []string{"0", "-5", "10000000000", "9999999999.995", "1000000000000"} {
		_, err := CheckAmount(decimal.RequireFromString(bad))
		appErr, ok := core.AsAppError(err)
		require.True(t, ok, bad)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode, bad)
	}
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "INV-001", FormatID(1))
	assert.Equal(t, "INV-042", FormatID(42))
	assert.Equal(t, "INV-1000", FormatID(1000))
}

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-02-03"`), &d))
	assert.Equal(t, "2026-02-03", d.String())

	require.NoError(t, json.Unmarshal([]byte(`"2026-02-03T22:15:00Z"`), &d))
	assert.Equal(t, "2026-02-03", d.String())

	assert.Error(t, json.Unmarshal([]byte(`"03/02/2026"`), &d))

	out, err := json.Marshal(struct {
		D Date `json:"d"`
	}{D: NewDate(day("2026-12-31"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2026-12-31"}`, string(out))
}
