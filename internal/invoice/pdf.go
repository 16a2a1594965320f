// AngelaMos | 2026
// pdf.go

package invoice

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/carterperez-dev/invoice-manager/internal/customer"
)

var (
	pdfPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	pdfGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// RenderPDF lays out a single invoice on one A4 page.
func RenderPDF(inv *Invoice, cust *customer.Customer) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Invoice "+inv.ID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(pdfHeader(inv))
	m.AddRows(line.NewRow(2, props.Line{Color: pdfPrimary, Thickness: 0.5}))
	m.AddRows(pdfBillTo(inv, cust))
	m.AddRows(line.NewRow(2, props.Line{Color: pdfGray, Thickness: 0.2}))
	m.AddRows(pdfLineHeader(), pdfLineItem(inv))
	m.AddRows(line.NewRow(2, props.Line{Color: pdfGray, Thickness: 0.2}))
	m.AddRows(pdfTotal(inv))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}

	return doc.GetBytes(), nil
}

func pdfHeader(inv *Invoice) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New("INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 18, Color: pdfPrimary, Top: 2,
			}),
		),
		col.New(5).Add(
			text.New(inv.ID, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New("Status: "+inv.Status, props.Text{
				Size: 9, Align: align.Right, Top: 9, Color: pdfGray,
			}),
			text.New("Issued: "+inv.CreatedAt.Format("2006-01-02"), props.Text{
				Size: 9, Align: align.Right, Top: 14, Color: pdfGray,
			}),
		),
	)
}

func pdfBillTo(inv *Invoice, cust *customer.Customer) core.Row {
	name := inv.CustomerName
	details := ""
	if cust != nil {
		name = cust.Name
		details = cust.Company + "  |  " + cust.Email
		if cust.Phone != "" {
			details += "  |  " + cust.Phone
		}
	}

	return row.New(22).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: pdfPrimary, Top: 2,
			}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 11, Top: 7}),
			text.New(details, props.Text{Size: 9, Top: 13, Color: pdfGray}),
		),
	)
}

func pdfLineHeader() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: a, Top: 2,
		}))
	}
	return row.New(9).Add(
		h("Description", 5, align.Left),
		h("Days", 2, align.Center),
		h("Daily Rate", 2, align.Right),
		h("Amount", 3, align.Right),
	)
}

func pdfLineItem(inv *Invoice) core.Row {
	days := BillableDays(inv.StartDate, inv.EndDate)
	rate := "-"
	if r, ok := DailyRate(inv.Type); ok {
		rate = "$" + r.StringFixed(2)
	}

	description := fmt.Sprintf("%s service, %s to %s",
		inv.Type,
		inv.StartDate.Format(dateLayout),
		inv.EndDate.Format(dateLayout),
	)

	cell := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{Size: 9, Align: a, Top: 2}))
	}
	return row.New(9).Add(
		cell(description, 5, align.Left),
		cell(fmt.Sprintf("%d", days), 2, align.Center),
		cell(rate, 2, align.Right),
		cell("$"+inv.Amount.StringFixed(2), 3, align.Right),
	)
}

func pdfTotal(inv *Invoice) core.Row {
	return row.New(12).Add(
		col.New(9).Add(text.New("TOTAL", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 3,
		})),
		col.New(3).Add(text.New("$"+inv.Amount.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 3, Color: pdfPrimary,
		})),
	)
}
