// AngelaMos | 2026
// export.go

package invoice

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	exportSheet = "Invoices"
)

var exportHeader = []string{
	"Invoice ID",
	"Customer",
	"Type",
	"Start Date",
	"End Date",
	"Days",
	"Status",
	"Amount",
	"Send Status",
	"Created At",
}

var exportColumnWidths = []float64{12, 28, 10, 12, 12, 7, 10, 14, 12, 20}

func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func WriteCSV(w io.Writer, invoices []Invoice) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range invoices {
		inv := &invoices[i]
		record := []string{
			inv.ID,
			escapeCSVCell(inv.CustomerName),
			inv.Type,
			inv.StartDate.Format(dateLayout),
			inv.EndDate.Format(dateLayout),
			strconv.Itoa(BillableDays(inv.StartDate, inv.EndDate)),
			inv.Status,
			inv.Amount.StringFixed(2),
			inv.SendStatus,
			inv.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", inv.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// escapeCSVCell keeps spreadsheets from evaluating free text as a formula.
func escapeCSVCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func WriteXLSX(w io.Writer, invoices []Invoice) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i := range invoices {
		inv := &invoices[i]
		rowNum := i + 2

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}

		row := []any{
			inv.ID,
			inv.CustomerName,
			inv.Type,
			inv.StartDate.Format(dateLayout),
			inv.EndDate.Format(dateLayout),
			BillableDays(inv.StartDate, inv.EndDate),
			inv.Status,
			inv.Amount.InexactFloat64(),
			inv.SendStatus,
			inv.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}

		amountCell, err := excelize.CoordinatesToCellName(8, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(exportSheet, amountCell, amountCell, amountStyle); err != nil {
			return fmt.Errorf("style amount: %w", err)
		}
	}

	for i, width := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
