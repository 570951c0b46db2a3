// =============================================================================
// UPN QR to e-SLOG Converter - Batch Summary Workbook
// =============================================================================
//
// This module writes the XLSX summary of a conversion batch.
// One row per payload file; a header row with filters on top.
//
// WORKBOOK STRUCTURE:
//
//   | Source File | Output File | Invoice | Seller | Buyer | Due Date | Net | VAT | Total | Warnings | Status | Error |
//   |-------------|-------------|---------|--------|-------|----------|-----|-----|-------|----------|--------|-------|
//   | a.txt       | 2024-1.xml  | 2024-1  | NGEN   | Novak | 2024-... | ... | ... | ...   | 0        | conv.. |       |
//
// Net, VAT and Total are numeric cells formatted with two decimals so the
// sheet can be summed directly.
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/upnqr-eslog/internal/types"
)

// SheetName is the name of the summary sheet.
const SheetName = "Summary"

// numFmtTwoDecimals is the built-in "0.00" number format.
const numFmtTwoDecimals = 2

// column describes one summary column.
type column struct {
	header string
	width  float64
	money  bool
	value  func(s types.InvoiceSummary) any
}

var columns = []column{
	{"Source File", 28, false, func(s types.InvoiceSummary) any { return s.SourceFile }},
	{"Output File", 40, false, func(s types.InvoiceSummary) any { return s.OutputFile }},
	{"Invoice", 18, false, func(s types.InvoiceSummary) any { return s.InvoiceNumber }},
	{"Seller", 30, false, func(s types.InvoiceSummary) any { return s.Seller }},
	{"Buyer", 30, false, func(s types.InvoiceSummary) any { return s.Buyer }},
	{"Due Date", 12, false, func(s types.InvoiceSummary) any { return s.DueDate }},
	{"Net", 12, true, func(s types.InvoiceSummary) any { return moneyCell(s.NetAmount) }},
	{"VAT", 12, true, func(s types.InvoiceSummary) any { return moneyCell(s.TaxAmount) }},
	{"Total", 12, true, func(s types.InvoiceSummary) any { return moneyCell(s.TotalAmount) }},
	{"Warnings", 10, false, func(s types.InvoiceSummary) any { return s.Warnings }},
	{"Status", 12, false, func(s types.InvoiceSummary) any { return s.Status }},
	{"Error", 60, false, func(s types.InvoiceSummary) any { return s.Error }},
}

// moneyCell returns a float for numeric amounts and nil for empty ones, so
// failed rows leave the amount cells blank.
func moneyCell(amount string) any {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil
	}
	return d.InexactFloat64()
}

// =============================================================================
// WRITER
// =============================================================================

// WriteSummaryWorkbook writes summaries to an XLSX file at path.
//
// PARAMETERS:
//   - path: The output file path (.xlsx).
//   - summaries: One entry per processed file, in display order.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func WriteSummaryWorkbook(path string, summaries []types.InvoiceSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	// Header row.
	headers := lo.Map(columns, func(c column, _ int) any { return c.header })
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	// Data rows.
	for i, s := range summaries {
		row := lo.Map(columns, func(c column, _ int) any { return c.value(s) })
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	// Column widths and amount formatting.
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	for i, c := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
		if c.money && len(summaries) > 0 {
			if err := f.SetCellStyle(SheetName, name+"2", fmt.Sprintf("%s%d", name, len(summaries)+1), moneyStyle); err != nil {
				return fmt.Errorf("failed to style column %s: %w", name, err)
			}
		}
	}

	if err := f.AutoFilter(SheetName, fmt.Sprintf("A1:%s%d", lastCol, len(summaries)+1), nil); err != nil {
		return fmt.Errorf("failed to add filter: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}
