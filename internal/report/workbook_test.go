package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/upnqr-eslog/internal/types"
)

func openSummary(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func rawCell(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(SheetName, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWriteSummaryWorkbook_Rows(t *testing.T) {
	summaries := []types.InvoiceSummary{
		{
			SourceFile:    "ngen_marec.txt",
			OutputFile:    "2024-0117_abc.xml",
			InvoiceNumber: "2024-0117",
			Seller:        "NGEN d.o.o.",
			Buyer:         "Janez Novak",
			DueDate:       "2024-12-31",
			NetAmount:     "81.97",
			TaxAmount:     "18.03",
			TotalAmount:   "100.00",
			Warnings:      2,
			Status:        types.StatusConverted,
		},
		{
			SourceFile: "broken.txt",
			Status:     types.StatusSkipped,
			Error:      "not a UPN QR payload",
		},
	}

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, WriteSummaryWorkbook(path, summaries))
	f := openSummary(t, path)

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ngen_marec.txt", "2024-0117_abc.xml", "2024-0117", "NGEN d.o.o.", "Janez Novak", "2024-12-31"}, rows[1][:6])
	assert.Equal(t, "2", rows[1][9])
	assert.Equal(t, types.StatusConverted, rows[1][10])

	// Amounts are numeric cells.
	assert.Equal(t, "81.97", rawCell(t, f, "G2"))
	assert.Equal(t, "18.03", rawCell(t, f, "H2"))
	assert.Equal(t, "100", rawCell(t, f, "I2"))

	assert.Equal(t, "broken.txt", rows[2][0])
	assert.Empty(t, rawCell(t, f, "G3"))
	assert.Empty(t, rawCell(t, f, "I3"))
	assert.Equal(t, types.StatusSkipped, rows[2][10])
	assert.Equal(t, "not a UPN QR payload", rows[2][11])
}

func TestWriteSummaryWorkbook_Header(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteSummaryWorkbook(path, nil))
	f := openSummary(t, path)

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(columns))
	assert.Equal(t, "Source File", rows[0][0])
	assert.Equal(t, "Error", rows[0][len(rows[0])-1])
}

func TestWriteSummaryWorkbook_BadPath(t *testing.T) {
	err := WriteSummaryWorkbook(filepath.Join(t.TempDir(), "missing", "summary.xlsx"), nil)
	assert.Error(t, err)
}
