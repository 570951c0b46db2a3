package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/upnqr-eslog/internal/converter"
	"github.com/ginjaninja78/upnqr-eslog/internal/eslog"
	"github.com/ginjaninja78/upnqr-eslog/internal/types"
	"github.com/ginjaninja78/upnqr-eslog/internal/upnqr"
	"github.com/ginjaninja78/upnqr-eslog/internal/validation"
	"github.com/ginjaninja78/upnqr-eslog/pkg/utils"
)

func sampleResults() []converter.Result {
	return []converter.Result{
		{
			FilePath: "/in/a.txt",
			Status:   types.StatusConverted,
			Findings: []*validation.ValidationError{
				{Severity: validation.SeverityWarning, Field: upnqr.FieldPurposeCode, Value: "gd5v", Message: "must be four upper-case letters", Line: 12},
			},
			Summary: types.InvoiceSummary{OutputFile: "INV001_a.xml", InvoiceNumber: "INV001", TotalAmount: "122.00"},
			Stats:   converter.ProcessingStats{ValidationWarnings: 1},
		},
		{
			FilePath: "/in/b.txt",
			Status:   types.StatusSkipped,
			Error:    upnqr.ErrNotUPNQR,
			Summary:  types.InvoiceSummary{Error: upnqr.ErrNotUPNQR.Error()},
		},
		{
			FilePath: "/in/c.txt",
			Status:   types.StatusFailed,
			Error:    cerrors.Wrap(upnqr.ErrInvalidField, "failed to parse payload"),
			Summary:  types.InvoiceSummary{Error: "failed to parse payload: invalid UPN QR field"},
		},
		{
			FilePath: "/in/d.txt",
			Status:   types.StatusFailed,
			Error:    errors.New("permission denied"),
			Summary:  types.InvoiceSummary{Error: "permission denied"},
		},
	}
}

func TestErrorLogEntries(t *testing.T) {
	entries := errorLogEntries(sampleResults())
	require.Len(t, entries, 4)

	assert.Equal(t, "a.txt", entries[0].FileName)
	assert.Equal(t, utils.ErrorTypeValidation, entries[0].ErrorType)
	assert.Equal(t, 12, entries[0].LineNumber)
	assert.Equal(t, upnqr.FieldPurposeCode, entries[0].FieldName)

	assert.Equal(t, utils.ErrorTypeNotUPNQR, entries[1].ErrorType)
	assert.Equal(t, utils.ErrorTypeParse, entries[2].ErrorType)
	assert.Equal(t, utils.ErrorTypeIO, entries[3].ErrorType)
}

func TestProcessingSummary(t *testing.T) {
	start := time.Now()
	summary := processingSummary(sampleResults(), start)

	assert.Equal(t, 4, summary.TotalFiles)
	assert.Equal(t, 1, summary.SuccessfulFiles)
	assert.Equal(t, 1, summary.SkippedFiles)
	assert.Equal(t, 2, summary.FailedFiles)
	assert.Equal(t, 1, summary.ValidationWarnings)
	require.Len(t, summary.ProcessedFiles, 1)
	assert.Equal(t, "INV001_a.xml", summary.ProcessedFiles[0].OutputFile)
	assert.Len(t, summary.FailedFilesList, 3)
}

func TestDiscoverInputFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	fm := utils.NewFileManager(dir, dir, dir, dir)

	filePath = dir + "/absent.txt"
	t.Cleanup(func() { filePath = "" })

	_, err := discoverInputFiles(fm, "*.txt")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filePath, []byte("UPNQR\n"), 0644))
	files, err := discoverInputFiles(fm, "*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filePath}, files)
}

func TestPrintInspection(t *testing.T) {
	rec := &upnqr.Record{
		Format:        "UPNQR",
		PayeeName:     "NGEN d.o.o.",
		Amount:        decimal.RequireFromString("122"),
		AmountRaw:     "00000012200",
		InvoiceNumber: "2024-0117",
	}
	fields := eslog.Translate(rec, nil)

	var out bytes.Buffer
	printInspection(&out, rec, nil, fields)

	text := out.String()
	assert.Contains(t, text, "UPN QR record:")
	assert.NotContains(t, text, "Warnings:")
	assert.Regexp(t, `invoice_number\s+2024-0117`, text)
	assert.Regexp(t, `seller_vat_id\s+SI24576239`, text)
	assert.Regexp(t, `net\s+100\.00`, text)
	assert.Regexp(t, `tax\s+22\.00`, text)
}

func TestPrintInspection_Warnings(t *testing.T) {
	rec := &upnqr.Record{
		Format:     "UPNQR",
		PayeeName:  "Pekarna Kruh d.o.o.",
		PayeeIBAN:  "SI56290000155150357",
		Amount:     decimal.RequireFromString("10"),
		AmountRaw:  "00000001000",
		Urgent:     "Y",
		DueDateRaw: "31.12.2024",
	}
	findings := validation.NewRecordValidator(nil).ValidateRecord(rec).Errors
	require.Len(t, findings, 2)

	var out bytes.Buffer
	printInspection(&out, rec, findings, eslog.Translate(rec, nil))

	text := out.String()
	assert.Contains(t, text, "Warnings:\nValidation completed with 2 finding(s):")
	assert.Contains(t, text, "1. [WARNING] Line 11, Field 'urgent'")
	assert.Contains(t, text, "2. [WARNING] Line 17, Field 'payee_name'")
}

func TestLoadConfig_ExplicitFileMustExist(t *testing.T) {
	saved := cfgFile
	t.Cleanup(func() { cfgFile = saved })

	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	err := loadConfig(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	assert.NoError(t, loadConfig(false))
	assert.Equal(t, "./input", mainConfig.InputDir)
}
