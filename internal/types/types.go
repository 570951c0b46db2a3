// =============================================================================
// UPN QR to e-SLOG Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - converter
//   - report
//   - cmd
//
// =============================================================================

package types

// Conversion statuses.
const (
	StatusConverted = "converted"
	StatusDryRun    = "dry-run"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// =============================================================================
// INVOICE SUMMARY
// =============================================================================

// InvoiceSummary describes the outcome of converting one payload file.
// It is one row of the batch summary workbook.
type InvoiceSummary struct {
	// SourceFile is the base name of the payload file.
	SourceFile string

	// OutputFile is the base name of the generated document. Empty when
	// nothing was written.
	OutputFile string

	InvoiceNumber string
	Seller        string
	Buyer         string
	DueDate       string

	// Amounts are formatted with two decimals.
	NetAmount   string
	TaxAmount   string
	TotalAmount string

	// Warnings is the number of validation findings.
	Warnings int

	// Status is one of the Status* constants.
	Status string

	// Error is the failure message for skipped and failed files.
	Error string
}
