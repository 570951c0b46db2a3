// =============================================================================
// UPN QR to e-SLOG Converter - UPN QR Record
// =============================================================================
//
// A Record is the typed form of a decoded UPN QR payload. UPN QR is the
// Slovenian national payment order encoded in a QR symbol: 20 newline
// separated lines in a fixed order.
//
// PAYLOAD LAYOUT (0-based line index):
//   0  UPNQR            format tag
//   1  payer IBAN       2  deposit flag     3  withdrawal flag
//   4  payer reference  5  payer name       6  payer street    7  payer city
//   8  amount (cents)   9  payment date     10 urgent flag
//   11 purpose code     12 purpose text     13 due date
//   14 payee IBAN       15 payee reference  16 payee name
//   17 payee street     18 payee city       19 checksum (sum of lengths)
//
// =============================================================================

package upnqr

import (
	"github.com/shopspring/decimal"
)

// FormatTag is the literal that must appear on the first payload line.
const FormatTag = "UPNQR"

// MinLines is the number of lines a payload must have.
const MinLines = 20

// Field names, in payload order. These are the keys of Record.Fields().
const (
	FieldFormat         = "format"
	FieldPayerIBAN      = "payer_iban"
	FieldDeposit        = "deposit"
	FieldWithdrawal     = "withdrawal"
	FieldPayerReference = "payer_reference"
	FieldPayerName      = "payer_name"
	FieldPayerStreet    = "payer_street"
	FieldPayerCity      = "payer_city"
	FieldAmount         = "amount"
	FieldAmountRaw      = "amount_raw"
	FieldPaymentDate    = "payment_date"
	FieldPaymentDateRaw = "payment_date_raw"
	FieldUrgent         = "urgent"
	FieldPurposeCode    = "purpose_code"
	FieldPurpose        = "purpose"
	FieldDueDate        = "due_date"
	FieldDueDateRaw     = "due_date_raw"
	FieldPayeeIBAN      = "payee_iban"
	FieldPayeeReference = "payee_reference"
	FieldPayeeName      = "payee_name"
	FieldPayeeStreet    = "payee_street"
	FieldPayeeCity      = "payee_city"
	FieldChecksum       = "checksum"
	FieldInvoiceNumber  = "invoice_number"
)

// Record holds every field of a parsed UPN QR payload.
type Record struct {
	// =========================================================================
	// PAYER (lines 1-7)
	// =========================================================================

	Format         string
	PayerIBAN      string
	Deposit        string
	Withdrawal     string
	PayerReference string
	PayerName      string
	PayerStreet    string
	PayerCity      string

	// =========================================================================
	// PAYMENT (lines 8-13)
	// =========================================================================

	// Amount is AmountRaw interpreted as euro cents. Zero when AmountRaw is empty.
	Amount decimal.Decimal

	// AmountRaw is the amount line exactly as found (integer cents).
	AmountRaw string

	// PaymentDate is PaymentDateRaw reformatted to YYYY-MM-DD when it is a
	// valid DD.MM.YYYY date, otherwise the raw text.
	PaymentDate    string
	PaymentDateRaw string

	Urgent      string
	PurposeCode string
	Purpose     string

	// DueDate follows the same rule as PaymentDate.
	DueDate    string
	DueDateRaw string

	// =========================================================================
	// PAYEE (lines 14-18)
	// =========================================================================

	PayeeIBAN      string
	PayeeReference string
	PayeeName      string
	PayeeStreet    string
	PayeeCity      string

	Checksum string

	// InvoiceNumber is taken from Purpose when it carries an invoice marker,
	// otherwise it equals PayeeReference.
	InvoiceNumber string
}

// Fields returns the record as a flat map of field name to text value.
func (r *Record) Fields() map[string]string {
	if r == nil {
		return map[string]string{}
	}
	return map[string]string{
		FieldFormat:         r.Format,
		FieldPayerIBAN:      r.PayerIBAN,
		FieldDeposit:        r.Deposit,
		FieldWithdrawal:     r.Withdrawal,
		FieldPayerReference: r.PayerReference,
		FieldPayerName:      r.PayerName,
		FieldPayerStreet:    r.PayerStreet,
		FieldPayerCity:      r.PayerCity,
		FieldAmount:         r.Amount.StringFixed(2),
		FieldAmountRaw:      r.AmountRaw,
		FieldPaymentDate:    r.PaymentDate,
		FieldPaymentDateRaw: r.PaymentDateRaw,
		FieldUrgent:         r.Urgent,
		FieldPurposeCode:    r.PurposeCode,
		FieldPurpose:        r.Purpose,
		FieldDueDate:        r.DueDate,
		FieldDueDateRaw:     r.DueDateRaw,
		FieldPayeeIBAN:      r.PayeeIBAN,
		FieldPayeeReference: r.PayeeReference,
		FieldPayeeName:      r.PayeeName,
		FieldPayeeStreet:    r.PayeeStreet,
		FieldPayeeCity:      r.PayeeCity,
		FieldChecksum:       r.Checksum,
		FieldInvoiceNumber:  r.InvoiceNumber,
	}
}

// FieldOrder lists the keys of Fields() in payload order.
var FieldOrder = []string{
	FieldFormat,
	FieldPayerIBAN,
	FieldDeposit,
	FieldWithdrawal,
	FieldPayerReference,
	FieldPayerName,
	FieldPayerStreet,
	FieldPayerCity,
	FieldAmount,
	FieldAmountRaw,
	FieldPaymentDate,
	FieldPaymentDateRaw,
	FieldUrgent,
	FieldPurposeCode,
	FieldPurpose,
	FieldDueDate,
	FieldDueDateRaw,
	FieldPayeeIBAN,
	FieldPayeeReference,
	FieldPayeeName,
	FieldPayeeStreet,
	FieldPayeeCity,
	FieldChecksum,
	FieldInvoiceNumber,
}
