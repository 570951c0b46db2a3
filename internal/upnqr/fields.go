package upnqr

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// =============================================================================
// FIELD TABLE
// =============================================================================

// field binds one payload line to the Record member it fills.
// set receives the line with surrounding whitespace removed.
type field struct {
	index int
	name  string
	set   func(r *Record, value string) error
}

// layout is applied in line order. The invoice number depends on two lines
// and is derived after the whole table has run.
var layout = []field{
	{0, FieldFormat, func(r *Record, v string) error { r.Format = v; return nil }},
	{1, FieldPayerIBAN, func(r *Record, v string) error { r.PayerIBAN = v; return nil }},
	{2, FieldDeposit, func(r *Record, v string) error { r.Deposit = v; return nil }},
	{3, FieldWithdrawal, func(r *Record, v string) error { r.Withdrawal = v; return nil }},
	{4, FieldPayerReference, func(r *Record, v string) error { r.PayerReference = v; return nil }},
	{5, FieldPayerName, func(r *Record, v string) error { r.PayerName = v; return nil }},
	{6, FieldPayerStreet, func(r *Record, v string) error { r.PayerStreet = v; return nil }},
	{7, FieldPayerCity, func(r *Record, v string) error { r.PayerCity = v; return nil }},
	{8, FieldAmount, setAmount},
	{9, FieldPaymentDate, func(r *Record, v string) error {
		r.PaymentDateRaw = v
		r.PaymentDate = ReformatDate(v)
		return nil
	}},
	{10, FieldUrgent, func(r *Record, v string) error { r.Urgent = v; return nil }},
	{11, FieldPurposeCode, func(r *Record, v string) error { r.PurposeCode = v; return nil }},
	{12, FieldPurpose, func(r *Record, v string) error { r.Purpose = v; return nil }},
	{13, FieldDueDate, func(r *Record, v string) error {
		r.DueDateRaw = v
		r.DueDate = ReformatDate(v)
		return nil
	}},
	{14, FieldPayeeIBAN, func(r *Record, v string) error { r.PayeeIBAN = v; return nil }},
	{15, FieldPayeeReference, func(r *Record, v string) error { r.PayeeReference = v; return nil }},
	{16, FieldPayeeName, func(r *Record, v string) error { r.PayeeName = v; return nil }},
	{17, FieldPayeeStreet, func(r *Record, v string) error { r.PayeeStreet = v; return nil }},
	{18, FieldPayeeCity, func(r *Record, v string) error { r.PayeeCity = repairCity(v); return nil }},
	{19, FieldChecksum, func(r *Record, v string) error { r.Checksum = v; return nil }},
}

// =============================================================================
// FIELD CONVERSIONS
// =============================================================================

// setAmount stores the raw cents text and its euro value.
// An empty line means zero; anything that is not an integer is an error.
func setAmount(r *Record, v string) error {
	r.AmountRaw = v
	if v == "" {
		r.Amount = decimal.Zero
		return nil
	}

	cents, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "amount %q is not an integer number of cents", v)
	}

	r.Amount = decimal.New(cents, -2)
	return nil
}

// payloadDateLayout accepts both zero-padded and unpadded day and month.
const payloadDateLayout = "2.1.2006"

// isoDateLayout is the output form of every reformatted date.
const isoDateLayout = "2006-01-02"

// ReformatDate converts DD.MM.YYYY to YYYY-MM-DD. Text that is not such a
// date (including the empty string) is returned unchanged.
func ReformatDate(v string) string {
	if v == "" {
		return ""
	}
	t, err := time.Parse(payloadDateLayout, v)
	if err != nil {
		return v
	}
	return t.Format(isoDateLayout)
}

// repairCity fixes the one mis-encoded character known to appear in payee
// cities produced by some issuers ("Ž" decoded as "鬚").
func repairCity(v string) string {
	return strings.ReplaceAll(v, "鬚", "Ž")
}

// =============================================================================
// INVOICE NUMBER
// =============================================================================

// invoiceMarker is "invoice no." in Slovenian. The purpose text must contain
// it followed by an optional period and a colon.
const invoiceMarker = "računa št"

var invoiceMarkerForms = []string{invoiceMarker + ".:", invoiceMarker + ":"}

// InvoiceNumberFromPurpose extracts the invoice number from a purpose text
// such as "Plačilo računa št.: 2024-0117". ok is false when no marker is
// present.
func InvoiceNumberFromPurpose(purpose string) (number string, ok bool) {
	found := false
	for _, form := range invoiceMarkerForms {
		if strings.Contains(purpose, form) {
			found = true
			break
		}
	}
	if !found {
		return "", false
	}

	tail := purpose[strings.LastIndex(purpose, invoiceMarker)+len(invoiceMarker):]
	return strings.Trim(tail, ":. "), true
}
