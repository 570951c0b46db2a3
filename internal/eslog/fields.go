// =============================================================================
// UPN QR to e-SLOG Converter - Invoice Fields
// =============================================================================
//
// InvoiceFields is the flat intermediate form between a parsed UPN QR record
// and the e-SLOG document. It is produced by Translate and consumed by the
// Generator.
//
// =============================================================================

package eslog

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// StandardVATRate is the Slovenian standard VAT rate in percent. Every
// invoice is generated with this rate.
var StandardVATRate = decimal.NewFromInt(22)

// Defaults substituted by the generator for empty fields.
const (
	DefaultInvoiceNumber   = "INV001"
	DefaultItemDescription = "Storitev po računu"
)

// InvoiceFields holds everything the generator needs for one invoice.
type InvoiceFields struct {
	InvoiceNumber string
	// InvoiceDate is YYYY-MM-DD. Empty means the generator's clock date.
	InvoiceDate string
	DueDate     string

	BuyerName    string
	BuyerAddress string

	SellerName    string
	SellerAddress string
	SellerIBAN    string
	SellerVATID   string
	SellerLegalID string

	// Amount is the invoice total including VAT.
	Amount decimal.Decimal

	PaymentReference string
	PurposeCode      string
	ItemDescription  string

	// TaxRate is a percentage, e.g. 22.
	TaxRate decimal.Decimal
}

// HasVAT reports whether tax segments are emitted for these fields.
func (f InvoiceFields) HasVAT() bool {
	return f.SellerVATID != ""
}

// =============================================================================
// KNOWN PARTIES
// =============================================================================

// KnownParty maps a seller name fragment to the tax identifiers the UPN QR
// payload does not carry.
type KnownParty struct {
	Name         string
	NameContains string
	VATID        string
	LegalID      string
}

// Matches reports whether sellerName contains the party's fragment,
// ignoring case. A party with an empty fragment matches nothing.
func (p KnownParty) Matches(sellerName string) bool {
	if p.NameContains == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(sellerName), strings.ToUpper(p.NameContains))
}

// KnownParties is an ordered lookup table; the first match wins.
type KnownParties []KnownParty

// Lookup returns the first party matching sellerName.
func (ps KnownParties) Lookup(sellerName string) (KnownParty, bool) {
	return lo.Find(ps, func(p KnownParty) bool {
		return p.Matches(sellerName)
	})
}

// DefaultKnownParties returns the built-in table.
func DefaultKnownParties() KnownParties {
	return KnownParties{
		{
			Name:         "NGEN",
			NameContains: "NGEN",
			VATID:        "SI24576239",
			LegalID:      "8209901000",
		},
	}
}
