package eslog

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/upnqr-eslog/internal/upnqr"
)

// Translate maps a parsed UPN QR record onto invoice fields. The payee is the
// seller and the payer is the buyer. Seller tax identifiers come from parties;
// a nil table means DefaultKnownParties.
//
// Translate never fails. A nil record yields empty fields apart from the
// address separators and the tax rate.
func Translate(rec *upnqr.Record, parties KnownParties) InvoiceFields {
	if rec == nil {
		rec = &upnqr.Record{Amount: decimal.Zero}
	}
	if parties == nil {
		parties = DefaultKnownParties()
	}

	fields := InvoiceFields{
		InvoiceNumber:    rec.InvoiceNumber,
		DueDate:          rec.DueDate,
		BuyerName:        rec.PayerName,
		BuyerAddress:     joinAddress(rec.PayerStreet, rec.PayerCity),
		SellerName:       rec.PayeeName,
		SellerAddress:    joinAddress(rec.PayeeStreet, rec.PayeeCity),
		SellerIBAN:       rec.PayeeIBAN,
		Amount:           rec.Amount,
		PaymentReference: rec.PayeeReference,
		PurposeCode:      rec.PurposeCode,
		ItemDescription:  rec.Purpose,
		TaxRate:          StandardVATRate,
	}

	if party, ok := parties.Lookup(rec.PayeeName); ok {
		fields.SellerVATID = party.VATID
		fields.SellerLegalID = party.LegalID
	}

	return fields
}

// joinAddress keeps the separator even when one side is empty.
func joinAddress(street, city string) string {
	return street + ", " + city
}
