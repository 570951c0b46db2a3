package eslog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/upnqr-eslog/internal/upnqr"
)

func sampleRecord() *upnqr.Record {
	return &upnqr.Record{
		PayerName:      "Janez Novak",
		PayerStreet:    "Dunajska cesta 1",
		PayerCity:      "1000 Ljubljana",
		Amount:         decimal.RequireFromString("123.45"),
		PurposeCode:    "GDSV",
		Purpose:        "Plačilo računa št.: 2024-0117",
		DueDate:        "2024-12-31",
		PayeeIBAN:      "SI56290000155150357",
		PayeeReference: "SI0020240117",
		PayeeName:      "NGEN d.o.o.",
		PayeeStreet:    "Litostrojska cesta 52",
		PayeeCity:      "1000 Ljubljana",
		InvoiceNumber:  "2024-0117",
	}
}

func TestTranslate(t *testing.T) {
	f := Translate(sampleRecord(), DefaultKnownParties())

	assert.Equal(t, "2024-0117", f.InvoiceNumber)
	assert.Empty(t, f.InvoiceDate)
	assert.Equal(t, "2024-12-31", f.DueDate)
	assert.Equal(t, "Janez Novak", f.BuyerName)
	assert.Equal(t, "Dunajska cesta 1, 1000 Ljubljana", f.BuyerAddress)
	assert.Equal(t, "NGEN d.o.o.", f.SellerName)
	assert.Equal(t, "Litostrojska cesta 52, 1000 Ljubljana", f.SellerAddress)
	assert.Equal(t, "SI56290000155150357", f.SellerIBAN)
	assert.Equal(t, "SI24576239", f.SellerVATID)
	assert.Equal(t, "8209901000", f.SellerLegalID)
	assert.Equal(t, "123.45", f.Amount.StringFixed(2))
	assert.Equal(t, "SI0020240117", f.PaymentReference)
	assert.Equal(t, "GDSV", f.PurposeCode)
	assert.Equal(t, "Plačilo računa št.: 2024-0117", f.ItemDescription)
	assert.True(t, f.TaxRate.Equal(decimal.NewFromInt(22)))
	assert.True(t, f.HasVAT())
}

func TestTranslate_UnknownSeller(t *testing.T) {
	rec := sampleRecord()
	rec.PayeeName = "Elektro d.d."

	f := Translate(rec, DefaultKnownParties())
	assert.Empty(t, f.SellerVATID)
	assert.Empty(t, f.SellerLegalID)
	assert.False(t, f.HasVAT())
}

func TestTranslate_EmptyAddressSides(t *testing.T) {
	rec := sampleRecord()
	rec.PayerStreet = ""
	rec.PayeeCity = ""

	f := Translate(rec, nil)
	assert.Equal(t, ", 1000 Ljubljana", f.BuyerAddress)
	assert.Equal(t, "Litostrojska cesta 52, ", f.SellerAddress)
}

func TestTranslate_NilRecord(t *testing.T) {
	f := Translate(nil, nil)

	assert.Empty(t, f.InvoiceNumber)
	assert.Empty(t, f.SellerName)
	assert.Equal(t, ", ", f.BuyerAddress)
	assert.True(t, f.Amount.IsZero())
	assert.True(t, f.TaxRate.Equal(StandardVATRate))
}

func TestKnownParties_Lookup(t *testing.T) {
	parties := KnownParties{
		{Name: "empty", NameContains: ""},
		{Name: "first", NameContains: "ngen", VATID: "SI1"},
		{Name: "second", NameContains: "NGEN d.o.o.", VATID: "SI2"},
	}

	tests := []struct {
		seller  string
		want    string
		wantHit bool
	}{
		{"NGEN d.o.o.", "first", true},
		{"Ngen Energy", "first", true},
		{"Petrol", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.seller, func(t *testing.T) {
			p, ok := parties.Lookup(tt.seller)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestTranslate_CustomParties(t *testing.T) {
	rec := sampleRecord()
	rec.PayeeName = "Elektro d.d."

	f := Translate(rec, KnownParties{{Name: "Elektro", NameContains: "elektro", VATID: "SI99999999"}})
	assert.Equal(t, "SI99999999", f.SellerVATID)
	assert.Empty(t, f.SellerLegalID)
}
