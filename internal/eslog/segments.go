package eslog

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/upnqr-eslog/internal/xmlwriter"
)

// =============================================================================
// SEGMENT RULES
// =============================================================================

// segmentRule emits one or more sibling segments under M_INVOIC.
// A nil when means the rule always applies.
type segmentRule struct {
	name   string
	when   func(inv *invoice) bool
	render func(inv *invoice, msg *xmlwriter.Element)
}

// segmentRules is applied top to bottom. Order is part of the output format.
var segmentRules = []segmentRule{
	{"S_UNH", nil, renderMessageHeader},
	{"S_BGM", nil, renderBeginningOfMessage},
	{"S_DTM document dates", nil, renderDocumentDates},
	{"S_DTM due date", hasDueDate, func(inv *invoice, msg *xmlwriter.Element) {
		addDate(msg, DateDue, inv.DueDate)
	}},
	{"S_FTX", nil, renderSpecificationText},
	{"G_SG2 buyer", func(inv *invoice) bool { return inv.BuyerName != "" }, renderBuyer},
	{"G_SG2 seller", func(inv *invoice) bool { return inv.SellerName != "" }, renderSeller},
	{"G_SG7", nil, renderCurrency},
	{"G_SG8", nil, renderPaymentTerms},
	{"G_SG26", nil, renderLine},
	{"S_UNS", nil, func(_ *invoice, msg *xmlwriter.Element) {
		msg.Add("S_UNS").AddText("D_0081", "S")
	}},
	{"G_SG50", nil, renderTotals},
	{"G_SG52", hasVAT, func(inv *invoice, msg *xmlwriter.Element) {
		g := msg.Add("G_SG52")
		addTax(g, inv.amounts.Rate)
		addMonetary(g, AmountTaxable, inv.amounts.Base)
		addMonetary(g, AmountTax, inv.amounts.Tax)
	}},
}

func hasDueDate(inv *invoice) bool { return inv.DueDate != "" }

func hasVAT(inv *invoice) bool { return inv.HasVAT() }

// =============================================================================
// CODE LISTS
// =============================================================================

// Date/time qualifiers (D_2005).
const (
	DateDocument           = "137"
	DateServicePeriodStart = "167"
	DateServicePeriodEnd   = "168"
	DateDue                = "13"
)

// Monetary amount types (D_5025).
const (
	AmountLineItem      = "203"
	AmountLineItemTotal = "79"
	AmountNet           = "389"
	AmountGross         = "388"
	AmountTaxTotal      = "176"
	AmountDue           = "9"
	AmountPaid          = "113"
	AmountRounding      = "366"
	AmountTaxable       = "125"
	AmountTax           = "124"
)

// Party qualifiers (D_3035).
const (
	PartyBuyer         = "BY"
	PartySeller        = "SE"
	PartyReceivingBank = "RB"
)

const (
	specificationID = "urn:cen.eu:en16931:2017"
	countryCode     = "SI"
	currencyCode    = "EUR"
	unitCode        = "C62"
)

// =============================================================================
// RENDERERS
// =============================================================================

func renderMessageHeader(inv *invoice, msg *xmlwriter.Element) {
	unh := msg.Add("S_UNH")
	unh.AddText("D_0062", inv.InvoiceNumber)
	id := unh.Add("C_S009")
	id.AddText("D_0065", "INVOIC")
	id.AddText("D_0052", "D")
	id.AddText("D_0054", "01B")
	id.AddText("D_0051", "UN")
}

func renderBeginningOfMessage(inv *invoice, msg *xmlwriter.Element) {
	bgm := msg.Add("S_BGM")
	bgm.Add("C_C002").AddText("D_1001", "380")
	bgm.Add("C_C106").AddText("D_1004", inv.InvoiceNumber)
}

// renderDocumentDates emits the issue date and a service period that starts
// and ends on it.
func renderDocumentDates(inv *invoice, msg *xmlwriter.Element) {
	for _, qualifier := range []string{DateDocument, DateServicePeriodStart, DateServicePeriodEnd} {
		addDate(msg, qualifier, inv.InvoiceDate)
	}
}

func renderSpecificationText(_ *invoice, msg *xmlwriter.Element) {
	ftx := msg.Add("S_FTX")
	ftx.AddText("D_4451", "DOC")
	ftx.Add("C_C107").AddText("D_4441", "P1")
	ftx.Add("C_C108").AddText("D_4440", specificationID)
}

func renderBuyer(inv *invoice, msg *xmlwriter.Element) {
	addParty(msg.Add("G_SG2"), PartyBuyer, inv.BuyerName, inv.BuyerAddress)
}

func renderSeller(inv *invoice, msg *xmlwriter.Element) {
	group := msg.Add("G_SG2")
	addParty(group, PartySeller, inv.SellerName, inv.SellerAddress)

	if inv.SellerIBAN != "" {
		fii := group.Add("S_FII")
		fii.AddText("D_3035", PartyReceivingBank)
		fii.Add("C_C078").AddText("D_3194", inv.SellerIBAN)
	}
	if inv.SellerVATID != "" {
		addReference(group, "VA", inv.SellerVATID)
	}
	if inv.SellerLegalID != "" {
		addReference(group, "AHP", inv.SellerLegalID)
	}
}

func renderCurrency(_ *invoice, msg *xmlwriter.Element) {
	cux := msg.Add("G_SG7").Add("S_CUX").Add("C_C504")
	cux.AddText("D_6347", "2")
	cux.AddText("D_6345", currencyCode)
}

func renderPaymentTerms(inv *invoice, msg *xmlwriter.Element) {
	group := msg.Add("G_SG8")
	group.Add("S_PAT").AddText("D_4279", "1")
	if hasDueDate(inv) {
		addDate(group, DateDue, inv.DueDate)
	}
	// 30: credit transfer
	group.Add("S_PAI").Add("C_C534").AddText("D_4461", "30")
}

func renderLine(inv *invoice, msg *xmlwriter.Element) {
	line := msg.Add("G_SG26")
	line.Add("S_LIN").AddText("D_1082", "1")

	imd := line.Add("S_IMD")
	imd.AddText("D_7077", "F")
	imd.Add("C_C273").AddText("D_7008", inv.ItemDescription)

	qty := line.Add("S_QTY").Add("C_C186")
	qty.AddText("D_6063", "47")
	qty.AddText("D_6060", "1")
	qty.AddText("D_6411", unitCode)

	addMonetary(line.Add("G_SG27"), AmountLineItem, inv.amounts.Base)

	price := line.Add("G_SG29").Add("S_PRI").Add("C_C509")
	price.AddText("D_5125", "AAA")
	price.AddText("D_5118", formatUnitPrice(inv.amounts.Base))
	price.AddText("D_5284", "1")
	price.AddText("D_6411", unitCode)

	if hasVAT(inv) {
		addTax(line.Add("G_SG34"), inv.amounts.Rate)
	}
}

// renderTotals emits one G_SG50 group per summary amount.
func renderTotals(inv *invoice, msg *xmlwriter.Element) {
	a := inv.amounts
	totals := []struct {
		code  string
		value decimal.Decimal
		when  bool
	}{
		{AmountLineItemTotal, a.Base, true},
		{AmountNet, a.Base, true},
		{AmountGross, a.Total, true},
		{AmountTaxTotal, a.Tax, hasVAT(inv)},
		{AmountDue, a.Total, true},
		{AmountPaid, decimal.Zero, true},
		{AmountRounding, decimal.Zero, true},
	}

	for _, t := range totals {
		if t.when {
			addMonetary(msg.Add("G_SG50"), t.code, t.value)
		}
	}
}

// =============================================================================
// SEGMENT HELPERS
// =============================================================================

func addDate(parent *xmlwriter.Element, qualifier, date string) {
	c := parent.Add("S_DTM").Add("C_C507")
	c.AddText("D_2005", qualifier)
	c.AddText("D_2380", date)
}

func addMonetary(parent *xmlwriter.Element, code string, value decimal.Decimal) {
	c := parent.Add("S_MOA").Add("C_C516")
	c.AddText("D_5025", code)
	c.AddText("D_5004", formatMoney(value))
}

// addTax emits a standard-rate VAT segment.
func addTax(parent *xmlwriter.Element, rate decimal.Decimal) {
	tax := parent.Add("S_TAX")
	tax.AddText("D_5283", "7")
	tax.Add("C_C241").AddText("D_5153", "VAT")
	tax.Add("C_C243").AddText("D_5278", formatPercent(rate))
	tax.AddText("D_5305", "S")
}

func addReference(group *xmlwriter.Element, qualifier, value string) {
	ref := group.Add("G_SG3").Add("S_RFF").Add("C_C506")
	ref.AddText("D_1153", qualifier)
	ref.AddText("D_1154", value)
}

func addParty(group *xmlwriter.Element, qualifier, name, address string) {
	nad := group.Add("S_NAD")
	nad.AddText("D_3035", qualifier)
	nad.Add("C_C080").AddText("D_3036", name)

	if address != "" {
		addr := ParseAddress(address)
		nad.Add("C_C059").AddText("D_3042", addr.Street)
		if addr.PostalCode != "" {
			nad.AddText("D_3164", addr.City)
			nad.AddText("D_3251", addr.PostalCode)
		}
	}

	nad.AddText("D_3207", countryCode)
}

// =============================================================================
// ADDRESSES
// =============================================================================

// Address is a "street, postal-code city" address broken into parts.
type Address struct {
	Street     string
	PostalCode string
	City       string
}

var postalCity = regexp.MustCompile(`^(\d{4})\s+(.+)`)

// ParseAddress splits an address on commas. The first part is the street.
// Postal code and city are set only when the second part starts with a
// four-digit code; any further parts are ignored.
func ParseAddress(address string) Address {
	parts := strings.Split(address, ",")
	addr := Address{Street: strings.TrimSpace(parts[0])}

	if len(parts) > 1 {
		if m := postalCity.FindStringSubmatch(strings.TrimSpace(parts[1])); m != nil {
			addr.PostalCode = m[1]
			addr.City = m[2]
		}
	}

	return addr
}
