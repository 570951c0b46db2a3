// =============================================================================
// UPN QR to e-SLOG Converter - e-SLOG 2.0 Generator
// =============================================================================
//
// Builds a single-line e-SLOG 2.0 INVOIC document from InvoiceFields.
//
// DOCUMENT LAYOUT (segment order is fixed by the schema):
//   Invoice                      root, default + xsi namespaces
//   └── M_INVOIC Id="data"
//       ├── S_UNH                message header
//       ├── S_BGM                commercial invoice (380)
//       ├── S_DTM x3             137 document, 167/168 service period
//       ├── S_DTM                13 due date (optional)
//       ├── S_FTX                specification identifier
//       ├── G_SG2                buyer BY (optional)
//       ├── G_SG2                seller SE with bank/VAT/legal refs (optional)
//       ├── G_SG7                currency EUR
//       ├── G_SG8                payment terms and means
//       ├── G_SG26               the single invoice line
//       ├── S_UNS                detail/summary separator
//       ├── G_SG50 x6..7         monetary totals
//       └── G_SG52               VAT breakdown (optional)
//
// Optional parts are driven by the rule table in segments.go.
//
// =============================================================================

package eslog

import (
	"time"

	"github.com/ginjaninja78/upnqr-eslog/internal/xmlwriter"
)

// Document constants.
const (
	Namespace         = "urn:eslog:2.00"
	XSINamespace      = "http://www.w3.org/2001/XMLSchema-instance"
	RootElement       = "Invoice"
	MessageElement    = "M_INVOIC"
	MessageIDAttr     = "Id"
	MessageIDValue    = "data"
	invoiceDateLayout = "2006-01-02"
)

// Generator renders InvoiceFields as e-SLOG documents.
type Generator struct {
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used when InvoiceFields carries no invoice date.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator creates a Generator. Without options it reads the system clock.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build assembles the document tree. Any InvoiceFields, including the zero
// value, yields a complete document.
func (g *Generator) Build(fields InvoiceFields) *xmlwriter.Document {
	inv := g.prepare(fields)

	doc := xmlwriter.NewDocument(RootElement,
		xmlwriter.Namespace{URI: Namespace},
		xmlwriter.Namespace{Prefix: "xsi", URI: XSINamespace},
	)
	msg := doc.Root.Add(MessageElement).SetAttr(MessageIDAttr, MessageIDValue)

	for _, rule := range segmentRules {
		if rule.when == nil || rule.when(inv) {
			rule.render(inv, msg)
		}
	}

	return doc
}

// Generate builds and serializes the document.
func (g *Generator) Generate(fields InvoiceFields) []byte {
	return g.Build(fields).Bytes()
}

// Generate renders fields with a system-clock Generator.
func Generate(fields InvoiceFields) []byte {
	return NewGenerator().Generate(fields)
}

// invoice is InvoiceFields after defaults, plus the derived amounts.
type invoice struct {
	InvoiceFields
	amounts Amounts
}

func (g *Generator) prepare(fields InvoiceFields) *invoice {
	if fields.InvoiceNumber == "" {
		fields.InvoiceNumber = DefaultInvoiceNumber
	}
	if fields.ItemDescription == "" {
		fields.ItemDescription = DefaultItemDescription
	}
	if fields.InvoiceDate == "" {
		fields.InvoiceDate = g.now().Format(invoiceDateLayout)
	}

	return &invoice{
		InvoiceFields: fields,
		amounts:       ComputeAmounts(fields.Amount, fields.TaxRate),
	}
}
