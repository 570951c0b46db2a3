package eslog

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/upnqr-eslog/internal/upnqr"
	"github.com/ginjaninja78/upnqr-eslog/internal/xmlwriter"
)

var fixedClock = WithClock(func() time.Time {
	return time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
})

func sampleFields() InvoiceFields {
	return InvoiceFields{
		InvoiceNumber: "2024-0117",
		DueDate:       "2024-12-31",
		BuyerName:     "Janez Novak",
		BuyerAddress:  "Dunajska cesta 1, 1000 Ljubljana",
		SellerName:    "NGEN d.o.o.",
		SellerAddress: "Litostrojska cesta 52, 1000 Ljubljana",
		SellerIBAN:    "SI56290000155150357",
		SellerVATID:   "SI24576239",
		SellerLegalID: "8209901000",
		Amount:        decimal.RequireFromString("122.00"),
		TaxRate:       StandardVATRate,
	}
}

func message(t *testing.T, doc *xmlwriter.Document) *xmlwriter.Element {
	t.Helper()
	msg := doc.Root.Child(MessageElement)
	require.NotNil(t, msg)
	return msg
}

func segmentNames(msg *xmlwriter.Element) []string {
	names := make([]string, 0, len(msg.Children))
	for _, c := range msg.Children {
		names = append(names, c.Name())
	}
	return names
}

// totals returns the G_SG50 amounts in document order as "code=value".
func totals(msg *xmlwriter.Element) []string {
	var out []string
	for _, g := range msg.ChildrenNamed("G_SG50") {
		moa := g.Find("S_MOA/C_C516")
		out = append(out, moa.Child("D_5025").Value+"="+moa.Child("D_5004").Value)
	}
	return out
}

func countNamed(root *xmlwriter.Element, name string) int {
	n := 0
	for _, c := range root.Children {
		if c.Name() == name {
			n++
		}
		n += countNamed(c, name)
	}
	return n
}

func TestComputeAmounts(t *testing.T) {
	tests := []struct {
		total    string
		wantBase string
		wantTax  string
	}{
		{"122.00", "100.00", "22.00"},
		{"100.00", "81.97", "18.03"},
		{"123.45", "101.19", "22.26"},
		{"0.01", "0.01", "0.00"},
		{"0", "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			a := ComputeAmounts(total, StandardVATRate)
			assert.Equal(t, tt.wantBase, formatMoney(a.Base))
			assert.Equal(t, tt.wantTax, formatMoney(a.Tax))
			assert.True(t, a.Base.Add(a.Tax).Equal(total), "base + tax must equal total")
		})
	}
}

func TestComputeAmounts_ZeroDivisor(t *testing.T) {
	a := ComputeAmounts(decimal.NewFromInt(10), decimal.NewFromInt(-100))
	assert.Equal(t, "10.00", formatMoney(a.Base))
	assert.Equal(t, "0.00", formatMoney(a.Tax))
}

func TestFormatting(t *testing.T) {
	d := decimal.RequireFromString("81.97")
	assert.Equal(t, "81.97", formatMoney(d))
	assert.Equal(t, "81.9700", formatUnitPrice(d))
	assert.Equal(t, "22", formatPercent(StandardVATRate))
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want Address
	}{
		{"Main St 5, 1000 Ljubljana", Address{Street: "Main St 5", PostalCode: "1000", City: "Ljubljana"}},
		{"Main St 5", Address{Street: "Main St 5"}},
		{"Main St 5, Ljubljana", Address{Street: "Main St 5"}},
		{", 2000 Maribor", Address{PostalCode: "2000", City: "Maribor"}},
		{"Trg 1, 4274 Žirovnica, Slovenija", Address{Street: "Trg 1", PostalCode: "4274", City: "Žirovnica"}},
		{"Pot 3, 100 Kranj", Address{Street: "Pot 3"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAddress(tt.in))
		})
	}
}

func TestBuild_SegmentOrder(t *testing.T) {
	msg := message(t, NewGenerator(fixedClock).Build(sampleFields()))

	assert.Equal(t, []string{
		"S_UNH", "S_BGM",
		"S_DTM", "S_DTM", "S_DTM", "S_DTM",
		"S_FTX",
		"G_SG2", "G_SG2",
		"G_SG7", "G_SG8", "G_SG26",
		"S_UNS",
		"G_SG50", "G_SG50", "G_SG50", "G_SG50", "G_SG50", "G_SG50", "G_SG50",
		"G_SG52",
	}, segmentNames(msg))

	assert.Equal(t, []string{
		"79=100.00", "389=100.00", "388=122.00", "176=22.00", "9=122.00", "113=0.00", "366=0.00",
	}, totals(msg))
}

func TestBuild_Dates(t *testing.T) {
	msg := message(t, NewGenerator(fixedClock).Build(sampleFields()))

	var got []string
	for _, dtm := range msg.ChildrenNamed("S_DTM") {
		c := dtm.Child("C_C507")
		got = append(got, c.Child("D_2005").Value+"="+c.Child("D_2380").Value)
	}
	assert.Equal(t, []string{"137=2024-03-05", "167=2024-03-05", "168=2024-03-05", "13=2024-12-31"}, got)

	assert.Equal(t, "2024-12-31", msg.Find("G_SG8/S_DTM/C_C507/D_2380").Value)
}

func TestBuild_ExplicitInvoiceDate(t *testing.T) {
	fields := sampleFields()
	fields.InvoiceDate = "2024-01-15"
	fields.DueDate = ""

	msg := message(t, NewGenerator(fixedClock).Build(fields))

	dates := msg.ChildrenNamed("S_DTM")
	require.Len(t, dates, 3)
	for _, dtm := range dates {
		assert.Equal(t, "2024-01-15", dtm.Find("C_C507/D_2380").Value)
	}
	assert.Nil(t, msg.Find("G_SG8/S_DTM"))
}

func TestBuild_WithoutVAT(t *testing.T) {
	fields := sampleFields()
	fields.SellerVATID = ""
	fields.SellerLegalID = ""

	doc := NewGenerator(fixedClock).Build(fields)
	msg := message(t, doc)

	assert.Zero(t, countNamed(doc.Root, "S_TAX"))
	assert.Zero(t, countNamed(doc.Root, "G_SG34"))
	assert.Zero(t, countNamed(doc.Root, "G_SG52"))
	assert.Zero(t, countNamed(doc.Root, "G_SG3"))
	assert.Equal(t, []string{
		"79=100.00", "389=100.00", "388=122.00", "9=122.00", "113=0.00", "366=0.00",
	}, totals(msg))
}

func TestBuild_WithVAT(t *testing.T) {
	doc := NewGenerator(fixedClock).Build(sampleFields())
	msg := message(t, doc)

	assert.Equal(t, 1, countNamed(doc.Root, "G_SG52"))
	assert.Equal(t, 1, countNamed(doc.Root, "G_SG34"))
	assert.Equal(t, 2, countNamed(doc.Root, "S_TAX"))

	line := msg.Child("G_SG26")
	assert.Equal(t, "22", line.Find("G_SG34/S_TAX/C_C243/D_5278").Value)
	assert.Equal(t, "S", line.Find("G_SG34/S_TAX/D_5305").Value)
	assert.Equal(t, "100.00", line.Find("G_SG27/S_MOA/C_C516/D_5004").Value)
	assert.Equal(t, "100.0000", line.Find("G_SG29/S_PRI/C_C509/D_5118").Value)

	summary := msg.Child("G_SG52")
	moas := summary.ChildrenNamed("S_MOA")
	require.Len(t, moas, 2)
	assert.Equal(t, "125", moas[0].Find("C_C516/D_5025").Value)
	assert.Equal(t, "100.00", moas[0].Find("C_C516/D_5004").Value)
	assert.Equal(t, "124", moas[1].Find("C_C516/D_5025").Value)
	assert.Equal(t, "22.00", moas[1].Find("C_C516/D_5004").Value)
}

func TestBuild_SellerParty(t *testing.T) {
	msg := message(t, NewGenerator(fixedClock).Build(sampleFields()))

	groups := msg.ChildrenNamed("G_SG2")
	require.Len(t, groups, 2)
	buyer, seller := groups[0], groups[1]

	assert.Equal(t, "BY", buyer.Find("S_NAD/D_3035").Value)
	assert.Equal(t, "SE", seller.Find("S_NAD/D_3035").Value)

	nad := seller.Child("S_NAD")
	assert.Equal(t, []string{"D_3035", "C_C080", "C_C059", "D_3164", "D_3251", "D_3207"}, segmentNames(nad))
	assert.Equal(t, "NGEN d.o.o.", nad.Find("C_C080/D_3036").Value)
	assert.Equal(t, "Litostrojska cesta 52", nad.Find("C_C059/D_3042").Value)
	assert.Equal(t, "Ljubljana", nad.Child("D_3164").Value)
	assert.Equal(t, "1000", nad.Child("D_3251").Value)
	assert.Equal(t, "SI", nad.Child("D_3207").Value)

	assert.Equal(t, []string{"S_NAD", "S_FII", "G_SG3", "G_SG3"}, segmentNames(seller))
	assert.Equal(t, "RB", seller.Find("S_FII/D_3035").Value)
	assert.Equal(t, "SI56290000155150357", seller.Find("S_FII/C_C078/D_3194").Value)

	refs := seller.ChildrenNamed("G_SG3")
	assert.Equal(t, "VA", refs[0].Find("S_RFF/C_C506/D_1153").Value)
	assert.Equal(t, "SI24576239", refs[0].Find("S_RFF/C_C506/D_1154").Value)
	assert.Equal(t, "AHP", refs[1].Find("S_RFF/C_C506/D_1153").Value)
	assert.Equal(t, "8209901000", refs[1].Find("S_RFF/C_C506/D_1154").Value)
}

func TestBuild_AddressWithoutPostalCode(t *testing.T) {
	fields := sampleFields()
	fields.BuyerAddress = "Main St 5"

	msg := message(t, NewGenerator(fixedClock).Build(fields))
	nad := msg.ChildrenNamed("G_SG2")[0].Child("S_NAD")

	assert.Equal(t, []string{"D_3035", "C_C080", "C_C059", "D_3207"}, segmentNames(nad))
	assert.Equal(t, "Main St 5", nad.Find("C_C059/D_3042").Value)
}

func TestBuild_ZeroFields(t *testing.T) {
	gen := NewGenerator(fixedClock)
	doc := gen.Build(InvoiceFields{})
	msg := message(t, doc)

	assert.Equal(t, DefaultInvoiceNumber, msg.Find("S_UNH/D_0062").Value)
	assert.Equal(t, DefaultInvoiceNumber, msg.Find("S_BGM/C_C106/D_1004").Value)
	assert.Equal(t, DefaultItemDescription, msg.Find("G_SG26/S_IMD/C_C273/D_7008").Value)
	assert.Empty(t, msg.ChildrenNamed("G_SG2"))
	assert.Len(t, msg.ChildrenNamed("S_DTM"), 3)
	assert.Equal(t, "0.00", msg.Find("G_SG26/G_SG27/S_MOA/C_C516/D_5004").Value)

	require.NoError(t, xmlwriter.CheckWellFormed(gen.Generate(InvoiceFields{})))
}

func TestGenerate_Serialization(t *testing.T) {
	out := string(NewGenerator(fixedClock).Generate(sampleFields()))

	assert.True(t, strings.HasPrefix(out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"+
		"<Invoice xmlns=\"urn:eslog:2.00\" xmlns:xsi=\"http://www.w3.org/2001/XMLSchema-instance\">\n"+
		"  <M_INVOIC Id=\"data\">\n"+
		"    <S_UNH>\n"+
		"      <D_0062>2024-0117</D_0062>\n"+
		"      <C_S009>\n"+
		"        <D_0065>INVOIC</D_0065>\n"+
		"        <D_0052>D</D_0052>\n"+
		"        <D_0054>01B</D_0054>\n"+
		"        <D_0051>UN</D_0051>\n"), out)
	assert.Contains(t, out, "<D_4440>urn:cen.eu:en16931:2017</D_4440>")
	assert.True(t, strings.HasSuffix(out, "  </M_INVOIC>\n</Invoice>\n"))
	require.NoError(t, xmlwriter.CheckWellFormed([]byte(out)))
}

func TestWithClock_NilKeepsDefault(t *testing.T) {
	g := NewGenerator(WithClock(nil))
	require.NotNil(t, g.now)
}

// End to end: payload text through parser, translator and generator.
func TestEndToEnd(t *testing.T) {
	raw := strings.Join([]string{
		"UPNQR", "SI56020170014356205", "", "", "",
		"Janez Novak", "Dunajska cesta 1", "1000 Ljubljana",
		"00000010000", "05.03.2024", "", "GDSV",
		"Plačilo računa št.: 2024-0117", "31.12.2024",
		"SI56290000155150357", "SI0020240117",
		"Ngen d.o.o.", "Litostrojska cesta 52", "1000 Ljubljana", "188",
	}, "\n")

	rec, err := upnqr.Parse(raw)
	require.NoError(t, err)

	fields := Translate(rec, nil)
	msg := message(t, NewGenerator(fixedClock).Build(fields))

	assert.Contains(t, totals(msg), "388=100.00")
	assert.Contains(t, totals(msg), "176=18.03")
	assert.Equal(t, "2024-12-31", msg.ChildrenNamed("S_DTM")[3].Find("C_C507/D_2380").Value)

	seller := msg.ChildrenNamed("G_SG2")[1]
	refs := seller.ChildrenNamed("G_SG3")
	require.Len(t, refs, 2)
	assert.Equal(t, "SI24576239", refs[0].Find("S_RFF/C_C506/D_1154").Value)
	assert.Equal(t, "8209901000", refs[1].Find("S_RFF/C_C506/D_1154").Value)
	assert.Equal(t, "Plačilo računa št.: 2024-0117", msg.Find("G_SG26/S_IMD/C_C273/D_7008").Value)
}

func TestGenerate_ControlCharactersStayWellFormed(t *testing.T) {
	raw := strings.Join([]string{
		"UPNQR", "SI56020170014356205", "", "", "",
		"Janez\x01Novak", "Dunajska\x0b cesta 1", "1000 Ljubljana",
		"00000010000", "05.03.2024", "", "GDSV",
		"Plačilo\x1f računa št.: 2024-0117", "31.12.2024",
		"SI56290000155150357", "SI0020240117",
		"NGEN d.o.o.", "Litostrojska cesta 52", "1000 Ljubljana", "188",
	}, "\n")

	rec, err := upnqr.Parse(raw)
	require.NoError(t, err)

	out := NewGenerator(fixedClock).Generate(Translate(rec, nil))
	require.NoError(t, xmlwriter.CheckWellFormed(out))
	assert.Contains(t, string(out), "JanezNovak")
	assert.NotContains(t, string(out), "\x01")
}
