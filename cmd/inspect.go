// =============================================================================
// UPN QR to e-SLOG Converter - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command, which parses a single payload file
// and prints what the converter would see, without writing anything.
//
// COMMAND USAGE:
//   eslog inspect FILE
//
// OUTPUT:
//   1. Every record field, in payload order
//   2. Validation warnings
//   3. The invoice fields handed to the document generator
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/upnqr-eslog/internal/config"
	"github.com/ginjaninja78/upnqr-eslog/internal/eslog"
	"github.com/ginjaninja78/upnqr-eslog/internal/upnqr"
	"github.com/ginjaninja78/upnqr-eslog/internal/validation"
)

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show the parsed fields of a UPN QR payload file",
	Long: `The inspect command parses one payload file and prints its UPN QR fields,
any validation warnings, and the invoice fields the e-SLOG document would be
generated from. It exits with an error when the file is not a UPN QR payload.`,

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(out io.Writer, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read payload")
	}

	rec, err := upnqr.NewParser(log).Parse(string(raw))
	if err != nil {
		return err
	}

	parties, err := config.LoadKnownParties(mainConfig.PartiesDir)
	if err != nil {
		return errors.Wrap(err, "failed to load known parties")
	}

	findings := validation.NewRecordValidator(parties).ValidateRecord(rec).Errors
	printInspection(out, rec, findings, eslog.Translate(rec, parties))
	return nil
}

// printInspection writes the three inspection sections to out.
func printInspection(out io.Writer, rec *upnqr.Record, findings []*validation.ValidationError, fields eslog.InvoiceFields) {
	fmt.Fprintln(out, "UPN QR record:")
	values := rec.Fields()
	for _, name := range upnqr.FieldOrder {
		fmt.Fprintf(out, "  %-20s %s\n", name, values[name])
	}

	if len(findings) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n%s", validation.FormatErrors(findings))
	}

	amounts := eslog.ComputeAmounts(fields.Amount, fields.TaxRate)
	fmt.Fprintln(out, "\nInvoice:")
	rows := [][2]string{
		{"invoice_number", fields.InvoiceNumber},
		{"due_date", fields.DueDate},
		{"buyer", fields.BuyerName},
		{"buyer_address", fields.BuyerAddress},
		{"seller", fields.SellerName},
		{"seller_address", fields.SellerAddress},
		{"seller_iban", fields.SellerIBAN},
		{"seller_vat_id", fields.SellerVATID},
		{"seller_legal_id", fields.SellerLegalID},
		{"payment_reference", fields.PaymentReference},
		{"purpose_code", fields.PurposeCode},
		{"item_description", fields.ItemDescription},
		{"total", amounts.Total.StringFixed(2)},
		{"net", amounts.Base.StringFixed(2)},
		{"tax", amounts.Tax.StringFixed(2)},
		{"tax_rate", amounts.Rate.StringFixed(0)},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %-20s %s\n", row[0], row[1])
	}
}
