// =============================================================================
// UPN QR to e-SLOG Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the entire
// conversion pipeline for a single payload file, from reading the decoded QR
// text to writing the e-SLOG document.
//
// CONVERSION PIPELINE:
//   1. Read the payload file
//   2. Parse it into a UPN QR record
//   3. Validate the record (findings are warnings only)
//   4. Translate the record into invoice fields
//   5. Generate the e-SLOG document
//   6. Check the document is well-formed
//   7. Write the output file
//   8. Archive the processed files
//
// OUTCOMES:
//   - converted : a document was written
//   - dry-run   : a document was generated but not written
//   - skipped   : the file is not a UPN QR payload
//   - failed    : reading, parsing, generating or writing failed
//
// CONCURRENCY:
//   Each file is processed by its own Converter. Converters share nothing
//   mutable and can run in separate goroutines.
//
// =============================================================================

package converter

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/ginjaninja78/upnqr-eslog/internal/config"
	"github.com/ginjaninja78/upnqr-eslog/internal/eslog"
	"github.com/ginjaninja78/upnqr-eslog/internal/logger"
	"github.com/ginjaninja78/upnqr-eslog/internal/types"
	"github.com/ginjaninja78/upnqr-eslog/internal/upnqr"
	"github.com/ginjaninja78/upnqr-eslog/internal/validation"
	"github.com/ginjaninja78/upnqr-eslog/internal/xmlwriter"
	"github.com/ginjaninja78/upnqr-eslog/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated XML file.
	// This is empty if nothing was written.
	OutputFile string

	// Status is one of the types.Status* constants.
	Status string

	// Success is true for converted and dry-run files.
	Success bool

	// Error contains the error for skipped and failed files.
	Error error

	// Findings are the validation warnings for the record.
	Findings []*validation.ValidationError

	// Document is the generated XML. Set for converted and dry-run files.
	Document []byte

	// Summary is the workbook row for this file.
	Summary types.InvoiceSummary

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// LinesRead is the number of payload lines in the input file.
	LinesRead int

	// ValidationWarnings is the number of validation findings.
	ValidationWarnings int

	// OutputBytes is the size of the generated document.
	OutputBytes int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single payload file to e-SLOG.
type Converter struct {
	path      string
	config    *config.MainConfig
	parties   eslog.KnownParties
	files     *utils.FileManager
	generator *eslog.Generator
	validator *validation.Validator
	logger    Logger
	dryRun    bool
}

// Logger is the logging surface the converter needs. *logger.Logger
// satisfies it.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. Defaults to logger.L.
func WithLogger(l Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDryRun generates the document without writing or archiving anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// WithClock fixes the date used for the invoice issue date.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.generator = eslog.NewGenerator(eslog.WithClock(now)) }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - path: The path to the payload file.
//   - cfg: The main application configuration.
//   - parties: The known-party table; nil means eslog.DefaultKnownParties.
//
// RETURNS:
//   - A new Converter instance.
func New(path string, cfg *config.MainConfig, parties eslog.KnownParties, opts ...Option) *Converter {
	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	files.ArchiveOnSuccess = cfg.ArchiveProcessed
	files.UseTimestampSubdirs = cfg.ArchiveTimestampSubdirs

	c := &Converter{
		path:      path,
		config:    cfg,
		parties:   parties,
		files:     files,
		generator: eslog.NewGenerator(),
		validator: validation.NewRecordValidator(parties),
		logger:    logger.L,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{
		FilePath: c.path,
		Status:   types.StatusFailed,
		Summary: types.InvoiceSummary{
			SourceFile: filepath.Base(c.path),
			Status:     types.StatusFailed,
		},
	}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	c.logger.Infof("Processing file: %s", c.path)

	// =========================================================================
	// STEP 1: READ PAYLOAD
	// =========================================================================

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return c.fail(result, errors.Wrap(err, "failed to read payload"))
	}

	// =========================================================================
	// STEP 2: PARSE UPN QR RECORD
	// =========================================================================

	rec, err := upnqr.NewParser(c.parserLogger()).Parse(string(raw))
	if err != nil {
		if errors.Is(err, upnqr.ErrNotUPNQR) {
			c.logger.Warnf("Skipping %s: %v", c.path, err)
			result.Status = types.StatusSkipped
			result.Summary.Status = types.StatusSkipped
			result.Error = err
			result.Summary.Error = err.Error()
			return result
		}
		return c.fail(result, errors.Wrap(err, "failed to parse payload"))
	}

	result.Stats.LinesRead = len(strings.Split(strings.TrimSpace(string(raw)), "\n"))
	c.logger.Infof("Payer: %s, %s, %s", rec.PayerName, rec.PayerStreet, rec.PayerCity)
	c.logger.Infof("Payee: %s, %s, %s (%s)", rec.PayeeName, rec.PayeeStreet, rec.PayeeCity, rec.PayeeIBAN)
	c.logger.Infof("Amount: %s EUR, due date: %s", rec.Amount.StringFixed(2), rec.DueDate)

	// =========================================================================
	// STEP 3: VALIDATE RECORD
	// =========================================================================
	// Findings never stop the conversion.

	validationResult := c.validator.ValidateRecord(rec)
	result.Findings = validationResult.Errors
	result.Stats.ValidationWarnings = len(validationResult.Errors)
	result.Summary.Warnings = len(validationResult.Errors)

	for _, finding := range validationResult.Errors {
		c.logger.Warnf("%s: %s", filepath.Base(c.path), finding.Error())
	}

	// =========================================================================
	// STEP 4: TRANSLATE TO INVOICE FIELDS
	// =========================================================================

	fields := eslog.Translate(rec, c.parties)
	if !fields.HasVAT() {
		c.logger.Debugf("No known party matches seller %q, VAT segments omitted", fields.SellerName)
	}
	c.fillSummary(&result.Summary, fields)
	c.logger.Infof("Invoice %s: seller %s, buyer %s, reference %s, net %s, tax %s, total %s EUR",
		result.Summary.InvoiceNumber,
		fields.SellerName,
		fields.BuyerName,
		fields.PaymentReference,
		result.Summary.NetAmount,
		lo.Ternary(fields.HasVAT(), result.Summary.TaxAmount, "-"),
		result.Summary.TotalAmount,
	)

	// =========================================================================
	// STEP 5: GENERATE DOCUMENT
	// =========================================================================

	document := c.generator.Generate(fields)
	result.Document = document
	result.Stats.OutputBytes = len(document)

	// =========================================================================
	// STEP 6: CHECK WELL-FORMEDNESS
	// =========================================================================

	if err := xmlwriter.CheckWellFormed(document); err != nil {
		return c.fail(result, errors.Wrap(err, "generated document is not well-formed"))
	}

	if c.dryRun {
		c.logger.Infof("Dry run: generated %d bytes for %s", len(document), c.path)
		result.Status = types.StatusDryRun
		result.Summary.Status = types.StatusDryRun
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 7: WRITE OUTPUT FILE
	// =========================================================================

	outputPath, err := c.writeOutput(document, fields)
	if err != nil {
		return c.fail(result, errors.Wrap(err, "failed to write output"))
	}

	result.OutputFile = outputPath
	result.Summary.OutputFile = filepath.Base(outputPath)
	if size, err := utils.GetFileSize(outputPath); err == nil {
		c.logger.Infof("Wrote %d bytes to: %s", size, outputPath)
	} else {
		c.logger.Infof("Wrote output to: %s", outputPath)
	}

	// =========================================================================
	// STEP 8: ARCHIVE FILES
	// =========================================================================

	if err := c.archiveFiles(outputPath); err != nil {
		// Log the error but don't fail the processing.
		c.logger.Warnf("Failed to archive files: %v", err)
	}

	result.Status = types.StatusConverted
	result.Summary.Status = types.StatusConverted
	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (c *Converter) fail(result Result, err error) Result {
	c.logger.Errorf("Failed to process %s: %v", c.path, err)
	result.Error = err
	result.Summary.Error = err.Error()
	return result
}

// parserLogger hands the parser the zap logger when the converter has one.
func (c *Converter) parserLogger() *logger.Logger {
	if l, ok := c.logger.(*logger.Logger); ok {
		return l
	}
	return nil
}

func (c *Converter) fillSummary(summary *types.InvoiceSummary, fields eslog.InvoiceFields) {
	amounts := eslog.ComputeAmounts(fields.Amount, fields.TaxRate)

	summary.InvoiceNumber = invoiceNumber(fields)
	summary.Seller = fields.SellerName
	summary.Buyer = fields.BuyerName
	summary.DueDate = fields.DueDate
	summary.NetAmount = amounts.Base.StringFixed(2)
	summary.TotalAmount = amounts.Total.StringFixed(2)
	if fields.HasVAT() {
		summary.TaxAmount = amounts.Tax.StringFixed(2)
	}
}

func invoiceNumber(fields eslog.InvoiceFields) string {
	if fields.InvoiceNumber == "" {
		return eslog.DefaultInvoiceNumber
	}
	return fields.InvoiceNumber
}

// writeOutput writes the document to the output directory.
//
// RETURNS:
//   - The path to the output file.
//   - An error if writing fails.
func (c *Converter) writeOutput(document []byte, fields eslog.InvoiceFields) (string, error) {
	fileName := utils.GenerateOutputFileName(c.config.OutputNameFormat, map[string]string{
		"invoice":  invoiceNumber(fields),
		"original": utils.OriginalName(c.path),
	})
	outputPath := filepath.Join(c.config.OutputDir, fileName)

	if err := os.MkdirAll(c.config.OutputDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}

	if err := os.WriteFile(outputPath, document, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", outputPath)
	}

	return outputPath, nil
}

// archiveFiles copies the output to the output archive and moves the input
// to the input archive.
func (c *Converter) archiveFiles(outputPath string) error {
	if !c.files.ArchiveOnSuccess {
		return nil
	}

	archivedOutput, err := c.files.ArchiveOutputFile(outputPath)
	if err != nil {
		return errors.Wrap(err, "failed to archive output file")
	}
	c.logger.Debugf("Archived output to: %s", archivedOutput)

	archivedInput, err := c.files.ArchiveInputFile(c.path)
	if err != nil {
		return errors.Wrap(err, "failed to archive input file")
	}
	c.logger.Debugf("Archived input to: %s", archivedInput)

	return nil
}
