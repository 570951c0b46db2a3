// =============================================================================
// UPN QR to e-SLOG Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which is the main command for
// converting UPN QR payload files to e-SLOG documents.
//
// COMMAND USAGE:
//   eslog convert [flags]
//
// FLAGS:
//   --dry-run     : Generate documents without writing or archiving anything
//   --file        : Path to a single payload file to convert
//   --output-dir  : Override the configured output directory
//
// PROCESSING PIPELINE:
//   1. Load the known-party table
//   2. Discover payload files in the input directory (or take --file)
//   3. For each file (concurrently, at most max_concurrency at once):
//      a. Parse the UPN QR payload
//      b. Validate it (warnings only)
//      c. Generate the e-SLOG document
//      d. Write the output file and archive the inputs
//   4. Write the error log and the batch summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/upnqr-eslog/internal/config"
	"github.com/ginjaninja78/upnqr-eslog/internal/converter"
	"github.com/ginjaninja78/upnqr-eslog/internal/report"
	"github.com/ginjaninja78/upnqr-eslog/internal/types"
	"github.com/ginjaninja78/upnqr-eslog/internal/upnqr"
	"github.com/ginjaninja78/upnqr-eslog/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun generates documents without writing output files.
var dryRun bool

// filePath is the path to a specific file to convert.
var filePath string

// outputDir overrides the configured output directory.
var outputDir string

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:     "convert",
	Aliases: []string{"process"},
	Short:   "Convert UPN QR payload files to e-SLOG invoices",
	Long: `The convert command scans the input directory for decoded UPN QR payload
files and converts each one into an e-SLOG 2.0 invoice document.

Processing is done concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others.

On successful conversion:
  - The generated XML is placed in the output directory
  - The payload file is moved to the input archive
  - The XML is copied to the output archive

Files that are not UPN QR payloads are skipped and left in place.

After the batch:
  - An error log lists skipped and failed files and validation warnings
  - A summary (XLSX workbook, or text when summary_workbook is false) is
    written to the output directory`,

	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert()
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Generate documents without writing output files",
	)

	convertCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a single payload file to convert",
	)

	convertCmd.Flags().StringVar(
		&outputDir,
		"output-dir",
		"",
		"Override the configured output directory",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert orchestrates the batch conversion.
func runConvert() error {
	startTime := time.Now()
	cfg := *mainConfig
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	fmt.Println("=== UPN QR to e-SLOG Converter ===")

	// =========================================================================
	// STEP 1: LOAD KNOWN PARTIES
	// =========================================================================

	parties, err := config.LoadKnownParties(cfg.PartiesDir)
	if err != nil {
		return errors.Wrap(err, "failed to load known parties")
	}
	log.Debugf("Loaded %d known part(ies)", len(parties))

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	inputFiles, err := discoverInputFiles(fm, cfg.InputPattern)
	if err != nil {
		return err
	}

	if len(inputFiles) == 0 {
		fmt.Println("No payload files found in the input directory.")
		return nil
	}

	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// A buffered semaphore bounds the number of files in flight.

	var wg sync.WaitGroup
	results := make(chan converter.Result, len(inputFiles))
	semaphore := make(chan struct{}, cfg.MaxConcurrency)

	for _, file := range inputFiles {
		wg.Add(1)

		go func(path string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			conv := converter.New(path, &cfg, parties,
				converter.WithLogger(log),
				converter.WithDryRun(dryRun),
			)
			results <- conv.Run()
		}(file)
	}

	// Close the results channel when all goroutines are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	var collected []converter.Result
	for result := range results {
		collected = append(collected, result)
	}
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].FilePath < collected[j].FilePath
	})

	for _, result := range collected {
		name := filepath.Base(result.FilePath)
		switch result.Status {
		case types.StatusConverted:
			fmt.Printf("  ✓ %s -> %s\n", name, result.OutputFile)
		case types.StatusDryRun:
			fmt.Printf("  ✓ %s (dry run, %d bytes)\n", name, result.Stats.OutputBytes)
		case types.StatusSkipped:
			fmt.Printf("  - %s: %v\n", name, result.Error)
		default:
			fmt.Printf("  ✗ %s: %v\n", name, result.Error)
		}
	}

	counts := lo.CountValuesBy(collected, func(r converter.Result) string { return r.Status })
	warnings := lo.SumBy(collected, func(r converter.Result) int { return r.Stats.ValidationWarnings })

	// =========================================================================
	// STEP 5: WRITE LOGS AND SUMMARY
	// =========================================================================

	if !dryRun {
		writeBatchReports(&cfg, collected, startTime)
	}

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", len(collected))
	fmt.Printf("Converted:       %d\n", counts[types.StatusConverted]+counts[types.StatusDryRun])
	fmt.Printf("Skipped:         %d\n", counts[types.StatusSkipped])
	fmt.Printf("Failed:          %d\n", counts[types.StatusFailed])
	fmt.Printf("Warnings:        %d\n", warnings)
	fmt.Printf("Time elapsed:    %s\n", elapsed)

	if failed := counts[types.StatusFailed]; failed > 0 {
		return errors.Newf("%d file(s) failed", failed)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// discoverInputFiles returns --file when set, otherwise every file in the
// input directory matching pattern.
func discoverInputFiles(fm *utils.FileManager, pattern string) ([]string, error) {
	if filePath != "" {
		if !utils.FileExists(filePath) {
			return nil, errors.Newf("file not found: %s", filePath)
		}
		return []string{filePath}, nil
	}

	files, err := fm.DiscoverInputFiles(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover input files")
	}
	return files, nil
}

// writeBatchReports writes the error log and the batch summary. Failures are
// logged; they never change the outcome of the batch.
func writeBatchReports(cfg *config.MainConfig, results []converter.Result, startTime time.Time) {
	if logPath, err := utils.WriteErrorLog(errorLogEntries(results), cfg.OutputDir); err != nil {
		log.Errorf("Failed to write error log: %v", err)
	} else if logPath != "" {
		fmt.Printf("\nErrors and warnings have been logged to %s\n", logPath)
	}

	if cfg.SummaryWorkbook {
		summaries := lo.Map(results, func(r converter.Result, _ int) types.InvoiceSummary { return r.Summary })
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("summary_%s.xlsx", startTime.Format("20060102_150405")))
		if err := report.WriteSummaryWorkbook(path, summaries); err != nil {
			log.Errorf("Failed to write summary workbook: %v", err)
			return
		}
		fmt.Printf("Summary workbook written to %s\n", path)
		return
	}

	path, err := utils.WriteSummaryLog(processingSummary(results, startTime), cfg.OutputDir)
	if err != nil {
		log.Errorf("Failed to write summary log: %v", err)
		return
	}
	fmt.Printf("Summary written to %s\n", path)
}

// errorLogEntries lists skipped and failed files, then every validation
// warning, in file order.
func errorLogEntries(results []converter.Result) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	now := time.Now()

	for _, r := range results {
		name := filepath.Base(r.FilePath)

		switch r.Status {
		case types.StatusSkipped:
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     name,
				ErrorType:    utils.ErrorTypeNotUPNQR,
				ErrorMessage: r.Summary.Error,
			})
		case types.StatusFailed:
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     name,
				ErrorType:    failureType(r.Error),
				ErrorMessage: r.Summary.Error,
			})
		}

		for _, finding := range r.Findings {
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     name,
				ErrorType:    utils.ErrorTypeValidation,
				ErrorMessage: finding.Message,
				LineNumber:   finding.Line,
				FieldName:    finding.Field,
				FieldValue:   finding.Value,
			})
		}
	}

	return entries
}

// failureType tells payload errors from file system errors.
func failureType(err error) string {
	if errors.Is(err, upnqr.ErrInvalidField) {
		return utils.ErrorTypeParse
	}
	return utils.ErrorTypeIO
}

func processingSummary(results []converter.Result, startTime time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		EndTime:    time.Now(),
		TotalFiles: len(results),
	}

	for _, r := range results {
		summary.ValidationWarnings += r.Stats.ValidationWarnings

		switch r.Status {
		case types.StatusConverted:
			summary.SuccessfulFiles++
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:     filepath.Base(r.FilePath),
				OutputFile:    r.Summary.OutputFile,
				InvoiceNumber: r.Summary.InvoiceNumber,
				TotalAmount:   r.Summary.TotalAmount,
				ProcessTime:   r.Stats.ProcessingTime,
			})
		case types.StatusSkipped:
			summary.SkippedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    filepath.Base(r.FilePath),
				ErrorMessage: r.Summary.Error,
				ErrorType:    utils.ErrorTypeNotUPNQR,
			})
		default:
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    filepath.Base(r.FilePath),
				ErrorMessage: r.Summary.Error,
				ErrorType:    failureType(r.Error),
			})
		}
	}

	return summary
}
