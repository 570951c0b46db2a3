// =============================================================================
// UPN QR to e-SLOG Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Payload file discovery
//   - File archival (moving processed payloads, copying documents)
//   - Output file naming
//   - Error and summary log generation
//
// ARCHIVAL STRATEGY:
//   - Payload files are moved to input_archive after successful conversion
//   - Generated documents are copied to output_archive
//   - Skipped and failed payloads remain in the input directory
//   - Error logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DefaultInputPattern matches decoded payload files.
const DefaultInputPattern = "*.txt"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager knows the four working directories of a batch.
type FileManager struct {
	InputDir         string
	OutputDir        string
	InputArchiveDir  string
	OutputArchiveDir string

	// UseTimestampSubdirs archives into YYYY/MM/DD subdirectories,
	// e.g. input_archive/2024/01/15/racun.txt.
	UseTimestampSubdirs bool

	// ArchiveOnSuccess turns archival on. When false the Archive* methods
	// leave files where they are.
	ArchiveOnSuccess bool
}

// NewFileManager returns a FileManager with archival on and flat archives.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
	}
}

// EnsureDirectories creates every configured directory. Empty entries are
// ignored.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files in InputDir matching pattern,
// sorted by name. An empty pattern means DefaultInputPattern.
//
// RETURNS:
//   - A sorted slice of file paths.
//   - An error if the pattern is malformed.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultInputPattern
	}

	matches, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	files := lo.Filter(matches, func(path string, _ int) bool {
		return FileExists(path)
	})
	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a converted payload into InputArchiveDir and
// returns its new path. With archival disabled the path is returned as is.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	return fm.archive(fm.InputArchiveDir, filePath, true)
}

// ArchiveOutputFile copies a generated document into OutputArchiveDir. The
// document stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	return fm.archive(fm.OutputArchiveDir, filePath, false)
}

// archive places filePath in archiveDir, moving it when move is set.
func (fm *FileManager) archive(archiveDir, filePath string, move bool) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(archiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if move {
		// Rename fails across devices; fall back to copy and delete.
		if err := os.Rename(filePath, archivePath); err == nil {
			return archivePath, nil
		}
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy %s to archive: %w", filepath.Base(filePath), err)
	}

	if move {
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove archived payload: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath returns archiveDir/<name>, or archiveDir/YYYY/MM/DD/<name>
// with UseTimestampSubdirs.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		day := filepath.FromSlash(time.Now().Format("2006/01/02"))
		return filepath.Join(archiveDir, day, fileName)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// unsafeFileChars matches everything that should not appear in a file name
// built from invoice data.
var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SanitizeFileName makes s usable as part of a file name. Runs of unsafe
// characters become a single underscore.
func SanitizeFileName(s string) string {
	return strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(s), "_"), "_.")
}

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {invoice}   - Invoice number
//               {original}  - Original file name (without extension)
//   - params: A map of placeholder values, keyed without braces. Values are
//             sanitized before substitution.
//
// RETURNS:
//   - The generated file name, always ending in ".xml".
//
// EXAMPLE:
//   format: "{invoice}_{uuid}.xml"
//   params: {"invoice": "2024/0117"}
//   output: "2024_0117_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xml"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	// Build replacements.
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	// Add custom params.
	for key, value := range params {
		replacements["{"+key+"}"] = SanitizeFileName(value)
	}

	// Apply replacements.
	pairs := make([]string, 0, len(replacements)*2)
	for placeholder, value := range replacements {
		pairs = append(pairs, placeholder, value)
	}
	result := strings.NewReplacer(pairs...).Replace(format)

	// Ensure .xml extension.
	if !strings.HasSuffix(strings.ToLower(result), ".xml") {
		result += ".xml"
	}

	return result
}

// OriginalName returns the base name of path without its extension.
func OriginalName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// Error types used in log entries.
const (
	ErrorTypeNotUPNQR   = "not_upnqr"
	ErrorTypeParse      = "parse_error"
	ErrorTypeValidation = "validation_warning"
	ErrorTypeIO         = "io_error"
)

// ErrorLogEntry is one skipped or failed file, or one validation warning.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string

	// LineNumber, FieldName and FieldValue locate validation warnings in
	// the payload. Zero values are omitted from the log.
	LineNumber int
	FieldName  string
	FieldValue string
}

const (
	reportRule        = "================================================================================"
	reportSectionRule = "--------------------------------------------------------------------------------"
	reportTimeLayout  = "2006-01-02 15:04:05"
)

// WriteErrorLog writes entries to error_log_<timestamp>.txt in outputDir.
//
// RETURNS:
//   - The path to the error log file, empty when there is nothing to log.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	return writeReport(outputDir, "error_log", func(w *bufio.Writer) {
		fmt.Fprintf(w, "UPN QR to e-SLOG Converter - Error Log\n"+
			"Generated: %s\n"+
			"Total Entries: %d\n"+
			"%s\n\n",
			time.Now().Format(reportTimeLayout), len(entries), reportRule)

		for i, entry := range entries {
			fmt.Fprintf(w, "Entry #%d\n", i+1)
			writeLabeled(w, "Timestamp", entry.Timestamp.Format(reportTimeLayout))
			writeLabeled(w, "File", entry.FileName)
			writeLabeled(w, "Error Type", entry.ErrorType)
			writeLabeled(w, "Message", entry.ErrorMessage)
			if entry.LineNumber > 0 {
				writeLabeled(w, "Line", fmt.Sprint(entry.LineNumber))
			}
			if entry.FieldName != "" {
				writeLabeled(w, "Field", entry.FieldName)
			}
			if entry.FieldValue != "" {
				writeLabeled(w, "Value", entry.FieldValue)
			}
			w.WriteString("\n")
		}

		fmt.Fprintf(w, "%s\nEnd of Error Log\n", reportRule)
	})
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes one batch run.
type ProcessingSummary struct {
	StartTime          time.Time
	EndTime            time.Time
	TotalFiles         int
	SuccessfulFiles    int
	SkippedFiles       int
	FailedFiles        int
	ValidationWarnings int
	ProcessedFiles     []ProcessedFileInfo
	FailedFilesList    []FailedFileInfo
}

// ProcessedFileInfo is one converted payload.
type ProcessedFileInfo struct {
	InputFile     string
	OutputFile    string
	InvoiceNumber string
	TotalAmount   string
	ProcessTime   time.Duration
}

// FailedFileInfo is one skipped or failed payload.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// WriteSummaryLog writes processing_summary_<timestamp>.txt to outputDir.
// It is the plain-text alternative to the XLSX summary workbook.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	return writeReport(outputDir, "processing_summary", func(w *bufio.Writer) {
		fmt.Fprintf(w, "UPN QR to e-SLOG Converter - Processing Summary\n%s\n\n", reportRule)

		w.WriteString("Run Information:\n")
		fmt.Fprintf(w, "  Start Time:     %s\n", summary.StartTime.Format(reportTimeLayout))
		fmt.Fprintf(w, "  End Time:       %s\n", summary.EndTime.Format(reportTimeLayout))
		fmt.Fprintf(w, "  Duration:       %s\n\n", summary.EndTime.Sub(summary.StartTime))

		w.WriteString("Statistics:\n")
		fmt.Fprintf(w, "  Total Files:         %d\n", summary.TotalFiles)
		fmt.Fprintf(w, "  Converted:           %d\n", summary.SuccessfulFiles)
		fmt.Fprintf(w, "  Skipped:             %d\n", summary.SkippedFiles)
		fmt.Fprintf(w, "  Failed:              %d\n", summary.FailedFiles)
		fmt.Fprintf(w, "  Validation Warnings: %d\n\n", summary.ValidationWarnings)

		if len(summary.ProcessedFiles) > 0 {
			fmt.Fprintf(w, "Converted Files:\n%s\n", reportSectionRule)
			for _, pf := range summary.ProcessedFiles {
				fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
				fmt.Fprintf(w, "  Output:       %s\n", pf.OutputFile)
				fmt.Fprintf(w, "  Invoice:      %s\n", pf.InvoiceNumber)
				fmt.Fprintf(w, "  Total:        %s EUR\n", pf.TotalAmount)
				fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime)
			}
		}

		if len(summary.FailedFilesList) > 0 {
			fmt.Fprintf(w, "Skipped / Failed Files:\n%s\n", reportSectionRule)
			for _, ff := range summary.FailedFilesList {
				fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
				fmt.Fprintf(w, "  Type:  %s\n", ff.ErrorType)
				fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
			}
		}

		fmt.Fprintf(w, "%s\nEnd of Summary\n", reportRule)
	})
}

// writeReport creates <prefix>_<timestamp>.txt in dir and fills it with body.
func writeReport(dir, prefix string, body func(w *bufio.Writer)) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", prefix, time.Now().Format("20060102_150405")))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", prefix, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	body(w)
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", prefix, err)
	}

	return path, nil
}

// writeLabeled writes one indented "Label: value" line of an error entry.
func writeLabeled(w *bufio.Writer, label, value string) {
	fmt.Fprintf(w, "  %-11s %s\n", label+":", value)
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a regular file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
