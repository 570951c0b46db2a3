// =============================================================================
// UPN QR to e-SLOG Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the UPN QR to e-SLOG Converter CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   eslog convert          - Convert all payload files in the input directory
//   eslog inspect FILE     - Show what a single payload parses to
//   eslog version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/upnqr       : UPN QR payload parsing
//   - internal/eslog       : Field translation and e-SLOG document generation
//   - internal/xmlwriter   : XML element tree and serialization
//   - internal/validation  : Advisory UPN QR field checks
//   - internal/converter   : Single-file conversion pipeline
//   - internal/report      : XLSX batch summary
//   - internal/config      : Main config and known-party files
//   - pkg/utils            : File discovery, archival and logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/upnqr-eslog/cmd"
)

func main() {
	cmd.Execute()
}
