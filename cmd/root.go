// =============================================================================
// UPN QR to e-SLOG Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'convert', 'inspect') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (eslog)
//   ├── convertCmd (eslog convert)
//   ├── inspectCmd (eslog inspect FILE)
//   └── versionCmd (eslog version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the main configuration (--config, ESLOG_* environment)
//   2. Sets up the zap logger (--verbose forces debug level)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/upnqr-eslog/internal/config"
	"github.com/ginjaninja78/upnqr-eslog/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// mainConfig and log are set by loadConfig before a subcommand runs.
var (
	mainConfig *config.MainConfig
	log        *logger.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eslog",
	Short: "UPN QR to e-SLOG Converter - Turn UPN QR payment slips into e-SLOG 2.0 invoices",
	Long: `UPN QR to e-SLOG Converter reads the text decoded from Slovenian UPN QR
payment codes and writes an e-SLOG 2.0 e-invoice XML document for each one.

Key Features:
  - Strict UPN QR payload parsing (amount, dates, invoice number)
  - Advisory validation against the UPN QR field limits
  - Known-party table for seller VAT and registration numbers
  - Concurrent batch processing with archival and an XLSX summary

Example Usage:
  eslog convert                        # Convert all payloads in the input directory
  eslog convert --file racun.txt       # Convert a single payload
  eslog convert --dry-run              # Generate without writing anything
  eslog inspect racun.txt              # Show what a payload parses to`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd.Flags().Changed("config"))
	},

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the main configuration and builds the logger. An
// explicitly passed --config file must exist.
func loadConfig(explicit bool) error {
	cfg, err := config.LoadMainConfig(cfgFile, explicit)
	if err != nil {
		return errors.Wrap(err, "failed to load main config")
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	l, err := logger.NewLogger(level, cfg.LogFormat)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.SetGlobal(l)

	mainConfig = cfg
	log = l
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	// A missing default file means built-in defaults.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
