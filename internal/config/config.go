// =============================================================================
// UPN QR to e-SLOG Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the known-party
// tables that supply seller tax identifiers.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Party Configs (parties/*.yaml): Known sellers and their tax identifiers
//
// SOURCES (highest precedence first):
//   1. Environment variables prefixed with ESLOG_ (ESLOG_OUTPUT_DIR, ...)
//   2. The main config file
//   3. Built-in defaults
//
// A missing main config file is not an error; the defaults apply.
//
// =============================================================================

package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/upnqr-eslog/internal/eslog"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "ESLOG"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory where decoded UPN QR payload files are placed.
	// Default: "./input"
	InputDir string `mapstructure:"input_dir" validate:"required"`

	// OutputDir is the directory where generated e-SLOG files are placed.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" validate:"required"`

	// InputArchiveDir receives payload files after successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `mapstructure:"input_archive_dir" validate:"required"`

	// OutputArchiveDir receives a copy of every generated document.
	// Default: "./output_archive"
	OutputArchiveDir string `mapstructure:"output_archive_dir" validate:"required"`

	// PartiesDir holds known-party YAML files. When it has none, the
	// built-in table is used.
	// Default: "./parties"
	PartiesDir string `mapstructure:"parties_dir"`

	// =========================================================================
	// INPUT / OUTPUT SETTINGS
	// =========================================================================

	// InputPattern is the glob matched against file names in InputDir.
	// Default: "*.txt"
	InputPattern string `mapstructure:"input_pattern" validate:"required"`

	// OutputNameFormat defines the format for output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {invoice}   - Invoice number, made safe for file names
	//   {original}  - Input file name without extension
	//
	// Default: "{invoice}_{uuid}.xml"
	OutputNameFormat string `mapstructure:"output_name_format" validate:"required"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the zap encoder: "console" or "json".
	// Default: "console"
	LogFormat string `mapstructure:"log_format" validate:"oneof=console json"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files to process concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" validate:"min=1"`

	// ArchiveProcessed moves converted inputs and copies outputs to the
	// archive directories.
	// Default: true
	ArchiveProcessed bool `mapstructure:"archive_processed"`

	// ArchiveTimestampSubdirs files archived copies under YYYY/MM/DD
	// subdirectories of the archive directories.
	// Default: false
	ArchiveTimestampSubdirs bool `mapstructure:"archive_timestamp_subdirs"`

	// SummaryWorkbook writes an XLSX summary of each batch to OutputDir.
	// Default: true
	SummaryWorkbook bool `mapstructure:"summary_workbook"`
}

// defaults are applied before the config file and environment are read.
var defaults = map[string]any{
	"input_dir":          "./input",
	"output_dir":         "./output",
	"input_archive_dir":  "./input_archive",
	"output_archive_dir": "./output_archive",
	"parties_dir":        "./parties",
	"input_pattern":      "*.txt",
	"output_name_format": "{invoice}_{uuid}.xml",
	"log_level":          "info",
	"log_format":         "console",
	"max_concurrency":    4,
	"archive_processed":  true,
	"summary_workbook":   true,

	"archive_timestamp_subdirs": false,
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - mustExist: When false a missing file means built-in defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if a required file is missing, the file cannot be parsed or
//     the result is invalid.
func LoadMainConfig(configPath string, mustExist bool) (*MainConfig, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if mustExist && !fileExists(configPath) {
		return nil, errors.Newf("config file %q does not exist", configPath)
	}

	if configPath != "" && fileExists(configPath) {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	}

	var config MainConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &config, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Validate checks field constraints.
func (c *MainConfig) Validate() error {
	return validator.New().Struct(c)
}

// =============================================================================
// PARTY CONFIGURATION STRUCTURE
// =============================================================================

// PartyConfig is one known-party file. A file lists one or more parties.
//
// Example:
//
//	parties:
//	  - name: NGEN
//	    name_contains: NGEN
//	    vat_id: SI24576239
//	    legal_id: "8209901000"
type PartyConfig struct {
	Parties []PartyEntry `yaml:"parties"`
}

// PartyEntry maps a seller name fragment to tax identifiers.
type PartyEntry struct {
	// Name is a label used in logs. Defaults to NameContains.
	Name string `yaml:"name"`

	// NameContains is matched case-insensitively against the seller name.
	NameContains string `yaml:"name_contains"`

	// VATID is the seller's VAT registration number, e.g. "SI24576239".
	VATID string `yaml:"vat_id"`

	// LegalID is the seller's company registration number.
	LegalID string `yaml:"legal_id"`
}

// LoadKnownParties reads every *.yaml and *.yml file in partiesDir, in file
// name order, and returns the combined table. A missing or empty directory
// yields eslog.DefaultKnownParties.
//
// PARAMETERS:
//   - partiesDir: The directory containing party files.
//
// RETURNS:
//   - The lookup table.
//   - An error if any file cannot be read or parsed, or an entry has no
//     name_contains.
func LoadKnownParties(partiesDir string) (eslog.KnownParties, error) {
	if partiesDir == "" {
		return eslog.DefaultKnownParties(), nil
	}

	// Find all YAML files in the parties directory.
	files, err := filepath.Glob(filepath.Join(partiesDir, "*.yaml"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list party files")
	}

	// Also check for .yml extension.
	ymlFiles, err := filepath.Glob(filepath.Join(partiesDir, "*.yml"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list party files")
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	if len(files) == 0 {
		return eslog.DefaultKnownParties(), nil
	}

	var parties eslog.KnownParties
	for _, file := range files {
		loaded, err := loadPartyConfig(file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", file)
		}
		parties = append(parties, loaded...)
	}

	return parties, nil
}

// loadPartyConfig loads a single party file.
func loadPartyConfig(filePath string) (eslog.KnownParties, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	var config PartyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse file")
	}

	parties := make(eslog.KnownParties, 0, len(config.Parties))
	for i, entry := range config.Parties {
		if strings.TrimSpace(entry.NameContains) == "" {
			return nil, errors.Newf("party %d has no name_contains", i+1)
		}
		if entry.Name == "" {
			entry.Name = entry.NameContains
		}

		parties = append(parties, eslog.KnownParty{
			Name:         entry.Name,
			NameContains: entry.NameContains,
			VATID:        entry.VATID,
			LegalID:      entry.LegalID,
		})
	}

	return parties, nil
}
