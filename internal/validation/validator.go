// =============================================================================
// UPN QR to e-SLOG Converter - Validation Engine
// =============================================================================
//
// This module checks a parsed UPN QR record against the published field
// limits of the UPN QR standard:
//   - Character length limits (counted in characters, not bytes)
//   - Data types (numeric, alphanumeric, flag, purpose code, date)
//   - Fields a usable invoice cannot do without
//
// VALIDATION STRATEGY:
//   Every finding is a warning. A payload that parses is always converted;
//   the findings are logged, counted and written to the error log so the
//   operator can follow up with the issuer.
//
// CUSTOMIZATION:
//   - Add or tighten limits in the FieldRules table
//   - Register extra per-field checks through ValidationOptions
//     (NewRecordValidator adds the known-seller check this way)
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ginjaninja78/upnqr-eslog/internal/eslog"
	"github.com/ginjaninja78/upnqr-eslog/internal/upnqr"
)

// SeverityWarning is the severity of every finding.
const SeverityWarning = "warning"

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is always SeverityWarning.
	Severity string

	// Field is the record field name (see upnqr.Field*).
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// Line is the 1-based payload line the field came from.
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Line %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Line,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// Errors contains all findings, in payload line order.
	Errors []*ValidationError

	// WarningCount is the number of findings.
	WarningCount int

	// FieldsValidated is the number of fields with a rule.
	FieldsValidated int
}

// =============================================================================
// FIELD RULES
// =============================================================================

// FieldRule describes the constraints on one record field. DataType is one
// of string, numeric, alphanumeric, flag, purpose_code or date(<layout>).
type FieldRule struct {
	Field     string
	Line      int
	MaxLength int
	DataType  string
	Required  bool
}

// FieldRules lists the UPN QR limits in payload line order.
var FieldRules = []FieldRule{
	{Field: upnqr.FieldPayerIBAN, Line: 2, MaxLength: 19, DataType: "alphanumeric"},
	{Field: upnqr.FieldDeposit, Line: 3, MaxLength: 1, DataType: "flag"},
	{Field: upnqr.FieldWithdrawal, Line: 4, MaxLength: 1, DataType: "flag"},
	{Field: upnqr.FieldPayerReference, Line: 5, MaxLength: 26},
	{Field: upnqr.FieldPayerName, Line: 6, MaxLength: 33},
	{Field: upnqr.FieldPayerStreet, Line: 7, MaxLength: 33},
	{Field: upnqr.FieldPayerCity, Line: 8, MaxLength: 33},
	{Field: upnqr.FieldAmountRaw, Line: 9, MaxLength: 11, DataType: "numeric", Required: true},
	{Field: upnqr.FieldPaymentDateRaw, Line: 10, MaxLength: 10, DataType: "date(02.01.2006)"},
	{Field: upnqr.FieldUrgent, Line: 11, MaxLength: 1, DataType: "flag"},
	{Field: upnqr.FieldPurposeCode, Line: 12, MaxLength: 4, DataType: "purpose_code"},
	{Field: upnqr.FieldPurpose, Line: 13, MaxLength: 42},
	{Field: upnqr.FieldDueDateRaw, Line: 14, MaxLength: 10, DataType: "date(02.01.2006)"},
	{Field: upnqr.FieldPayeeIBAN, Line: 15, MaxLength: 34, DataType: "alphanumeric", Required: true},
	{Field: upnqr.FieldPayeeReference, Line: 16, MaxLength: 26},
	{Field: upnqr.FieldPayeeName, Line: 17, MaxLength: 33, Required: true},
	{Field: upnqr.FieldPayeeStreet, Line: 18, MaxLength: 33},
	{Field: upnqr.FieldPayeeCity, Line: 19, MaxLength: 33},
	{Field: upnqr.FieldChecksum, Line: 20, MaxLength: 3, DataType: "numeric"},
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks records against a rule table.
type Validator struct {
	rules   []FieldRule
	options ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// CustomValidators run after the built-in rule for their field.
	// Key is the field name.
	CustomValidators map[string]CustomValidatorFunc
}

// CustomValidatorFunc returns a message when value is unacceptable.
// fields is the complete record as returned by upnqr.Record.Fields.
type CustomValidatorFunc func(value string, fields map[string]string) string

// NewValidator creates a Validator over FieldRules.
func NewValidator(options ValidationOptions) *Validator {
	return &Validator{
		rules:   FieldRules,
		options: options,
	}
}

// NewRecordValidator creates the Validator used for conversion: FieldRules
// plus a warning when the payee matches no known party.
//
// PARAMETERS:
//   - parties: The known-party table; nil means eslog.DefaultKnownParties.
//
// RETURNS:
//   - A Validator ready for ValidateRecord.
func NewRecordValidator(parties eslog.KnownParties) *Validator {
	return NewValidator(ValidationOptions{
		CustomValidators: map[string]CustomValidatorFunc{
			upnqr.FieldPayeeName: KnownSeller(parties),
		},
	})
}

// KnownSeller returns a check that flags a payee name with no entry in
// parties. An empty name is left to the required rule.
func KnownSeller(parties eslog.KnownParties) CustomValidatorFunc {
	if parties == nil {
		parties = eslog.DefaultKnownParties()
	}
	return func(value string, _ map[string]string) string {
		if value == "" {
			return ""
		}
		if _, ok := parties.Lookup(value); ok {
			return ""
		}
		return "No known party matches the payee, VAT segments will be omitted"
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateRecord validates every field with a rule.
//
// PARAMETERS:
//   - rec: a parsed record; nil yields no findings.
//
// RETURNS:
//   - The findings in payload line order, all warnings.
func (v *Validator) ValidateRecord(rec *upnqr.Record) *ValidationResult {
	result := &ValidationResult{
		Errors: make([]*ValidationError, 0),
	}
	if rec == nil {
		return result
	}

	fields := rec.Fields()
	for _, rule := range v.rules {
		value := fields[rule.Field]
		result.FieldsValidated++

		result.Errors = append(result.Errors, v.ValidateField(value, rule)...)

		if custom, ok := v.options.CustomValidators[rule.Field]; ok {
			if msg := custom(value, fields); msg != "" {
				result.Errors = append(result.Errors, newWarning(rule, value, "custom", msg))
			}
		}
	}

	result.WarningCount = len(result.Errors)
	return result
}

// ValidateField validates a single value against its rule.
func (v *Validator) ValidateField(value string, rule FieldRule) []*ValidationError {
	var errors []*ValidationError

	// =========================================================================
	// REQUIRED FIELD VALIDATION
	// =========================================================================

	if value == "" {
		if rule.Required {
			errors = append(errors, newWarning(rule, value, "required",
				fmt.Sprintf("Field '%s' is empty", rule.Field)))
		}
		return errors
	}

	// =========================================================================
	// MAX LENGTH VALIDATION
	// =========================================================================

	if n := utf8.RuneCountInString(value); rule.MaxLength > 0 && n > rule.MaxLength {
		errors = append(errors, newWarning(rule, value, "max_length",
			fmt.Sprintf("Value exceeds maximum length of %d characters (actual: %d)", rule.MaxLength, n)))
	}

	// =========================================================================
	// DATA TYPE VALIDATION
	// =========================================================================

	if msg := validateDataType(value, rule.DataType); msg != "" {
		errors = append(errors, newWarning(rule, value, "data_type", msg))
	}

	return errors
}

func newWarning(rule FieldRule, value, name, message string) *ValidationError {
	return &ValidationError{
		Severity: SeverityWarning,
		Field:    rule.Field,
		Value:    value,
		Rule:     name,
		Message:  message,
		Line:     rule.Line,
	}
}

// =============================================================================
// DATA TYPE VALIDATORS
// =============================================================================

// validateDataType validates a value against a data type.
//
// RETURNS:
//   - An error message if validation fails, empty string if valid.
func validateDataType(value, dataType string) string {
	switch {
	case dataType == "string" || dataType == "":
		return ""

	case dataType == "numeric":
		return validateNumeric(value)

	case dataType == "alphanumeric":
		return validateAlphanumeric(value)

	case dataType == "flag":
		return validateFlag(value)

	case dataType == "purpose_code":
		return validatePurposeCode(value)

	case strings.HasPrefix(dataType, "date"):
		return validateDate(value, dataType)

	default:
		// Unknown type, treat as string.
		return ""
	}
}

// validateNumeric accepts digits only; signs are not part of UPN QR numbers.
func validateNumeric(value string) string {
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Sprintf("Value '%s' is not a valid unsigned integer", value)
		}
	}
	return ""
}

func validateAlphanumeric(value string) string {
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Sprintf("Value '%s' contains non-alphanumeric characters", value)
		}
	}
	return ""
}

// validateFlag accepts the single flag character "X".
func validateFlag(value string) string {
	if value != "X" {
		return fmt.Sprintf("Value '%s' is not a valid flag (expected 'X' or empty)", value)
	}
	return ""
}

var purposeCodePattern = regexp.MustCompile(`^[A-Z]{4}$`)

func validatePurposeCode(value string) string {
	if !purposeCodePattern.MatchString(value) {
		return fmt.Sprintf("Value '%s' is not a four-letter purpose code", value)
	}
	return ""
}

// validateDate validates that a value is a date in the layout given in
// parentheses, e.g. "date(02.01.2006)".
func validateDate(value, dataType string) string {
	layout := extractParenthesesContent(dataType)
	if layout == "" {
		layout = "2006-01-02"
	}

	if _, err := time.Parse(layout, value); err != nil {
		return fmt.Sprintf("Value '%s' does not match date format '%s'", value, layout)
	}

	return ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// extractParenthesesContent extracts content between parentheses.
// Example: "date(02.01.2006)" -> "02.01.2006"
func extractParenthesesContent(s string) string {
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")

	if start != -1 && end != -1 && end > start {
		return s[start+1 : end]
	}

	return ""
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
