// =============================================================================
// UPN QR to e-SLOG Converter - UPN QR Payload Parser
// =============================================================================
//
// Turns decoded QR text into a Record. Parsing either yields a complete
// Record or nothing: there are no partial records.
//
// FAILURE MODES:
//   - ErrNotUPNQR     : fewer than 20 lines, or the first line is not "UPNQR".
//                       Callers treat this as "not a UPN QR code".
//   - ErrInvalidField : a line could not be converted (only the amount is
//                       strict). The failure is logged before returning.
//
// Malformed dates are never a failure; the raw text is kept.
//
// =============================================================================

package upnqr

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ginjaninja78/upnqr-eslog/internal/logger"
)

var (
	// ErrNotUPNQR marks input that is not a UPN QR payload at all.
	ErrNotUPNQR = errors.New("not a UPN QR payload")

	// ErrInvalidField marks a UPN QR payload with an unconvertible field.
	ErrInvalidField = errors.New("invalid UPN QR field")
)

// Parser parses UPN QR payloads and reports conversion failures to its logger.
type Parser struct {
	log *logger.Logger
}

// NewParser returns a Parser that logs through log. A nil log uses logger.L.
func NewParser(log *logger.Logger) *Parser {
	return &Parser{log: log}
}

// Parse parses raw with a parser bound to the global logger.
func Parse(raw string) (*Record, error) {
	return NewParser(nil).Parse(raw)
}

// Parse converts raw payload text into a Record.
//
// PARAMETERS:
//   - raw: the text decoded from the QR symbol.
//
// RETURNS:
//   - The parsed Record, or nil.
//   - An error marked with ErrNotUPNQR or ErrInvalidField when raw is rejected.
func (p *Parser) Parse(raw string) (*Record, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	if len(lines) < MinLines {
		return nil, errors.Wrapf(ErrNotUPNQR, "expected at least %d lines, got %d", MinLines, len(lines))
	}
	if tag := strings.TrimSpace(lines[0]); tag != FormatTag {
		return nil, errors.Wrapf(ErrNotUPNQR, "format tag is %q", tag)
	}

	record := &Record{}
	for _, f := range layout {
		if f.index >= len(lines) {
			err := errors.Mark(errors.Newf("line %d (%s) is missing", f.index+1, f.name), ErrInvalidField)
			p.logger().Warnf("Error parsing UPN QR data: %v", err)
			return nil, err
		}

		if err := f.set(record, strings.TrimSpace(lines[f.index])); err != nil {
			err = errors.Mark(errors.Wrapf(err, "line %d (%s)", f.index+1, f.name), ErrInvalidField)
			p.logger().Warnf("Error parsing UPN QR data: %v", err)
			return nil, err
		}
	}

	if number, ok := InvoiceNumberFromPurpose(record.Purpose); ok {
		record.InvoiceNumber = number
	} else {
		record.InvoiceNumber = record.PayeeReference
	}

	return record, nil
}

func (p *Parser) logger() *logger.Logger {
	if p.log != nil {
		return p.log
	}
	return logger.L
}
