// =============================================================================
// UPN QR to e-SLOG Converter - Logger
// =============================================================================
//
// Thin wrapper around zap's SugaredLogger. The converter and the CLI log
// through *Logger, which also satisfies converter.Logger.
//
// A global logger (L) is initialized at package load so that scripts and
// tests that never call NewLogger still get output; everything else should
// receive a *Logger explicitly.
//
// =============================================================================

package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger to provide logging functionality.
type Logger struct {
	*zap.SugaredLogger
}

// L is the process-wide logger.
var L *Logger

func init() {
	L, _ = NewLogger("info", "console")
	if L == nil {
		L = NewNop()
	}
}

// NewLogger builds a logger for the given level ("debug", "info", "warn",
// "error") and format ("console" or "json"). Unknown levels fall back to info.
func NewLogger(level, format string) (*Logger, error) {
	var config zap.Config
	if strings.EqualFold(format, "json") {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// ParseLevel converts a textual level into a zapcore.Level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetGlobal replaces L. Call once at startup after the config is loaded.
func SetGlobal(l *Logger) {
	if l != nil {
		L = l
	}
}
