package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		t.Run(format, func(t *testing.T) {
			l, err := NewLogger("debug", format)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
		})
	}
}

func TestSetGlobal(t *testing.T) {
	prev := L
	t.Cleanup(func() { L = prev })

	nop := NewNop()
	SetGlobal(nop)
	assert.Same(t, nop, L)

	SetGlobal(nil)
	assert.Same(t, nop, L)
}
