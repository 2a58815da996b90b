package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLoggerLevelFiltering tests that events below the level are dropped
func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)
	l.SetNoColor(true)

	l.Debug().Msg("debug message")
	l.Info().Msg("info message")
	require.Empty(t, buf.String())

	l.Warn().Msg("warn message")
	require.Contains(t, buf.String(), "WARN warn message")
}

// TestLoggerMsgf tests formatted messages
func TestLoggerMsgf(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	l.SetNoColor(true)

	l.Info().Msgf("listening on %s", ":8080")
	require.Contains(t, buf.String(), "INFO listening on :8080")
}

// TestLoggerErr tests that attached errors are appended
func TestLoggerErr(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	l.SetNoColor(true)

	l.Error().Err(errors.New("boom")).Msg("request failed")
	out := buf.String()
	require.Contains(t, out, "ERROR request failed")
	require.Contains(t, out, "error=boom")
}

// TestLoggerSetLevel tests changing the level at runtime
func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, ErrorLevel)
	l.SetNoColor(true)
	require.Equal(t, ErrorLevel, l.GetLevel())

	l.Info().Msg("dropped")
	require.Empty(t, buf.String())

	l.SetLevel(DebugLevel)
	l.Debug().Msg("kept")
	require.Contains(t, buf.String(), "DEBUG kept")
}

// TestLoggerFatalExits tests that Fatal invokes the exit hook
func TestLoggerFatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	l.SetNoColor(true)

	code := -1
	l.exit = func(c int) { code = c }
	l.Fatal().Msg("going down")
	require.Equal(t, 1, code)
	require.Contains(t, buf.String(), "FATAL going down")
}

// TestLevelString tests the level names
func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", DebugLevel.String())
	require.Equal(t, "INFO", InfoLevel.String())
	require.Equal(t, "WARN", WarnLevel.String())
	require.Equal(t, "ERROR", ErrorLevel.String())
	require.Equal(t, "FATAL", FatalLevel.String())
	require.True(t, strings.HasPrefix(Level(42).String(), "LEVEL("))
}

// TestColorize tests color wrapping and the no-color path
func TestColorize(t *testing.T) {
	require.Equal(t, "INFO", colorize(InfoLevel, true))
	colored := colorize(ErrorLevel, false)
	require.Contains(t, colored, "ERROR")
	require.Contains(t, colored, colorRed)
	require.True(t, strings.HasSuffix(colored, colorReset))
}
