// Package logging provides structured, colorful logging for the docs-visits
// tracker, its documentation host, the test harness and the CLI.
//
// Two package-level charmbracelet/log loggers follow Unix conventions:
// INFO/SUCCESS go to stdout, WARN/ERROR/DEBUG go to stderr. A log file
// (SetOutput) overrides the split.
//
// LOGGING FEATURES:
//   - Color-coded levels: DEBUG (purple), INFO (blue), WARN (yellow), ERROR (red), SUCCESS (green)
//   - Flexible output: configurable levels and output suppression for CLI tools
//   - Library integration: LevelWriter for gin, RestyLogger for the issues client
//   - Standard redirection: routes standard library logs through the same loggers
//
// TRACKER DEBUG CHANNEL:
// Debug is the tracker's only error channel. Storage and submission failures
// are reported there and nowhere else, so a documentation page never shows a
// tracking error unless the host runs at DEBUG level.
//
// Used by the docsite server, the issue sink, the harness runner and every
// CLI command, so all of them share one format and color scheme.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	stdlog "log"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	// Logger for INFO/SUCCESS messages (stdout by Unix convention)
	stdoutLogger = newLogger(os.Stdout)

	// Logger for WARN/ERROR/DEBUG messages
	stderrLogger = newLogger(os.Stderr)

	// Track if logging has been explicitly configured by the CLI
	cliConfigured = false

	currentStdoutOutput io.Writer = os.Stdout
	currentStderrOutput io.Writer = os.Stderr

	// A single log file overrides the stdout/stderr separation
	usingLogFile  = false
	logFileHandle io.Writer
)

// newLogger creates a timestamped logger with the package styles applied.
// Every logger in the package is built here so that a redirected output keeps
// the same timestamp format and colors.
func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	l.SetStyles(setupCustomStyles())
	return l
}

// setupCustomStyles creates the color scheme for log levels. Colors are
// chosen to stay readable on both light and dark terminals.
func setupCustomStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(lipgloss.Color("#7F6DFF"))

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("#42E7FF"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("#FFE763"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(lipgloss.Color("#FF4473"))

	return styles
}

// getStdoutLoggerOutput returns the current output destination for the
// stdout logger. Used by Success to respect log file redirection.
func getStdoutLoggerOutput() io.Writer {
	if usingLogFile {
		return logFileHandle
	}
	return currentStdoutOutput
}

// Info logs informational messages about tracker and host activity.
// Uses stdout following Unix conventions (or the log file when set).
func Info(format string, v ...any) {
	stdoutLogger.Info(fmt.Sprintf(format, v...))
}

// Warn logs non-critical issues requiring attention, such as a dropped
// page event. Uses stderr following Unix conventions.
func Warn(format string, v ...any) {
	stderrLogger.Warn(fmt.Sprintf(format, v...))
}

// Error logs failures that stop an operation.
func Error(format string, v ...any) {
	stderrLogger.Error(fmt.Sprintf(format, v...))
}

// Debug logs detailed debugging information. Swallowed tracker failures
// (storage errors, rejected submissions) land here and only here.
func Debug(format string, v ...any) {
	stderrLogger.Debug(fmt.Sprintf(format, v...))
}

// Success logs successful operations in green using INFO level with custom
// styling, so it respects INFO level filtering.
func Success(format string, v ...any) {
	if stdoutLogger.GetLevel() > log.InfoLevel {
		return
	}

	styles := setupCustomStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("SUCCESS").
		Foreground(lipgloss.Color("#60F281"))

	tempLogger := log.NewWithOptions(getStdoutLoggerOutput(), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	tempLogger.SetStyles(styles)
	tempLogger.Info(fmt.Sprintf(format, v...))
}

// SetLevel configures the minimum level (DEBUG, INFO, WARN, ERROR) for both
// loggers. Unknown strings fall back to INFO.
//
// The CLI validates --log-level before calling this, so the fallback only
// applies to programmatic callers. Raising the level to DEBUG is how an
// operator sees why a batch was not submitted.
func SetLevel(level string) {
	var logLevel log.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		logLevel = log.DebugLevel
	case "INFO":
		logLevel = log.InfoLevel
	case "WARN":
		logLevel = log.WarnLevel
	case "ERROR":
		logLevel = log.ErrorLevel
	default:
		logLevel = log.InfoLevel
	}

	stdoutLogger.SetLevel(logLevel)
	stderrLogger.SetLevel(logLevel)
}

// IsDebugEnabled reports whether DEBUG messages are currently emitted.
func IsDebugEnabled() bool {
	return stderrLogger.GetLevel() <= log.DebugLevel
}

// SetOutput sends all logs to w, overriding the stdout/stderr separation.
// A nil writer suppresses all output. When never called, Unix conventions
// apply (INFO/SUCCESS to stdout, everything else to stderr).
//
// The current level carries over to the new loggers, so redirecting output
// after SetLevel keeps the configured verbosity.
func SetOutput(w io.Writer) {
	if w == nil {
		stdoutLogger.SetLevel(log.FatalLevel + 1)
		stderrLogger.SetLevel(log.FatalLevel + 1)
		usingLogFile = false
		return
	}

	level := stderrLogger.GetLevel()
	usingLogFile = true
	logFileHandle = w

	stdoutLogger = newLogger(w)
	stderrLogger = newLogger(w)
	stdoutLogger.SetLevel(level)
	stderrLogger.SetLevel(level)
}

// SuppressOutput keeps only ERROR logs visible. Used by CLI commands whose
// real output is a table or a transcript.
func SuppressOutput() {
	stdoutLogger.SetLevel(log.ErrorLevel)
	stderrLogger.SetLevel(log.ErrorLevel)
	cliConfigured = true
}

// RestoreOutput restores Unix conventions at INFO level and above.
func RestoreOutput() {
	usingLogFile = false
	currentStdoutOutput = os.Stdout
	currentStderrOutput = os.Stderr

	stdoutLogger = newLogger(currentStdoutOutput)
	stderrLogger = newLogger(currentStderrOutput)
	stdoutLogger.SetLevel(log.InfoLevel)
	stderrLogger.SetLevel(log.InfoLevel)
	cliConfigured = true
}

// IsConfiguredByCLI returns true if logging has been explicitly configured by the CLI.
func IsConfiguredByCLI() bool {
	return cliConfigured
}

// ============================================================================
// LIBRARY LOG INTEGRATION - Route gin, resty and stdlib logs
// ============================================================================

// LevelWriter forwards each written line to a log level with an optional
// prefix. Used for libraries that only accept an io.Writer (gin).
type LevelWriter struct {
	level  string
	prefix string
}

// NewLevelWriter creates a writer that logs each line at the specified level
// with prefix. Valid levels: DEBUG, INFO, WARN, ERROR.
func NewLevelWriter(level, prefix string) io.Writer {
	return &LevelWriter{level: strings.ToUpper(level), prefix: prefix}
}

// Write implements io.Writer by splitting input into lines and logging each.
func (w *LevelWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		msg := line
		if w.prefix != "" {
			msg = w.prefix + ": " + line
		}
		switch w.level {
		case "DEBUG":
			Debug("%s", msg)
		case "WARN":
			Warn("%s", msg)
		case "ERROR":
			Error("%s", msg)
		default:
			Info("%s", msg)
		}
	}
	return len(p), nil
}

// RedirectStandardLog routes Go's standard library logger through w.
// Passing nil discards standard log output.
func RedirectStandardLog(w io.Writer) {
	if w == nil {
		stdlog.SetOutput(io.Discard)
		return
	}
	stdlog.SetOutput(w)
}

// RestyLogger satisfies resty.Logger and routes client logs to DEBUG.
//
// Every resty message, including its own error and warning output, is
// demoted to DEBUG. A failed issue submission is an expected outcome for the
// tracker (offline reader, rate limit, missing token) and must not reach the
// host's visible logs.
type RestyLogger struct{}

// Errorf routes error messages to DEBUG.
func (RestyLogger) Errorf(format string, v ...any) {
	Debug(format, v...)
}

// Warnf routes warning messages to DEBUG.
func (RestyLogger) Warnf(format string, v ...any) {
	Debug(format, v...)
}

// Debugf routes debug messages through structured logging.
func (RestyLogger) Debugf(format string, v ...any) {
	Debug(format, v...)
}
