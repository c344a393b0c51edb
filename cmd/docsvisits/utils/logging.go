// Package utils provides helpers shared by the docsvisits command handlers.
//
// LOGGING MODES:
//   - One-shot commands (visits, submit, config, harness): errors only, so
//     tables, JSON and transcripts stay clean on stdout
//   - Services (serve, sink): normal logging at --log-level
//
// DEBUG=true in the environment switches either mode to full DEBUG output,
// which is where swallowed tracker failures are reported.
package utils

import (
	"os"

	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/internal/logging"
)

// SetupLogging configures logging for one-shot commands whose real output is
// a table, JSON or a transcript: only errors are shown unless DEBUG=true.
func SetupLogging() {
	if os.Getenv("DEBUG") == "true" {
		logging.RestoreOutput()
		logging.SetLevel("DEBUG")
		return
	}
	logging.SetLevel(config.Global.LogLevel)
	logging.SuppressOutput()
}

// SetupServiceLogging configures logging for long-running commands, which
// log at --log-level (DEBUG when DEBUG=true).
func SetupServiceLogging() {
	logging.RestoreOutput()
	if os.Getenv("DEBUG") == "true" {
		logging.SetLevel("DEBUG")
		return
	}
	logging.SetLevel(config.Global.LogLevel)
}
