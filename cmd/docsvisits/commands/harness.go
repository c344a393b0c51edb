package commands

import (
	"time"

	"github.com/spf13/cobra"
)

// Harness command
var harnessCmd = &cobra.Command{
	Use:   "harness",
	Short: "Run end-to-end tracker checks in a headless browser",
	Long: `Run the tracker checks in headless Chrome: tracker present, config
readable, visits stored for every page, data valid, persisted across reload,
payload well formed, clear working and submissions clearing or keeping the
buffer.

Without --base-url the documentation host and an issue sink run in-process.
The command exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	Example: `  # In-process host with headless Chrome
  docsvisits harness

  # External host, Chrome binary chosen explicitly
  docsvisits harness --base-url=http://127.0.0.1:8000 --chrome=/usr/bin/chromium

  # External host sending issues to a standalone sink
  docsvisits harness --base-url=http://127.0.0.1:8000 --sink-url=http://127.0.0.1:8081

  # No browser available
  docsvisits harness --driver=http`,
	// RunE will be set by the main package that imports this
}

// HarnessFlags binds the harness flags.
type HarnessFlags struct {
	BaseURL *string
	Addr    *string
	Paths   *[]string
	Settle  *time.Duration
	Driver  *string
	Chrome  *string
	SinkURL *string
	Timeout *time.Duration
}

// SetupHarnessFlags configures the harness flags
func SetupHarnessFlags(f HarnessFlags, defaultAddr string, defaultPaths []string, defaultSettle time.Duration) {
	harnessCmd.Flags().StringVar(f.BaseURL, "base-url", "",
		"Base URL of an external documentation host (default: host in-process)")
	harnessCmd.Flags().StringVar(f.Addr, "addr", defaultAddr,
		"Address of the in-process documentation host")
	harnessCmd.Flags().StringSliceVar(f.Paths, "path", defaultPaths,
		"Pages to visit (repeatable)")
	harnessCmd.Flags().DurationVar(f.Settle, "settle", defaultSettle,
		"Extra wait after network idle on each page")
	harnessCmd.Flags().StringVar(f.Driver, "driver", "chrome",
		"Browser driver: chrome, http")
	harnessCmd.Flags().StringVar(f.Chrome, "chrome", "",
		"Chrome binary (default: found on PATH)")
	harnessCmd.Flags().StringVar(f.SinkURL, "sink-url", "",
		"Issue sink used by the external host, enables the submission check")
	harnessCmd.Flags().DurationVar(f.Timeout, "timeout", 2*time.Minute,
		"Timeout for the whole run")
}

// GetHarnessCommand returns the harness command for handler assignment
func GetHarnessCommand() *cobra.Command {
	return harnessCmd
}
