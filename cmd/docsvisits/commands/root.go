// Package commands defines the docsvisits command tree.
//
//   - serve:   documentation host with the visit tracker embedded
//   - harness: end-to-end browser checks against a host
//   - visits:  inspect or clear a store's visit buffer (ls, clear)
//   - submit:  flush a store's buffer to the issue endpoint
//   - config:  print the effective tracker configuration
//   - sink:    local stand-in for the issue endpoint
//
// Commands carry no RunE here; the main package wires handlers in.
package commands

import (
	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "docsvisits",
	Short: "Documentation visit tracker, host and browser test harness",
	Long: `docsvisits records documentation page visits into a small local buffer
and files them as GitHub issues in batches.

It hosts documentation pages with the tracker embedded, runs headless
browser checks against such a host, and inspects or flushes visit buffers
kept in memory, SQLite or Redis stores.`,
	SilenceUsage: true,
	Example: `  # Serve the bundled pages on 127.0.0.1:8000
  docsvisits serve

  # Serve built docs with a durable buffer
  docsvisits serve --docs-dir=./site --store=sqlite:///var/lib/docs-visits/visits.db

  # Run the browser checks against an in-process host
  docsvisits harness

  # Run them against an external host
  docsvisits harness --base-url=http://127.0.0.1:8000

  # Show the buffered visits of a store
  docsvisits visits ls --store=redis://127.0.0.1:6379/0

  # Output in JSON format
  docsvisits -o json config`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(harnessCmd)
	RootCmd.AddCommand(visitsCmd)
	RootCmd.AddCommand(submitCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(sinkCmd)

	visitsCmd.AddCommand(visitsLsCmd)
	visitsCmd.AddCommand(visitsClearCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, logLevelPtr, outputPtr, storePtr *string,
	defaultLogLevel, defaultStore string) {
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", defaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json")
	rootCmd.PersistentFlags().StringVar(storePtr, "store", defaultStore,
		"Visit store DSN: memory://, sqlite:///path/to/file.db, redis://host:port/db")
}
