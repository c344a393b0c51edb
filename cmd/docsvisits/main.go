// Package main is the docsvisits entry point.
//
// docsvisits hosts documentation pages with the visit tracker embedded,
// drives the browser test harness against such a host, and inspects or
// flushes visit buffers kept in a store. Commands are defined in the
// commands package, handlers in handlers, and flag state in config.
package main

import (
	"os"

	"github.com/agntcy/docs-visits/cmd/docsvisits/commands"
	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/cmd/docsvisits/handlers"
	configDefaults "github.com/agntcy/docs-visits/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd := commands.RootCmd

	// Set version and validation
	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	commands.SetupCommands()

	commands.SetupGlobalFlags(rootCmd, &config.Global.LogLevel, &config.Global.Output,
		&config.Global.Store, config.DefaultLogLevel, config.DefaultStore)

	setupTrackerFlags()

	commands.SetupServeFlags(&config.Serve.Addr, &config.Serve.DocsDir, config.DefaultServeAddr)
	commands.SetupHarnessFlags(commands.HarnessFlags{
		BaseURL: &config.Harness.BaseURL,
		Addr:    &config.Harness.Addr,
		Paths:   &config.Harness.Paths,
		Settle:  &config.Harness.Settle,
		Driver:  &config.Harness.Driver,
		Chrome:  &config.Harness.Chrome,
		SinkURL: &config.Harness.SinkURL,
		Timeout: &config.Harness.Timeout,
	}, config.DefaultServeAddr, configDefaults.DefaultHarnessPaths, config.DefaultSettle)
	commands.SetupSubmitFlags(&config.Submit.DryRun)
	commands.SetupSinkFlags(&config.Sink.Addr, config.DefaultSinkAddr)

	setupCommandHandlers()
}

// setupTrackerFlags adds the tracker flags to every command that builds a
// tracker configuration
func setupTrackerFlags() {
	flags := commands.TrackerFlags{
		Repo:           &config.Tracker.Repo,
		Label:          &config.Tracker.Label,
		APIURL:         &config.Tracker.APIURL,
		BatchSize:      &config.Tracker.BatchSize,
		SubmitInterval: &config.Tracker.SubmitInterval,
		Timeout:        &config.Tracker.Timeout,
		ForceTracking:  &config.Tracker.ForceTracking,
	}
	defaults := commands.TrackerDefaults{
		Repo:           configDefaults.DefaultRepo,
		Label:          configDefaults.DefaultIssueLabel,
		APIURL:         configDefaults.DefaultAPIBaseURL,
		BatchSize:      configDefaults.DefaultBatchSize,
		SubmitInterval: configDefaults.DefaultSubmitInterval,
		Timeout:        configDefaults.DefaultRequestTimeout,
	}

	submitCmd, configCmd := commands.GetSubmitCommands()
	for _, cmd := range []*cobra.Command{commands.GetServeCommand(), submitCmd, configCmd} {
		commands.SetupTrackerFlags(cmd, flags, defaults)
	}
}

// setupCommandHandlers assigns PreRunE and RunE functions to commands
func setupCommandHandlers() {
	serveCmd := commands.GetServeCommand()
	harnessCmd := commands.GetHarnessCommand()
	visitsLsCmd, visitsClearCmd := commands.GetVisitsCommands()
	submitCmd, configCmd := commands.GetSubmitCommands()
	sinkCmd := commands.GetSinkCommand()

	serveCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return config.ValidateServeFlags()
	}
	harnessCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return config.ValidateHarnessFlags()
	}
	trackerPreRun := func(cmd *cobra.Command, args []string) error {
		return config.ValidateTrackerFlags()
	}
	submitCmd.PreRunE = trackerPreRun
	configCmd.PreRunE = trackerPreRun
	sinkCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return config.ValidateSinkFlags()
	}

	serveCmd.RunE = handlers.HandleServe
	harnessCmd.RunE = handlers.HandleHarness
	visitsLsCmd.RunE = handlers.HandleVisitsList
	visitsClearCmd.RunE = handlers.HandleVisitsClear
	submitCmd.RunE = handlers.HandleSubmit
	configCmd.RunE = handlers.HandleConfig
	sinkCmd.RunE = handlers.HandleSink
}

// main is the main entry point
func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
