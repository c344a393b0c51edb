// Package handlers provides command handler functions for the docsvisits
// serve command.
//
// This file runs the documentation host as a long-lived service: it opens the
// --store backend, registers Go and process collectors next to the tracker
// metrics, starts the host and blocks until SIGINT or SIGTERM.
//
// SHUTDOWN ORDER:
//   - Stop accepting HTTP requests (bounded by utils.ShutdownTimeout)
//   - Drain the tracker event loop
//   - Close the store
package handlers

import (
	"context"
	"fmt"

	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/cmd/docsvisits/utils"
	"github.com/agntcy/docs-visits/internal/docsite"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/validate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// HandleServe runs the documentation host until SIGINT or SIGTERM.
//
// The tracker configuration comes from the shared tracker flags, so a host
// started with --api-url pointing at `docsvisits sink` submits to the local
// sink instead of GitHub. Force tracking is announced at WARN level because
// it records loopback and automated traffic.
func HandleServe(cmd *cobra.Command, args []string) error {
	utils.SetupServiceLogging()

	netAddr, err := validate.ParseBindAddress(config.Serve.Addr)
	if err != nil {
		return fmt.Errorf("invalid --addr: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	// Process-level metrics next to the tracker's own
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cfg := docsite.DefaultConfig()
	cfg.BindAddr = netAddr.Host
	cfg.BindPort = netAddr.Port
	cfg.DocsDir = config.Serve.DocsDir
	cfg.Tracker = config.TrackerConfig()
	cfg.Store = store
	cfg.Registry = registry

	server, err := docsite.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create documentation host: %w", err)
	}
	if err := server.Start(); err != nil {
		return err
	}

	logging.Info("Tracking visits for %s (batch %d, interval %s, store %s)",
		cfg.Tracker.Repo, cfg.Tracker.BatchSize, cfg.Tracker.GetSubmitInterval(), config.Global.Store)
	if cfg.Tracker.ForceTracking {
		logging.Warn("Force tracking enabled: loopback hosts and automated browsers are recorded")
	}
	logging.Info("Host running... Press Ctrl+C to shutdown")

	utils.WaitForSignal(cmd.Context())

	ctx, cancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down documentation host: %v", err)
	}

	logging.Success("Documentation host shutdown completed")
	return nil
}
