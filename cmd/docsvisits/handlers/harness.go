// Package handlers provides command handler functions for the browser
// harness.
//
// This file assembles a harness run: the host under test, the issue sink,
// the browser driver and the runner.
//
// HOST SELECTION:
//   - No --base-url: start a docsite and an issue sink in-process
//   - --base-url with --sink-url: drive an external host, control its sink over HTTP
//   - --base-url alone: drive an external host, skip the submission checks
//
// The whole run is bounded by --timeout and cancelled on SIGINT or SIGTERM.
package handlers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/cmd/docsvisits/display"
	"github.com/agntcy/docs-visits/cmd/docsvisits/utils"
	"github.com/agntcy/docs-visits/internal/docsite"
	"github.com/agntcy/docs-visits/internal/harness"
	"github.com/agntcy/docs-visits/internal/issuesink"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/validate"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// Timeout for sink control requests and for each HTTP driver request
const sinkRequestTimeout = 10 * time.Second

// HandleHarness runs the browser checks and fails when any check fails.
//
// The transcript goes to display.Out as the run progresses. A fatal error
// (host unreachable, browser crash) aborts the run with the error chain;
// failed checks are counted and reported as one error at the end.
func HandleHarness(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	ctx, cancel := context.WithTimeout(cmd.Context(), config.Harness.Timeout)
	defer cancel()
	ctx, stop := utils.SignalContext(ctx)
	defer stop()

	baseURL := config.Harness.BaseURL
	var sink harness.SinkControl
	if baseURL == "" {
		host, localSink, shutdown, err := startLocalHost()
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = host.URL()
		sink = localSink
	} else if config.Harness.SinkURL != "" {
		sink = harness.NewRemoteSink(config.Harness.SinkURL, sinkRequestTimeout)
	}

	// Console lines can arrive before the runner exists.
	var runner atomic.Pointer[harness.Runner]
	console := func(line string) {
		if r := runner.Load(); r != nil {
			r.Console()(line)
		}
	}

	browser, err := newBrowser(ctx, console)
	if err != nil {
		return err
	}
	defer browser.Close()

	runner.Store(harness.NewRunner(browser, harness.Options{
		BaseURL: baseURL,
		Paths:   config.Harness.Paths,
		Settle:  config.Harness.Settle,
		Sink:    sink,
		Out:     display.Out,
	}))

	report, err := runner.Load().Run(ctx)
	if err != nil {
		return fmt.Errorf("harness aborted: %w", err)
	}
	if !report.OK() {
		return fmt.Errorf("%d of %d checks failed", report.Failed, report.Passed+report.Failed)
	}
	return nil
}

// newBrowser returns the driver chosen by --driver. Chrome is the default;
// the http driver runs the same checks without a browser.
func newBrowser(ctx context.Context, console func(string)) (harness.Browser, error) {
	switch config.Harness.Driver {
	case "http":
		return harness.NewHTTPBrowser(sinkRequestTimeout), nil
	default:
		browser, err := harness.NewChromeBrowser(ctx, harness.ChromeOptions{
			ExecPath: config.Harness.Chrome,
			Console:  console,
		})
		if err != nil {
			return nil, err
		}
		return browser, nil
	}
}

// startLocalHost runs the documentation host and an issue sink in-process.
// The host's periodic submit check is disabled so injected visits stay put
// until the harness submits them itself.
func startLocalHost() (*docsite.Server, *issuesink.Sink, func(), error) {
	netAddr, err := validate.ParseBindAddress(config.Harness.Addr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid --addr: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	sink := issuesink.New()
	if err := sink.Start("127.0.0.1:0"); err != nil {
		closeStore(store)
		return nil, nil, nil, err
	}

	cfg := docsite.DefaultConfig()
	cfg.BindAddr = netAddr.Host
	cfg.BindPort = netAddr.Port
	cfg.Store = store
	cfg.Tracker.APIBaseURL = sink.URL()
	cfg.Tracker.CheckPeriodMs = 0

	shutdownSink := func() {
		ctx, cancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
		defer cancel()
		if err := sink.Shutdown(ctx); err != nil {
			logging.Error("Error shutting down issue sink: %v", err)
		}
	}

	host, err := docsite.NewServer(cfg)
	if err == nil {
		err = host.Start()
	}
	if err != nil {
		shutdownSink()
		closeStore(store)
		return nil, nil, nil, err
	}

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
		defer cancel()
		if err := host.Shutdown(ctx); err != nil {
			logging.Error("Error shutting down documentation host: %v", err)
		}
		shutdownSink()
		closeStore(store)
	}
	return host, sink, shutdown, nil
}
