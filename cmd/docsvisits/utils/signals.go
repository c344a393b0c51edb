// Package utils signal handling for long-running commands.
//
// serve and sink block in WaitForSignal; the harness derives its run context
// from SignalContext so an interrupt cancels the browser and the host
// cleanly.
package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agntcy/docs-visits/internal/logging"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
const ShutdownTimeout = 10 * time.Second

// WaitForSignal blocks until SIGINT or SIGTERM arrives or ctx is done.
func WaitForSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logging.Info("Received signal: %v", sig)
	case <-ctx.Done():
		logging.Info("Context cancelled")
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
