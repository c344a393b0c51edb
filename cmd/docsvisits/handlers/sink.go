// Package handlers provides command handler functions for the standalone
// issue sink.
//
// The sink stands in for the GitHub issues API during local runs. Point a
// host at it with `serve --api-url` and the harness at it with
// `harness --sink-url`.
package handlers

import (
	"context"

	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/cmd/docsvisits/utils"
	"github.com/agntcy/docs-visits/internal/issuesink"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// HandleSink runs a standalone issue sink until SIGINT or SIGTERM.
func HandleSink(cmd *cobra.Command, args []string) error {
	utils.SetupServiceLogging()
	gin.SetMode(gin.ReleaseMode)

	sink := issuesink.New()
	if err := sink.Start(config.Sink.Addr); err != nil {
		return err
	}
	logging.Info("Use --api-url=%s with serve or submit", sink.URL())

	utils.WaitForSignal(cmd.Context())

	ctx, cancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer cancel()
	if err := sink.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down issue sink: %v", err)
	}

	logging.Success("Issue sink stopped after %d issues", len(sink.Issues()))
	return nil
}
