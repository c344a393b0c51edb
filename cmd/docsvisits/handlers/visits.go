// Package handlers provides command handler functions for inspecting the
// visit buffer.
//
// This file reads and clears the buffer of the --store backend directly,
// without a running host. With a shared backend (redis, sqlite) this shows
// exactly what a running host has buffered; the in-memory backend always
// starts empty.
package handlers

import (
	"fmt"

	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/cmd/docsvisits/display"
	"github.com/agntcy/docs-visits/cmd/docsvisits/utils"
	"github.com/agntcy/docs-visits/internal/buffer"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/spf13/cobra"
)

// HandleVisitsList shows the buffered visits of --store together with the
// buffer capacity and the time of the last successful submission. Output
// honours -o table|json.
func HandleVisitsList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	buf := buffer.New(store)
	visits, err := buf.Load()
	if err != nil {
		return err
	}
	lastSubmit, err := buf.LastSubmit()
	if err != nil {
		return err
	}

	display.DisplayVisits(visits, buf.Capacity(), lastSubmit)
	logging.Success("Read %d buffered visits from %s", len(visits), config.Global.Store)
	return nil
}

// HandleVisitsClear removes the visit buffer of --store. The last-submit
// timestamp is kept, so the interval threshold is unaffected.
func HandleVisitsClear(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(store)

	buf := buffer.New(store)
	visits, err := buf.Load()
	if err != nil {
		return err
	}
	if err := buf.Clear(); err != nil {
		return err
	}

	fmt.Fprintf(display.Out, "Cleared %d visits\n", len(visits))
	return nil
}
