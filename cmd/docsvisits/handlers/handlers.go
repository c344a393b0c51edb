// Package handlers implements the docsvisits command handlers.
//
//   - serve.go:   documentation host lifecycle
//   - harness.go: browser checks, with an in-process host when no target is given
//   - visits.go:  buffer inspection and clearing
//   - submit.go:  manual submission and effective configuration
//   - sink.go:    standalone issue sink
//
// Handlers have the cobra RunE signature, set up logging first, and leave
// presentation to the display package.
package handlers

import (
	"github.com/agntcy/docs-visits/cmd/docsvisits/config"
	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/storage"
)

// openStore opens the store selected by --store.
func openStore() (storage.Store, error) {
	logging.Debug("Opening store %s", config.Global.Store)
	return storage.Open(config.Global.Store)
}

func closeStore(store storage.Store) {
	if err := store.Close(); err != nil {
		logging.Error("Failed to close store: %v", err)
	}
}
