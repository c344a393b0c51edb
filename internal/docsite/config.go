// Package docsite hosts documentation pages with the visit tracker embedded.
//
// The host plays the part of the browser page for the tracker: every HTML
// page it serves loads a bridge script that reports page lifecycle events
// back to the host and exposes the tracker's public surface as
// window.docsVisitTracker. One Server owns one Tracker, which stands for one
// page origin and its key-value store.
package docsite

import (
	"fmt"
	"os"

	"github.com/agntcy/docs-visits/internal/issues"
	"github.com/agntcy/docs-visits/internal/storage"
	"github.com/agntcy/docs-visits/internal/tracker"
	"github.com/agntcy/docs-visits/internal/validate"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultPort is the documentation host's default port.
	DefaultPort = 8000
)

// Config holds everything needed to run the documentation host.
type Config struct {
	BindAddr string // HTTP bind address (e.g. "127.0.0.1")
	BindPort int    // HTTP bind port
	DocsDir  string // Built documentation to serve; empty serves the bundled pages

	Tracker   *tracker.Config  // Tracker settings; nil uses tracker.DefaultConfig()
	Store     storage.Store    // Origin store backing the tracker
	Submitter issues.Submitter // Optional issue submitter override

	// Registry receives the tracker metrics and backs /metrics. nil creates
	// a private registry.
	Registry *prometheus.Registry
}

// DefaultConfig returns a loopback host serving the bundled pages from an
// in-memory store.
func DefaultConfig() *Config {
	return &Config{
		BindAddr: "127.0.0.1",
		BindPort: DefaultPort,
		Tracker:  tracker.DefaultConfig(),
		Store:    storage.NewMemoryStore(),
	}
}

// Validate checks the host configuration.
func (c *Config) Validate() error {
	if err := validate.ValidateField(c.BindAddr, "required,ip"); err != nil {
		return fmt.Errorf("invalid bind address: %w", err)
	}
	// Port 0 lets the OS pick, used by tests and the harness.
	if err := validate.ValidateField(c.BindPort, "min=0,max=65535"); err != nil {
		return fmt.Errorf("invalid bind port: %w", err)
	}
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}
	if c.DocsDir != "" {
		info, err := os.Stat(c.DocsDir)
		if err != nil {
			return fmt.Errorf("docs directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("docs directory %s is not a directory", c.DocsDir)
		}
	}
	if c.Tracker != nil {
		if err := c.Tracker.Validate(); err != nil {
			return err
		}
	}
	return nil
}
