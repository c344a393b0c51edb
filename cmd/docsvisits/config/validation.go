// Package config handles flag validation for the docsvisits CLI.
//
// Validation runs in cobra's PreRunE hooks, before any store is opened or
// any port is bound. It covers:
//   - Global flags: log level (normalized to upper case), output format, store DSN
//   - Tracker flags: API base URL and the resulting tracker.Config bounds
//   - Network flags: bind addresses for serve, sink and the in-process harness host
//   - Harness flags: target URLs, driver, visited paths, settle and run timeouts
//
// Errors name the offending flag so that a bad command line fails with a
// message the operator can act on, instead of a later bind or dial error.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/agntcy/docs-visits/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	Global.LogLevel = strings.ToUpper(Global.LogLevel)
	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}
	if err := ValidateOutputFormat(); err != nil {
		return err
	}
	return ValidateStoreDSN(Global.Store)
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[Global.Output] {
		logging.Error("Invalid output format '%s' - valid formats are: table, json", Global.Output)
		return fmt.Errorf("invalid output format - valid: table, json")
	}
	return nil
}

// ValidateStoreDSN validates the --store flag without opening the store.
// Supported schemes are memory, sqlite (with a file path), redis and rediss;
// reachability is only checked when a command opens the store.
func ValidateStoreDSN(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("invalid store DSN %q: %w", dsn, err)
	}
	switch u.Scheme {
	case "memory", "redis", "rediss":
		return nil
	case "sqlite":
		if u.Host == "" && u.Path == "" {
			return fmt.Errorf("invalid store DSN %q: sqlite needs a file path", dsn)
		}
		return nil
	default:
		return fmt.Errorf("invalid store DSN %q: scheme must be memory, sqlite or redis", dsn)
	}
}

// ValidateTrackerFlags validates the tracker flags. The base URL is parsed
// first so that a malformed --api-url is reported by name rather than as a
// tracker config tag failure.
func ValidateTrackerFlags() error {
	if _, err := validate.ParseBaseURL(Tracker.APIURL); err != nil {
		return fmt.Errorf("invalid --api-url: %w", err)
	}
	if err := TrackerConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateServeFlags validates the serve command flags
func ValidateServeFlags() error {
	if _, err := validate.ParseBindAddress(Serve.Addr); err != nil {
		return fmt.Errorf("invalid --addr: %w", err)
	}
	return ValidateTrackerFlags()
}

// ValidateHarnessFlags validates the harness command flags.
//
// --addr only matters for the in-process host, so it is checked when
// --base-url is empty. --sink-url requires --base-url: the in-process host
// always brings its own sink.
func ValidateHarnessFlags() error {
	if Harness.BaseURL != "" {
		if _, err := validate.ParseBaseURL(Harness.BaseURL); err != nil {
			return fmt.Errorf("invalid --base-url: %w", err)
		}
	} else if _, err := validate.ParseBindAddress(Harness.Addr); err != nil {
		return fmt.Errorf("invalid --addr: %w", err)
	}
	if Harness.SinkURL != "" {
		if Harness.BaseURL == "" {
			return fmt.Errorf("--sink-url only applies with --base-url")
		}
		if _, err := validate.ParseBaseURL(Harness.SinkURL); err != nil {
			return fmt.Errorf("invalid --sink-url: %w", err)
		}
	}

	switch Harness.Driver {
	case "chrome", "http":
	default:
		return fmt.Errorf("invalid --driver %q - valid: chrome, http", Harness.Driver)
	}

	if len(Harness.Paths) == 0 {
		return fmt.Errorf("at least one --path is required")
	}
	for _, p := range Harness.Paths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("invalid --path %q: must start with /", p)
		}
	}
	if Harness.Settle < 0 {
		return fmt.Errorf("--settle must not be negative")
	}
	return validate.ValidatePositiveTimeout(Harness.Timeout, "--timeout")
}

// ValidateSinkFlags validates the sink command flags
func ValidateSinkFlags() error {
	if _, err := validate.ParseBindAddress(Sink.Addr); err != nil {
		return fmt.Errorf("invalid --addr: %w", err)
	}
	return nil
}
