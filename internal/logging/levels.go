// Package logging level helpers.
//
// Level strings are validated here so the CLI can reject a bad --log-level
// before any logger is reconfigured.
package logging

import "fmt"

// ValidLogLevels is the canonical set of supported log levels. Level strings
// are uppercase.
var ValidLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// IsValidLogLevel checks if the provided log level string is supported.
func IsValidLogLevel(level string) bool {
	return ValidLogLevels[level]
}

// ValidateLogLevel returns an error for unsupported levels.
func ValidateLogLevel(level string) error {
	if !IsValidLogLevel(level) {
		return fmt.Errorf("invalid log level: %s", level)
	}
	return nil
}
