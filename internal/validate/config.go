// Package validate provides configuration validation utilities for the
// docs-visits components.
//
// This file implements the validation patterns shared by the tracker, docsite
// and CLI config layers so that each of them reports bad input the same way.
// All functions go through the go-playground/validator instance registered in
// validate.go.
//
// VALIDATION UTILITIES:
//   - String validation: required, non-empty configuration values
//   - Timeout validation: positive durations for requests and intervals
//   - Repository validation: GitHub "owner/name" identifiers
//
// Callers wrap the returned errors with the flag or field they came from.
package validate

import (
	"fmt"
	"time"
)

// ValidateRequiredString validates that a string field is not empty.
// Uses the validator library for consistent error handling across config
// validation.
//
// Used for the issue label and similar tracker settings that end up verbatim
// in the submitted payload, where an empty value would produce an issue the
// downstream processor cannot route.
func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidatePositiveTimeout validates that a duration is positive (> 0).
//
// Applied to the submit interval, the request timeout and the harness run
// timeout. A zero request timeout would leave a submission waiting forever
// inside the tracker lock, blocking every later page event.
func ValidatePositiveTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// ValidateRepo validates a GitHub "owner/name" repository identifier.
//
// The repository is interpolated into the issues endpoint path, so anything
// other than exactly one slash between two non-empty segments is rejected
// before a request URL is ever built.
func ValidateRepo(repo string) error {
	if err := ValidateField(repo, "required,repo"); err != nil {
		return fmt.Errorf("invalid repository %q: expected owner/name", repo)
	}
	return nil
}
