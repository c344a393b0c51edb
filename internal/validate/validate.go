// Package validate provides input validation for the docs-visits module on
// top of the go-playground/validator library.
//
// Besides the built-in tags, it registers the tags used by visit records and
// tracker configuration:
//
//   - isots:    ISO-8601 timestamp (RFC 3339), at most 30 characters
//   - isodate:  calendar date in YYYY-MM-DD form
//   - docpath:  URL path accepted by the downstream visit processor
//   - referrer: "direct" or a dotted domain name
//   - repo:     GitHub "owner/name" repository identifier
//
// RECORD LIMITS:
// The length limits mirror the issue processor that consumes submitted
// batches: paths up to 500 characters, referrers up to 200 and timestamps up
// to 30. A record outside these limits is dropped downstream, so the tracker
// refuses it at the door (PUT /_tracker/visits, issue body parsing).
//
// The package keeps a single validator instance. Tags are registered once in
// init and the instance is safe for concurrent use after that.
package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// Global validator instance with the custom tags registered
	validate *validator.Validate

	docPathPattern  = regexp.MustCompile(`^/[a-zA-Z0-9/_\-\.]*$`)
	referrerPattern = regexp.MustCompile(`^[a-zA-Z0-9\-\.]+\.[a-zA-Z]{2,}$`)
	repoPattern     = regexp.MustCompile(`^[A-Za-z0-9_.\-]+/[A-Za-z0-9_.\-]+$`)
)

const (
	maxPathLength      = 500
	maxReferrerLength  = 200
	maxTimestampLength = 30
)

func init() {
	validate = validator.New()
	mustRegister("isots", isTimestamp)
	mustRegister("isodate", isDate)
	mustRegister("docpath", isDocPath)
	mustRegister("referrer", isReferrer)
	mustRegister("repo", isRepo)
}

// mustRegister adapts a string predicate to a validator tag. Registration
// only fails on programmer error (empty tag), so it panics.
func mustRegister(tag string, fn func(string) bool) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

func isTimestamp(s string) bool {
	if s == "" || len(s) > maxTimestampLength {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

func isDate(s string) bool {
	if len(s) != len(time.DateOnly) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func isDocPath(s string) bool {
	if s == "" || len(s) > maxPathLength {
		return false
	}
	if strings.Contains(s, "..") || strings.Contains(s, "~") {
		return false
	}
	return docPathPattern.MatchString(s)
}

func isReferrer(s string) bool {
	if s == "" || len(s) > maxReferrerLength {
		return false
	}
	return s == "direct" || referrerPattern.MatchString(s)
}

func isRepo(s string) bool {
	return repoPattern.MatchString(s)
}

// ValidateField validates a single value against validation tags.
//
// Example: ValidateField("2025-01-02", "required,isodate")
func ValidateField(value any, tag string) error {
	return validate.Var(value, tag)
}

// ValidateStruct validates a struct against its `validate` tags.
//
// Returns validator.ValidationErrors for field failures. Handlers report the
// error text as is; it names the failing field and tag.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}
