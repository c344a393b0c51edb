// Package version provides centralized version information for the
// docs-visits module. The tracker library and the docsvisits CLI ship
// together, so a single version covers both.
// All versions follow semantic versioning (semver) conventions.

package version

// Version holds the current docs-visits version.
// Format: major.minor.patch[-prerelease][+build]
const Version = "0.1.0-dev"

// UserAgent is the User-Agent sent with issue-creation requests.
const UserAgent = "docs-visits/" + Version
