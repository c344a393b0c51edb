// Package tracker eligibility rules.
//
// A visit is recorded only when all of the following hold:
//   - the reader has not sent a do-not-track signal
//   - the host is not loopback or a *.localhost development name
//   - the user agent does not look automated (bot, crawler, spider, headless)
//
// The rules are pure functions of the page context so that the docsite, the
// harness and the tests evaluate them identically.
package tracker

import (
	"regexp"
	"strings"

	"github.com/agntcy/docs-visits/internal/visit"
)

// Matched case-insensitively anywhere in the user agent.
var automationAgent = regexp.MustCompile(`(?i)bot|crawler|spider|headless`)

var devHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"0.0.0.0":   true,
}

// IsDevHost reports whether host is a loopback or local development host.
func IsDevHost(host string) bool {
	host = strings.ToLower(strings.Trim(host, "[]"))
	return devHosts[host] || strings.HasSuffix(host, ".localhost")
}

// IsAutomation reports whether the user agent looks like a bot, crawler,
// spider or headless browser.
func IsAutomation(userAgent string) bool {
	return automationAgent.MatchString(userAgent)
}

// ShouldTrack decides whether a visit to p may be recorded. force bypasses
// the host and automation checks but never a do-not-track signal.
func ShouldTrack(p visit.Page, force bool) bool {
	if p.DoNotTrack {
		return false
	}
	if force {
		return true
	}
	return !IsDevHost(p.Host) && !IsAutomation(p.UserAgent)
}
