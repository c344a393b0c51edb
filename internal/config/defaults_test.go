package config

import (
	"net"
	"net/url"
	"strings"
	"testing"
	"time"
)

// TestTrackerDefaults pins the published tracker behavior
func TestTrackerDefaults(t *testing.T) {
	tests := []struct {
		name string
		got  any
		want any
	}{
		{name: "repo", got: DefaultRepo, want: "agntcy/docs"},
		{name: "batch size", got: DefaultBatchSize, want: 50},
		{name: "submit interval", got: DefaultSubmitInterval, want: 10 * time.Minute},
		{name: "issue label", got: DefaultIssueLabel, want: "visit-data"},
		{name: "automated label", got: AutomatedLabel, want: "automated"},
		{name: "buffer capacity", got: BufferCapacity, want: 200},
		{name: "hidden submit minimum", got: HiddenSubmitMinimum, want: 10},
		{name: "check period", got: CheckPeriod, want: 60 * time.Second},
		{name: "visits key", got: VisitsKey, want: "docs_visits"},
		{name: "last submit key", got: LastSubmitKey, want: "docs_last_submit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

// TestDefaultBaseURLMatchesServeAddr validates the harness targets the host address
func TestDefaultBaseURLMatchesServeAddr(t *testing.T) {
	u, err := url.Parse(DefaultBaseURL)
	if err != nil {
		t.Fatalf("DefaultBaseURL %q does not parse: %v", DefaultBaseURL, err)
	}
	if u.Host != DefaultServeAddr {
		t.Errorf("DefaultBaseURL host = %q, want %q", u.Host, DefaultServeAddr)
	}

	host, _, err := net.SplitHostPort(DefaultServeAddr)
	if err != nil {
		t.Fatalf("DefaultServeAddr %q is not host:port: %v", DefaultServeAddr, err)
	}
	if net.ParseIP(host) == nil {
		t.Errorf("DefaultServeAddr host %q is not an IP", host)
	}
}

// TestDefaultHarnessPaths validates the visited pages are absolute paths
func TestDefaultHarnessPaths(t *testing.T) {
	if len(DefaultHarnessPaths) != 4 {
		t.Fatalf("len(DefaultHarnessPaths) = %d, want 4", len(DefaultHarnessPaths))
	}
	for _, p := range DefaultHarnessPaths {
		if !strings.HasPrefix(p, "/") {
			t.Errorf("harness path %q does not start with /", p)
		}
	}
}
