package validate

import (
	"testing"
)

// Test cases for ParseBindAddress function
func TestParseBindAddress(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectError  bool
		expectedIP   string
		expectedPort int
	}{
		{name: "default host address", input: "127.0.0.1:8000", expectedIP: "127.0.0.1", expectedPort: 8000},
		{name: "any address", input: "0.0.0.0:9000", expectedIP: "0.0.0.0", expectedPort: 9000},
		{name: "high port number", input: "10.0.0.1:65535", expectedIP: "10.0.0.1", expectedPort: 65535},
		{name: "empty address", input: "", expectError: true},
		{name: "missing port", input: "192.168.1.1", expectError: true},
		{name: "port zero", input: "127.0.0.1:0", expectError: true},
		{name: "port too high", input: "192.168.1.1:99999", expectError: true},
		{name: "port not a number", input: "192.168.1.1:abc", expectError: true},
		{name: "hostname instead of IP", input: "localhost:8000", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseBindAddress(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for input '%s', but got none", tt.input)
				}
				if result != nil {
					t.Errorf("Expected nil result when error occurs, got %+v", result)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for input '%s': %v", tt.input, err)
			}
			if result.Host != tt.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tt.expectedIP, result.Host)
			}
			if result.Port != tt.expectedPort {
				t.Errorf("Expected port %d, got %d", tt.expectedPort, result.Port)
			}
			if result.String() != tt.input {
				t.Errorf("Expected String() to return '%s', got '%s'", tt.input, result.String())
			}
		})
	}
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "local docs host", input: "http://127.0.0.1:8000"},
		{name: "github api", input: "https://api.github.com"},
		{name: "with path", input: "http://127.0.0.1:9000/sink"},
		{name: "empty", input: "", expectError: true},
		{name: "relative", input: "/docs", expectError: true},
		{name: "ftp scheme", input: "ftp://example.com", expectError: true},
		{name: "query string", input: "http://127.0.0.1:8000/?a=b", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBaseURL(tt.input)
			if tt.expectError && err == nil {
				t.Errorf("ParseBaseURL(%q) error = nil, want error", tt.input)
			}
			if !tt.expectError && err != nil {
				t.Errorf("ParseBaseURL(%q) error = %v", tt.input, err)
			}
		})
	}
}
