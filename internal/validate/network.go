// Package validate network utilities.
//
// This file validates the addresses the docsite, the issue sink and the
// harness listen on or talk to.
//
// ADDRESS RULES:
//   - Bind addresses are "host:port" with an IP literal host and an explicit port
//   - Base URLs are absolute http(s) URLs with a host and no query or fragment
//
// Both parsers return the parsed value so callers never re-parse a string
// that has already been validated.
package validate

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// NetworkAddress is a validated "host:port" listen address. The struct tags
// are checked by ParseBindAddress through the shared validator instance.
type NetworkAddress struct {
	Host string `validate:"required,ip"`
	Port int    `validate:"required,min=1,max=65535"`
}

// String returns the address in "host:port" form.
func (na NetworkAddress) String() string {
	return net.JoinHostPort(na.Host, strconv.Itoa(na.Port))
}

// ParseBindAddress parses and validates a "host:port" listen address. The
// host must be an IP literal and the port must be explicit (not 0), since the
// harness and bridge script address the host by a fixed base URL.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{Host: host, Port: port}
	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ParseBaseURL validates an absolute http(s) URL without query or fragment
// and returns it parsed.
//
// Used for the tracker's API base URL, the harness --base-url and the sink
// --sink-url. Request paths are appended to the returned URL, so a query or
// fragment on the base would end up in the middle of every request target.
func ParseBaseURL(raw string) (*url.URL, error) {
	if err := ValidateField(raw, "required,url"); err != nil {
		return nil, fmt.Errorf("invalid base URL '%s': %w", raw, err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL '%s': %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL '%s' must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL '%s' has no host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("base URL '%s' must not carry a query or fragment", raw)
	}

	return u, nil
}
