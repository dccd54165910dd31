// Copyright (c) 2025 sfkit authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors explains network failures, such as an unreachable webhook or
// warehouse endpoint, in terms a user can act on.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"sfkit/cli/internal/logging"

	"github.com/pterm/pterm"
)

// Category is a coarse classification of a network failure.
type Category int

const (
	Generic Category = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
)

// Classify inspects err and returns its category.
func Classify(err error) Category {
	if err == nil {
		return Generic
	}
	lower := strings.ToLower(err.Error())

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return Timeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || strings.Contains(lower, "no such host") {
		return DNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(lower, "connection refused") {
		return ConnectionRefused
	}
	for _, s := range []string{"tls", "x509", "certificate", "handshake"} {
		if strings.Contains(lower, s) {
			return TLS
		}
	}
	return Generic
}

// Describe returns the headline and checklist for err while performing action
// against host.
func Describe(err error, host, action string) (string, []string) {
	switch Classify(err) {
	case Timeout:
		return fmt.Sprintf("⏱️  %s timed out while %s", host, action), []string{
			"Slow or unstable network connection",
			"The endpoint is overloaded",
			"A firewall is silently dropping the connection",
		}
	case DNS:
		return fmt.Sprintf("🌐 Cannot resolve %s while %s", host, action), []string{
			"Check the URL or account identifier for typos",
			"Check DNS settings and VPN state",
		}
	case ConnectionRefused:
		return fmt.Sprintf("🚫 %s refused the connection while %s", host, action), []string{
			"The port is wrong or the service is down",
			"A firewall is blocking the connection",
		}
	case TLS:
		return fmt.Sprintf("🔒 Secure connection to %s failed while %s", host, action), []string{
			"A proxy is intercepting HTTPS traffic",
			"The system clock is incorrect",
			"The server certificate is not trusted",
		}
	}
	return fmt.Sprintf("❌ Cannot reach %s while %s", host, action), []string{
		"Check your internet connection",
		"Check that the URL is reachable from this network",
	}
}

// FormatNetworkError prints a user-friendly description of err and returns it
// wrapped for logging.
func FormatNetworkError(err error, rawURL, action string) error {
	if err == nil {
		return nil
	}
	headline, checks := Describe(err, ExtractHostFromURL(rawURL), action)
	pterm.Println(headline)
	pterm.Println()
	for _, c := range checks {
		pterm.Println("  • " + c)
	}
	pterm.Println()
	pterm.Debug.Printf("Technical details: %s\n", truncate(logging.Mask(err.Error()), 160))
	return fmt.Errorf("network error: %w", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Hostname()
}
