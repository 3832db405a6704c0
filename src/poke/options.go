// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package poke

import (
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	x509chain "github.com/H0llyW00dzZ/tls-poke/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/expiry"
)

// DrainMode selects how the handshake probe reads the server's response.
type DrainMode int

const (
	// DrainAvailable reads only data that arrives within the drain window
	// and never waits past it. With a zero window only data that is already
	// there is consumed.
	DrainAvailable DrainMode = iota
	// DrainResponse reads until the server closes the connection or the
	// drain window elapses.
	DrainResponse
)

// DefaultResponseWindow bounds [DrainResponse] when no drain window is set.
const DefaultResponseWindow = 2 * time.Second

// String returns the flag form of m.
func (m DrainMode) String() string {
	switch m {
	case DrainAvailable:
		return "available"
	case DrainResponse:
		return "response"
	default:
		return fmt.Sprintf("DrainMode(%d)", int(m))
	}
}

// ParseDrainMode parses "available" or "response", case-insensitively.
func ParseDrainMode(s string) (DrainMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "available":
		return DrainAvailable, nil
	case "response":
		return DrainResponse, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDrainMode, s)
	}
}

// Options configures a [Poker].
type Options struct {
	// Timeout bounds each probe. Zero disables the bound and leaves the
	// platform's own connect and read behaviour in charge.
	Timeout time.Duration
	// Drain selects the handshake probe's read strategy.
	Drain DrainMode
	// DrainWindow is the grace period for reading the response.
	DrainWindow time.Duration
	// WarnMonths is the expiration warning window in calendar months.
	WarnMonths int
	// Location is the zone for calendar date comparisons. Nil means time.Local.
	Location *time.Location
	// Now returns the current instant. Nil means time.Now.
	Now func() time.Time
	// RootCAs overrides the platform roots for the handshake probe.
	RootCAs *x509.CertPool
	// Version is reported in the User-Agent of the inspection request.
	Version string
	// UserAgent replaces the generated User-Agent when not empty.
	UserAgent string
	// Parallel runs the two probes of a Run concurrently.
	Parallel bool
	// Retries is the number of extra attempts after a connection failure.
	// Verification failures are never retried.
	Retries int
	// Rate limits [Poker.RunAll] to this many targets per second. Zero
	// means no limit.
	Rate float64
}

// DefaultOptions returns the options used by the command-line tool when
// nothing else is configured.
func DefaultOptions() Options {
	return Options{
		Timeout:    x509chain.DefaultTimeout,
		Drain:      DrainAvailable,
		WarnMonths: expiry.DefaultWarnMonths,
		Version:    "dev",
	}
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) policy() expiry.Policy {
	return expiry.Policy{WarnMonths: o.WarnMonths, Location: o.Location}
}

func (o Options) httpConfig() *x509chain.HTTPConfig {
	cfg := x509chain.NewHTTPConfig(o.Version)
	cfg.Timeout = o.Timeout
	cfg.UserAgent = o.UserAgent
	return cfg
}

// drainWindow returns the effective grace period for the configured mode.
func (o Options) drainWindow() time.Duration {
	if o.Drain == DrainResponse && o.DrainWindow <= 0 {
		return DefaultResponseWindow
	}
	if o.DrainWindow < 0 {
		return 0
	}
	return o.DrainWindow
}
