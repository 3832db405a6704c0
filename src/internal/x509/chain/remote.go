// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/H0llyW00dzZ/tls-poke/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/trust"
)

// maxBodyDrain caps how much of the inspection response body is read before closing.
const maxBodyDrain = 64 << 10

// ErrNoCertificates indicates that the response carried no peer certificates.
var ErrNoCertificates = errors.New("x509chain: no certificates received from server")

// Retrieval is the outcome of an inspection request.
type Retrieval struct {
	// Chain holds the peer certificates, leaf first.
	Chain *Chain
	// StatusCode is the HTTP status of the response. It is informational only.
	StatusCode int
}

// InspectionURL returns https://host:port/ for the target.
func InspectionURL(hostname string, port int) string {
	u := url.URL{Scheme: "https", Host: net.JoinHostPort(hostname, strconv.Itoa(port)), Path: "/"}
	return u.String()
}

// FetchRemoteChain issues an HTTPS GET to the target's root path and returns
// the certificate chain presented during the handshake together with the
// response status.
//
// The request uses [trust.Inspection], so expired, untrusted or mismatched
// certificates are still returned. The transport is private to this call:
// no other connection observes the bypass, and it is torn down before
// FetchRemoteChain returns.
func FetchRemoteChain(ctx context.Context, hostname string, port int, cfg *HTTPConfig) (*Retrieval, error) {
	if cfg == nil {
		cfg = NewHTTPConfig("dev")
	}

	transport := &http.Transport{
		TLSClientConfig:   trust.Inspection(hostname),
		DisableKeepAlives: true,
	}
	defer transport.CloseIdleConnections()

	target := InspectionURL(hostname, port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", cfg.GetUserAgent())

	resp, err := cfg.client(transport).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", hostname, port, err)
	}
	defer resp.Body.Close()

	// Read a bounded part of the body so the server sees a complete exchange.
	// The chain is already known at this point, so read errors are not fatal.
	buf := gc.Default.Get()
	_, _ = buf.ReadFrom(io.LimitReader(resp.Body, maxBodyDrain))
	gc.Release(buf)

	if resp.TLS == nil || len(resp.TLS.PeerCertificates) == 0 {
		return nil, ErrNoCertificates
	}

	return &Retrieval{
		Chain:      New(resp.TLS.PeerCertificates),
		StatusCode: resp.StatusCode,
	}, nil
}
