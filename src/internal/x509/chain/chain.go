// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"fmt"
	"net/http"
	"sync"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-poke/src/internal/x509/certs"
)

// DefaultTimeout bounds a retrieval when no other deadline applies.
const DefaultTimeout = 30 * time.Second

// HTTPConfig holds HTTP client configuration for chain retrieval.
type HTTPConfig struct {
	Timeout   time.Duration // Request timeout, 0 disables it
	Version   string        // Application version for User-Agent
	UserAgent string        // Custom User-Agent string, if empty will be constructed from Version
}

// NewHTTPConfig creates a new HTTP configuration with [DefaultTimeout] and
// the provided application version.
func NewHTTPConfig(version string) *HTTPConfig {
	return &HTTPConfig{
		Timeout: DefaultTimeout,
		Version: version,
	}
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("TLS-Poke/%s (+https://github.com/H0llyW00dzZ/tls-poke)", c.Version)
}

// client returns a one-shot client around transport.
func (c *HTTPConfig) client(transport *http.Transport) *http.Client {
	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
		// The chain of the requested host is wanted, not of a redirect target.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Chain manages [X.509] certificates in the order the server presented them.
//
// [X.509]: https://grokipedia.com/page/X.509
type Chain struct {
	mu    sync.RWMutex
	Certs []*x509.Certificate
	*x509certs.Certificate
}

// New creates a new Chain holding certs, leaf first.
func New(certs []*x509.Certificate) *Chain {
	return &Chain{
		Certs:       append([]*x509.Certificate(nil), certs...),
		Certificate: x509certs.New(),
	}
}

// Len returns the number of certificates in the chain.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) Len() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.Certs)
}

// Leaf returns the first certificate, or nil for an empty chain.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) Leaf() *x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if len(ch.Certs) == 0 {
		return nil
	}
	return ch.Certs[0]
}

// IsSelfSigned checks if a certificate is self-signed.
func (ch *Chain) IsSelfSigned(cert *x509.Certificate) bool {
	return cert.CheckSignatureFrom(cert) == nil
}

// EncodePEM returns the whole chain as concatenated PEM blocks.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) EncodePEM() []byte {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.EncodeMultiplePEM(ch.Certs)
}

// EncodeDER returns the whole chain as concatenated DER certificates.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) EncodeDER() []byte {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.EncodeMultipleDER(ch.Certs)
}

// getCertificateRole determines the role of a certificate in the chain.
func (ch *Chain) getCertificateRole(index int) string {
	total := len(ch.Certs)
	switch {
	case total == 1 && ch.IsSelfSigned(ch.Certs[0]):
		return "Self-Signed Certificate"
	case index == 0:
		return "End-Entity (Server/Leaf) Certificate"
	case index == total-1 && ch.IsSelfSigned(ch.Certs[index]):
		return "Root CA Certificate"
	default:
		return "Intermediate CA Certificate"
	}
}
