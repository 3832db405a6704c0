// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certtest issues throwaway certificates with chosen validity windows
// for tests of the probes, the expiry policy and the chain renderers.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"
)

// Options describes the certificate to issue.
type Options struct {
	CommonName string
	NotBefore  time.Time
	NotAfter   time.Time
	IsCA       bool
	// Parent signs the certificate. Nil means self-signed.
	Parent *Issued
	// Hosts are added as DNS or IP SANs.
	Hosts []string
}

// Issued is a certificate together with its private key.
type Issued struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// New issues a certificate, failing tb on any error.
func New(tb testing.TB, opts Options) *Issued {
	tb.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatalf("certtest: generate key: %v", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		tb.Fatalf("certtest: serial: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: opts.CommonName, Organization: []string{"tls-poke tests"}},
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  opts.IsCA,
	}
	if opts.IsCA {
		tmpl.KeyUsage |= x509.KeyUsageCertSign
	}
	for _, h := range opts.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	parent, signer := tmpl, key
	if opts.Parent != nil {
		parent, signer = opts.Parent.Cert, opts.Parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &key.PublicKey, signer)
	if err != nil {
		tb.Fatalf("certtest: create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		tb.Fatalf("certtest: parse certificate: %v", err)
	}

	return &Issued{Cert: cert, Key: key}
}

// Valid issues a self-signed CA certificate for hosts that is valid from
// an hour ago until notAfter.
func Valid(tb testing.TB, cn string, notAfter time.Time, hosts ...string) *Issued {
	tb.Helper()
	return New(tb, Options{
		CommonName: cn,
		NotBefore:  time.Now().Add(-time.Hour),
		NotAfter:   notAfter,
		IsCA:       true,
		Hosts:      hosts,
	})
}

// TLSCertificate returns a tls.Certificate presenting i followed by chain.
func (i *Issued) TLSCertificate(chain ...*Issued) tls.Certificate {
	raw := [][]byte{i.Cert.Raw}
	for _, c := range chain {
		raw = append(raw, c.Cert.Raw)
	}
	return tls.Certificate{Certificate: raw, PrivateKey: i.Key, Leaf: i.Cert}
}

// Pool returns a certificate pool holding the given certificates.
func Pool(issued ...*Issued) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, i := range issued {
		pool.AddCert(i.Cert)
	}
	return pool
}
