// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trust

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
)

// ErrNoPeerCertificates is returned by the inspection verifier when the server
// completed a handshake without presenting any certificate.
var ErrNoPeerCertificates = errors.New("trust: server presented no certificates")

// ChainPolicy decides whether a presented certificate chain is acceptable.
type ChainPolicy interface {
	AcceptChain(chain []*x509.Certificate) error
}

// HostnamePolicy decides whether the leaf certificate is acceptable for host.
type HostnamePolicy interface {
	AcceptHostname(host string, leaf *x509.Certificate) error
}

// acceptAnyChain accepts every chain.
type acceptAnyChain struct{}

func (acceptAnyChain) AcceptChain([]*x509.Certificate) error { return nil }

// acceptAnyHostname accepts every hostname.
type acceptAnyHostname struct{}

func (acceptAnyHostname) AcceptHostname(string, *x509.Certificate) error { return nil }

var (
	// AcceptAnyChain is the trust-bypass chain policy used for inspection.
	AcceptAnyChain ChainPolicy = acceptAnyChain{}
	// AcceptAnyHostname is the trust-bypass hostname policy used for inspection.
	AcceptAnyHostname HostnamePolicy = acceptAnyHostname{}
)

// Standard returns a client configuration that applies normal chain and
// hostname verification against roots. A nil roots pool means the
// platform's system roots.
func Standard(host string, roots *x509.CertPool) *tls.Config {
	return &tls.Config{
		ServerName: host,
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
	}
}

// Inspection returns a client configuration that retrieves whatever chain the
// server presents. Built-in verification is switched off and replaced by
// chain and hostname, which for inspection are [AcceptAnyChain] and
// [AcceptAnyHostname].
func Inspection(host string) *tls.Config {
	return InspectionWith(host, AcceptAnyChain, AcceptAnyHostname)
}

// InspectionWith is [Inspection] with explicit policies.
func InspectionWith(host string, chain ChainPolicy, hostname HostnamePolicy) *tls.Config {
	return &tls.Config{
		ServerName: host,
		// Verification is delegated to VerifyConnection below.
		InsecureSkipVerify: true,
		VerifyConnection: func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) == 0 {
				return ErrNoPeerCertificates
			}
			if err := chain.AcceptChain(cs.PeerCertificates); err != nil {
				return err
			}
			return hostname.AcceptHostname(host, cs.PeerCertificates[0])
		},
	}
}
