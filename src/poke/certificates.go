// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package poke

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	x509chain "github.com/H0llyW00dzZ/tls-poke/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/expiry"
)

// CertificateReport is the detailed outcome of the certificate evaluator.
type CertificateReport struct {
	OK bool
	// StatusCode is the HTTP status of the inspection request. It never
	// affects OK.
	StatusCode int
	// Chain holds the retrieved certificates, leaf first.
	Chain []*x509.Certificate
	// Verdicts holds one entry per evaluated certificate, up to and
	// including the first failing one.
	Verdicts []expiry.Verdict
	// Failed points at the failing verdict, if any.
	Failed *expiry.Verdict
	Kind   FailureKind
	Err    error
}

// Statuses returns one label per chain position for the chain renderers.
// Positions after a failing certificate are left empty.
func (r *CertificateReport) Statuses() []string {
	statuses := make([]string, len(r.Chain))
	for _, v := range r.Verdicts {
		if v.Index < len(statuses) {
			statuses[v.Index] = v.Outcome.String()
		}
	}
	return statuses
}

// EvaluateCertificates reports whether every certificate presented by t is
// within its validity window and outside the expiration warning window.
func (p *Poker) EvaluateCertificates(ctx context.Context, t Target) bool {
	return p.Certificates(ctx, t).OK
}

// Certificates is [Poker.EvaluateCertificates] with the full report.
//
// Retrieval bypasses chain and hostname verification so that expired or
// untrusted chains can still be evaluated. Certificates are checked in
// chain order and evaluation stops at the first one that fails.
func (p *Poker) Certificates(ctx context.Context, t Target) *CertificateReport {
	if err := t.validate(); err != nil {
		return p.certificatesFailed(t, &CertificateReport{Kind: FailureConfig, Err: err})
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var got *x509chain.Retrieval
	err := p.retry(ctx, func() error {
		r, err := x509chain.FetchRemoteChain(ctx, t.Host, t.Port, p.opts.httpConfig())
		if errors.Is(err, x509chain.ErrNoCertificates) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return permanent(ctx, err)
		}
		got = r
		return nil
	})
	if err != nil {
		return p.certificatesFailed(t, &CertificateReport{
			Kind: FailureTransport,
			Err:  fmt.Errorf("%w: %w", ErrRetrieval, err),
		})
	}

	p.log.Info("Response Code", "status", got.StatusCode)

	report := &CertificateReport{StatusCode: got.StatusCode, Chain: got.Chain.Certs}
	return p.evaluate(t, report)
}

// evaluate applies the expiry policy to report.Chain and completes report.
func (p *Poker) evaluate(t Target, report *CertificateReport) *CertificateReport {
	policy := p.opts.policy()

	verdicts, failed, err := policy.EvaluateChain(report.Chain, p.opts.now())
	report.Verdicts, report.Failed = verdicts, failed
	if err != nil {
		report.Kind = FailureTransport
		report.Err = fmt.Errorf("%w: %w", ErrRetrieval, err)
		return p.certificatesFailed(t, report)
	}

	if failed == nil {
		report.OK = true
		return report
	}

	cert := failed.Certificate
	switch {
	case failed.Outcome.Temporal():
		report.Kind = FailureTemporal
		report.Err = fmt.Errorf("%w: %s is %s (valid %s to %s)", ErrCertificateValidity,
			failed.Identity(), failed.Outcome, cert.NotBefore.UTC(), cert.NotAfter.UTC())
		return p.certificatesFailed(t, report)
	default:
		report.Kind = FailureExpiring
		report.Err = fmt.Errorf("%w: %s expires %s", ErrExpiringSoon, failed.Identity(), cert.NotAfter.UTC())
		p.log.Warn(fmt.Sprintf("Certificate will expire within %d months", policyMonths(policy)),
			"host", t.Host,
			"port", t.Port,
			"certificate", failed.Identity(),
			"serial", cert.SerialNumber,
			"notAfter", cert.NotAfter,
		)
		return report
	}
}

// EvaluateBundle applies the expiry policy to certs without any network
// access. source names the bundle in log entries, e.g. a file path.
func (p *Poker) EvaluateBundle(source string, certs []*x509.Certificate) *CertificateReport {
	return p.evaluate(Target{Host: source}, &CertificateReport{Chain: certs})
}

func (p *Poker) certificatesFailed(t Target, report *CertificateReport) *CertificateReport {
	p.log.Error("trying to check expiration date", "host", t.Host, "port", t.Port, "error", report.Err)
	return report
}

func policyMonths(p expiry.Policy) int {
	if p.WarnMonths <= 0 {
		return expiry.DefaultWarnMonths
	}
	return p.WarnMonths
}
