// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package poke

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/H0llyW00dzZ/tls-poke/src/logger"
)

var (
	// ErrEmptyHost indicates a target without a host name.
	ErrEmptyHost = errors.New("poke: empty host")
	// ErrInvalidPort indicates a target port outside 1..65535.
	ErrInvalidPort = errors.New("poke: invalid port")
	// ErrInvalidDrainMode indicates an unknown drain mode name.
	ErrInvalidDrainMode = errors.New("poke: invalid drain mode")
	// ErrHandshake wraps connect, handshake, write and read failures of the handshake probe.
	ErrHandshake = errors.New("poke: handshake probe failed")
	// ErrRetrieval wraps failures to retrieve the certificate chain.
	ErrRetrieval = errors.New("poke: certificate retrieval failed")
	// ErrCertificateValidity indicates a certificate outside its validity window.
	ErrCertificateValidity = errors.New("poke: certificate not within validity window")
	// ErrExpiringSoon indicates a certificate inside the expiration warning window.
	ErrExpiringSoon = errors.New("poke: certificate expiring soon")
)

// FailureKind classifies why a probe returned false.
type FailureKind int

const (
	// FailureNone means the probe succeeded.
	FailureNone FailureKind = iota
	// FailureConfig means the probe could not be set up, e.g. an invalid target.
	FailureConfig
	// FailureTransport covers connect, handshake and I/O failures.
	FailureTransport
	// FailureTemporal means a certificate was expired or not yet valid.
	FailureTemporal
	// FailureExpiring means a certificate is inside the warning window.
	FailureExpiring
)

// String returns a short label for k.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureConfig:
		return "config"
	case FailureTransport:
		return "transport"
	case FailureTemporal:
		return "temporal"
	case FailureExpiring:
		return "expiring"
	default:
		return "unknown"
	}
}

// Result is the combined outcome of both probes against one target.
type Result struct {
	Target       Target
	Handshake    *HandshakeReport
	Certificates *CertificateReport
}

// OK reports whether both probes succeeded.
func (r *Result) OK() bool {
	return r != nil &&
		r.Handshake != nil && r.Handshake.OK &&
		r.Certificates != nil && r.Certificates.OK
}

// Kind returns the failure kind of the first failing probe, in run order.
func (r *Result) Kind() FailureKind {
	if r.Handshake != nil && !r.Handshake.OK {
		return r.Handshake.Kind
	}
	if r.Certificates != nil && !r.Certificates.OK {
		return r.Certificates.Kind
	}
	return FailureNone
}

// Poker runs probes with a fixed set of options.
//
// A Poker holds no per-run state and is safe for concurrent use.
type Poker struct {
	opts Options
	log  logger.Logger
}

// New creates a Poker. A nil log discards all output.
func New(opts Options, log logger.Logger) *Poker {
	if log == nil {
		log = logger.NewJSONLogger(nil, true)
	}
	return &Poker{opts: opts, log: log}
}

// Options returns the options p was created with.
func (p *Poker) Options() Options { return p.opts }

// withTimeout applies the configured probe timeout to ctx.
func (p *Poker) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.opts.Timeout)
}

// Run executes the handshake probe and the certificate evaluator against t
// and logs the combined result. Both probes always run, even when the
// first one fails.
func (p *Poker) Run(ctx context.Context, t Target) *Result {
	res := &Result{Target: t}

	if p.opts.Parallel {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			res.Handshake = p.Handshake(ctx, t)
		}()
		go func() {
			defer wg.Done()
			res.Certificates = p.Certificates(ctx, t)
		}()
		wg.Wait()
	} else {
		res.Handshake = p.Handshake(ctx, t)
		res.Certificates = p.Certificates(ctx, t)
	}

	p.log.Info("SSL test final result", "host", t.Host, "port", t.Port, "result", res.OK())
	return res
}

// RunAll runs every target in order. Targets not started before ctx is
// done are omitted from the returned slice.
//
// With Options.Rate set, runs are paced to at most that many targets per
// second.
func (p *Poker) RunAll(ctx context.Context, targets []Target) []*Result {
	var limiter *rate.Limiter
	if p.opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(p.opts.Rate), 1)
	}

	results := make([]*Result, 0, len(targets))
	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		results = append(results, p.Run(ctx, t))
	}
	return results
}
