// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package poke probes a remote TLS endpoint.
//
// A run consists of two independent probes against the same [Target]:
//
//   - The handshake probe opens a TLS connection with normal chain and
//     hostname verification, writes a single byte and drains whatever the
//     server sends back.
//   - The certificate evaluator issues an HTTPS GET with an accept-all trust
//     policy, retrieves the presented chain and checks every certificate for
//     its validity window and an expiration warning window, stopping at the
//     first failing certificate.
//
// The combined result is true only when both probes succeed.
//
// Probes never panic or return errors across their boundary. Failures are
// logged and reported as false, with details in [HandshakeReport] and
// [CertificateReport].
//
// Trust configuration is built per call, so the two probes may run
// concurrently (see [Options.Parallel]).
//
// Example:
//
//	p := poke.New(poke.DefaultOptions(), logger.NewCLILogger())
//	res := p.Run(ctx, poke.NewTarget("example.com", "443", log))
//	if !res.OK() {
//		os.Exit(2)
//	}
package poke
