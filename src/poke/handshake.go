// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package poke

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/H0llyW00dzZ/tls-poke/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/trust"
)

// sentinel is the byte written to provoke a response.
const sentinel byte = 0x01

// HandshakeReport is the detailed outcome of the handshake probe.
type HandshakeReport struct {
	OK bool
	// Drained holds the response bytes read after the sentinel write.
	Drained []byte
	Kind    FailureKind
	Err     error
}

// ProbeHandshake reports whether a verified TLS connection to t can be
// established, written to and drained.
func (p *Poker) ProbeHandshake(ctx context.Context, t Target) bool {
	return p.Handshake(ctx, t).OK
}

// Handshake is [Poker.ProbeHandshake] with the full report.
//
// The connection uses [trust.Standard] with the configured roots, so an
// untrusted chain or a hostname mismatch fails the probe. Every drained
// byte is logged at info level. Errors are logged and reported, never
// returned.
func (p *Poker) Handshake(ctx context.Context, t Target) *HandshakeReport {
	if err := t.validate(); err != nil {
		return p.handshakeFailed(t, FailureConfig, err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	dialer := &tls.Dialer{Config: trust.Standard(t.Host, p.opts.RootCAs)}
	var conn net.Conn
	err := p.retry(ctx, func() error {
		c, err := dialer.DialContext(ctx, "tcp", t.Address())
		if err != nil {
			return permanent(ctx, err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return p.handshakeFailed(t, FailureTransport, fmt.Errorf("%w: %w", ErrHandshake, err))
	}
	defer conn.Close()

	// Unblock pending I/O once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.Write([]byte{sentinel}); err != nil {
		return p.handshakeFailed(t, FailureTransport, fmt.Errorf("%w: write: %w", ErrHandshake, ctxErr(ctx, err)))
	}

	drained, err := p.drain(ctx, conn)
	if err != nil {
		return p.handshakeFailed(t, FailureTransport, fmt.Errorf("%w: read: %w", ErrHandshake, err))
	}

	return &HandshakeReport{OK: true, Drained: drained}
}

// drain reads the server's response according to the drain mode. A read
// deadline expiry or EOF ends the drain normally.
func (p *Poker) drain(ctx context.Context, conn net.Conn) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(p.opts.drainWindow())); err != nil {
		return nil, err
	}

	buf := gc.Default.Get()
	defer gc.Release(buf)

	chunk := make([]byte, 512)
	for {
		n, err := conn.Read(chunk)
		for _, b := range chunk[:n] {
			p.log.Info("received byte", "value", int(b))
		}
		_, _ = buf.Write(chunk[:n])

		switch {
		case err == nil:
			continue
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, io.EOF), errors.Is(err, os.ErrDeadlineExceeded):
			return append([]byte(nil), buf.Bytes()...), nil
		default:
			return nil, err
		}
	}
}

func (p *Poker) handshakeFailed(t Target, kind FailureKind, err error) *HandshakeReport {
	p.log.Error("trying to open socket and read output", "host", t.Host, "port", t.Port, "error", err)
	return &HandshakeReport{Kind: kind, Err: err}
}

// ctxErr prefers the context's error when ctx ended the operation.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
