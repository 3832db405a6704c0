// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package poke

import (
	"context"
	"crypto/tls"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// retry runs op once plus up to Options.Retries more times with exponential
// backoff. Errors wrapped with [backoff.Permanent] end the loop at once.
func (p *Poker) retry(ctx context.Context, op func() error) error {
	if p.opts.Retries <= 0 {
		return op()
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.opts.Retries)),
		ctx,
	)
	return backoff.Retry(op, bo)
}

// permanent marks errors that another attempt cannot fix.
func permanent(ctx context.Context, err error) error {
	var (
		verifyErr *tls.CertificateVerificationError
		alertErr  tls.AlertError
	)
	if ctx.Err() != nil || errors.As(err, &verifyErr) || errors.As(err, &alertErr) {
		return backoff.Permanent(err)
	}
	return err
}
