// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package poke_test

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/certtest"
	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/expiry"
	"github.com/H0llyW00dzZ/tls-poke/src/logger"
	"github.com/H0llyW00dzZ/tls-poke/src/poke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const version = "1.3.3.7-testing"

// recorder captures JSON log entries.
type recorder struct {
	buf bytes.Buffer
	*logger.JSONLogger
}

func newRecorder() *recorder {
	r := &recorder{}
	r.JSONLogger = logger.NewJSONLogger(&r.buf, false)
	return r
}

func (r *recorder) entries(t *testing.T) []map[string]any {
	t.Helper()

	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(r.buf.Bytes()))
	for sc.Scan() {
		var e map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	return out
}

func (r *recorder) find(t *testing.T, message string) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, e := range r.entries(t) {
		if e["message"] == message {
			out = append(out, e)
		}
	}
	return out
}

type pki struct {
	root, intermediate *certtest.Issued
}

func newPKI(t *testing.T, intermediateNotAfter time.Time) pki {
	t.Helper()

	now := time.Now()
	root := certtest.New(t, certtest.Options{
		CommonName: "Poke Root CA", NotBefore: now.AddDate(-5, 0, 0), NotAfter: now.AddDate(10, 0, 0), IsCA: true,
	})
	intermediate := certtest.New(t, certtest.Options{
		CommonName: "Poke Intermediate CA", NotBefore: now.AddDate(-1, 0, 0), NotAfter: intermediateNotAfter,
		IsCA: true, Parent: root,
	})
	return pki{root: root, intermediate: intermediate}
}

func (k pki) leaf(t *testing.T, notBefore, notAfter time.Time) *certtest.Issued {
	t.Helper()
	return certtest.New(t, certtest.Options{
		CommonName: "127.0.0.1", NotBefore: notBefore, NotAfter: notAfter,
		Parent: k.intermediate, Hosts: []string{"127.0.0.1"},
	})
}

func (k pki) serve(t *testing.T, leaf *certtest.Issued, status int) poke.Target {
	t.Helper()

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("hello"))
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{leaf.TLSCertificate(k.intermediate, k.root)}}
	srv.StartTLS()
	t.Cleanup(srv.Close)

	addr := srv.Listener.Addr().(*net.TCPAddr)
	return poke.Target{Host: addr.IP.String(), Port: addr.Port}
}

func options(roots *x509.CertPool) poke.Options {
	opts := poke.DefaultOptions()
	opts.Timeout = 5 * time.Second
	opts.RootCAs = roots
	opts.Version = version
	opts.Location = time.UTC
	return opts
}

func closedPort(t *testing.T) poke.Target {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return poke.Target{Host: "127.0.0.1", Port: port}
}

func TestNewTarget(t *testing.T) {
	tests := []struct {
		name     string
		portArg  string
		expected int
		warned   bool
	}{
		{name: "Explicit port", portArg: "8443", expected: 8443},
		{name: "Default port", portArg: "", expected: poke.DefaultPort},
		{name: "Unparsable port", portArg: "abc", expected: poke.DefaultPort, warned: true},
		{name: "Out of range port", portArg: "70000", expected: poke.DefaultPort, warned: true},
		{name: "Zero port", portArg: "0", expected: poke.DefaultPort, warned: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			target := poke.NewTarget("example.com", tt.portArg, rec)

			assert.Equal(t, "example.com", target.Host)
			assert.Equal(t, tt.expected, target.Port)

			var warnings int
			for _, e := range rec.entries(t) {
				if e["level"] == string(logger.LevelWarn) {
					warnings++
				}
			}
			if tt.warned {
				assert.Equal(t, 1, warnings)
			} else {
				assert.Zero(t, warnings)
			}
		})
	}

	assert.Equal(t, "[::1]:443", poke.Target{Host: "::1", Port: 443}.Address())
}

func TestParseDrainMode(t *testing.T) {
	mode, err := poke.ParseDrainMode("Response")
	require.NoError(t, err)
	assert.Equal(t, poke.DrainResponse, mode)

	mode, err = poke.ParseDrainMode("")
	require.NoError(t, err)
	assert.Equal(t, poke.DrainAvailable, mode)

	_, err = poke.ParseDrainMode("forever")
	assert.ErrorIs(t, err, poke.ErrInvalidDrainMode)
}

func TestHandshake(t *testing.T) {
	now := time.Now()
	k := newPKI(t, now.AddDate(3, 0, 0))
	leaf := k.leaf(t, now.Add(-time.Hour), now.AddDate(1, 0, 0))

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Trusted server",
			testFunc: func(t *testing.T) {
				target := k.serve(t, leaf, http.StatusOK)
				p := poke.New(options(certtest.Pool(k.root)), newRecorder())

				report := p.Handshake(context.Background(), target)
				assert.True(t, report.OK, "error: %v", report.Err)
				assert.Equal(t, poke.FailureNone, report.Kind)
			},
		},
		{
			name: "Untrusted chain fails",
			testFunc: func(t *testing.T) {
				target := k.serve(t, leaf, http.StatusOK)
				rec := newRecorder()
				p := poke.New(options(x509.NewCertPool()), rec)

				report := p.Handshake(context.Background(), target)
				assert.False(t, report.OK)
				assert.Equal(t, poke.FailureTransport, report.Kind)
				assert.ErrorIs(t, report.Err, poke.ErrHandshake)
				assert.Len(t, rec.find(t, "trying to open socket and read output"), 1)
			},
		},
		{
			name: "Connection refused",
			testFunc: func(t *testing.T) {
				p := poke.New(options(nil), newRecorder())
				assert.False(t, p.ProbeHandshake(context.Background(), closedPort(t)))
			},
		},
		{
			name: "Invalid target",
			testFunc: func(t *testing.T) {
				p := poke.New(options(nil), newRecorder())
				report := p.Handshake(context.Background(), poke.Target{Port: 443})
				assert.Equal(t, poke.FailureConfig, report.Kind)
				assert.ErrorIs(t, report.Err, poke.ErrEmptyHost)
			},
		},
		{
			name: "Response drain logs every byte",
			testFunc: func(t *testing.T) {
				l, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
					Certificates: []tls.Certificate{leaf.TLSCertificate(k.intermediate)},
				})
				require.NoError(t, err)
				t.Cleanup(func() { _ = l.Close() })

				go func() {
					conn, err := l.Accept()
					if err != nil {
						return
					}
					defer conn.Close()
					one := make([]byte, 1)
					if _, err := conn.Read(one); err != nil || one[0] != 0x01 {
						return
					}
					_, _ = conn.Write([]byte("pong"))
				}()

				opts := options(certtest.Pool(k.root))
				opts.Drain = poke.DrainResponse
				rec := newRecorder()
				p := poke.New(opts, rec)

				addr := l.Addr().(*net.TCPAddr)
				report := p.Handshake(context.Background(), poke.Target{Host: "127.0.0.1", Port: addr.Port})
				require.True(t, report.OK, "error: %v", report.Err)
				assert.Equal(t, []byte("pong"), report.Drained)

				received := rec.find(t, "received byte")
				require.Len(t, received, 4)
				assert.EqualValues(t, 'p', received[0]["value"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestCertificates(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "All certificates valid",
			testFunc: func(t *testing.T) {
				k := newPKI(t, now.AddDate(3, 0, 0))
				target := k.serve(t, k.leaf(t, now.Add(-time.Hour), now.AddDate(1, 0, 0)), http.StatusOK)
				rec := newRecorder()

				report := poke.New(options(nil), rec).Certificates(context.Background(), target)
				require.True(t, report.OK, "error: %v", report.Err)
				assert.Equal(t, http.StatusOK, report.StatusCode)
				assert.Len(t, report.Chain, 3)
				assert.Len(t, report.Verdicts, 3)
				assert.Nil(t, report.Failed)

				codes := rec.find(t, "Response Code")
				require.Len(t, codes, 1)
				assert.EqualValues(t, http.StatusOK, codes[0]["status"])
			},
		},
		{
			name: "Second certificate expired stops evaluation",
			testFunc: func(t *testing.T) {
				k := newPKI(t, now.AddDate(0, 0, -1))
				target := k.serve(t, k.leaf(t, now.Add(-time.Hour), now.AddDate(1, 0, 0)), http.StatusOK)

				report := poke.New(options(nil), newRecorder()).Certificates(context.Background(), target)
				assert.False(t, report.OK)
				assert.Equal(t, poke.FailureTemporal, report.Kind)
				assert.ErrorIs(t, report.Err, poke.ErrCertificateValidity)
				require.NotNil(t, report.Failed)
				assert.Equal(t, 1, report.Failed.Index)
				assert.Equal(t, expiry.Expired, report.Failed.Outcome)
				assert.Len(t, report.Verdicts, 2)
				assert.Equal(t, []string{"VALID", "EXPIRED", ""}, report.Statuses())
			},
		},
		{
			name: "Not yet valid leaf",
			testFunc: func(t *testing.T) {
				k := newPKI(t, now.AddDate(3, 0, 0))
				target := k.serve(t, k.leaf(t, now.Add(48*time.Hour), now.AddDate(1, 0, 0)), http.StatusOK)

				report := poke.New(options(nil), newRecorder()).Certificates(context.Background(), target)
				assert.False(t, report.OK)
				assert.Equal(t, poke.FailureTemporal, report.Kind)
				assert.Equal(t, expiry.NotYetValid, report.Failed.Outcome)
				assert.Len(t, report.Verdicts, 1)
			},
		},
		{
			name: "Non-2xx status does not fail",
			testFunc: func(t *testing.T) {
				k := newPKI(t, now.AddDate(3, 0, 0))
				target := k.serve(t, k.leaf(t, now.Add(-time.Hour), now.AddDate(1, 0, 0)), http.StatusInternalServerError)

				report := poke.New(options(nil), newRecorder()).Certificates(context.Background(), target)
				assert.True(t, report.OK, "error: %v", report.Err)
				assert.Equal(t, http.StatusInternalServerError, report.StatusCode)
			},
		},
		{
			name: "Expiring soon warns with certificate identity",
			testFunc: func(t *testing.T) {
				k := newPKI(t, now.AddDate(3, 0, 0))
				target := k.serve(t, k.leaf(t, now.Add(-time.Hour), now.AddDate(0, 0, 30)), http.StatusOK)
				rec := newRecorder()

				report := poke.New(options(nil), rec).Certificates(context.Background(), target)
				assert.False(t, report.OK)
				assert.Equal(t, poke.FailureExpiring, report.Kind)
				assert.ErrorIs(t, report.Err, poke.ErrExpiringSoon)
				assert.Equal(t, 0, report.Failed.Index)

				warnings := rec.find(t, "Certificate will expire within 3 months")
				require.Len(t, warnings, 1)
				assert.Equal(t, "127.0.0.1", warnings[0]["certificate"])
				assert.Equal(t, target.Host, warnings[0]["host"])
				assert.EqualValues(t, target.Port, warnings[0]["port"])
				assert.NotEmpty(t, warnings[0]["notAfter"])
			},
		},
		{
			name: "Connection refused",
			testFunc: func(t *testing.T) {
				rec := newRecorder()
				p := poke.New(options(nil), rec)

				report := p.Certificates(context.Background(), closedPort(t))
				assert.False(t, report.OK)
				assert.Equal(t, poke.FailureTransport, report.Kind)
				assert.ErrorIs(t, report.Err, poke.ErrRetrieval)
				assert.Len(t, rec.find(t, "trying to check expiration date"), 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestRun(t *testing.T) {
	now := time.Now()
	k := newPKI(t, now.AddDate(3, 0, 0))
	leaf := k.leaf(t, now.Add(-time.Hour), now.AddDate(1, 0, 0))

	for _, parallel := range []bool{false, true} {
		t.Run("parallel="+strconv.FormatBool(parallel), func(t *testing.T) {
			target := k.serve(t, leaf, http.StatusOK)
			opts := options(certtest.Pool(k.root))
			opts.Parallel = parallel
			rec := newRecorder()

			res := poke.New(opts, rec).Run(context.Background(), target)
			assert.True(t, res.OK())
			assert.Equal(t, poke.FailureNone, res.Kind())

			final := rec.find(t, "SSL test final result")
			require.Len(t, final, 1)
			assert.Equal(t, true, final[0]["result"])
		})
	}

	t.Run("Handshake failure still evaluates certificates", func(t *testing.T) {
		target := k.serve(t, leaf, http.StatusOK)
		res := poke.New(options(x509.NewCertPool()), newRecorder()).Run(context.Background(), target)

		assert.False(t, res.OK())
		assert.Equal(t, poke.FailureTransport, res.Kind())
		assert.True(t, res.Certificates.OK)
	})

	t.Run("Unreachable target", func(t *testing.T) {
		res := poke.New(options(nil), newRecorder()).Run(context.Background(), closedPort(t))
		assert.False(t, res.OK())
		assert.False(t, res.Handshake.OK)
		assert.False(t, res.Certificates.OK)
	})
}

func TestRunAll(t *testing.T) {
	now := time.Now()
	k := newPKI(t, now.AddDate(3, 0, 0))
	leaf := k.leaf(t, now.Add(-time.Hour), now.AddDate(1, 0, 0))
	p := poke.New(options(certtest.Pool(k.root)), newRecorder())

	targets := []poke.Target{k.serve(t, leaf, http.StatusOK), closedPort(t)}
	results := p.RunAll(context.Background(), targets)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, p.RunAll(ctx, targets))
}

func TestEvaluateBundle(t *testing.T) {
	now := time.Now()
	k := newPKI(t, now.AddDate(3, 0, 0))
	leaf := k.leaf(t, now.Add(-time.Hour), now.AddDate(1, 0, 0))
	p := poke.New(options(nil), nil)

	report := p.EvaluateBundle("bundle.pem", []*x509.Certificate{leaf.Cert, k.intermediate.Cert, k.root.Cert})
	assert.True(t, report.OK)
	assert.Len(t, report.Verdicts, 3)

	fixed := options(nil)
	fixed.Now = func() time.Time { return now.AddDate(2, 0, 0) }
	report = poke.New(fixed, nil).EvaluateBundle("bundle.pem", []*x509.Certificate{leaf.Cert})
	assert.Equal(t, poke.FailureTemporal, report.Kind)

	report = p.EvaluateBundle("empty.pem", nil)
	assert.False(t, report.OK)
	assert.ErrorIs(t, report.Err, expiry.ErrEmptyChain)
}

func TestRetries(t *testing.T) {
	now := time.Now()
	k := newPKI(t, now.AddDate(3, 0, 0))
	leaf := k.leaf(t, now.Add(-time.Hour), now.AddDate(1, 0, 0))

	t.Run("Connection failures are retried and still reported", func(t *testing.T) {
		opts := options(nil)
		opts.Retries = 1
		report := poke.New(opts, newRecorder()).Handshake(context.Background(), closedPort(t))
		assert.False(t, report.OK)
		assert.ErrorIs(t, report.Err, poke.ErrHandshake)
	})

	t.Run("Verification failures are not retried", func(t *testing.T) {
		target := k.serve(t, leaf, http.StatusOK)
		opts := options(x509.NewCertPool())
		opts.Retries = 10

		start := time.Now()
		report := poke.New(opts, newRecorder()).Handshake(context.Background(), target)
		assert.False(t, report.OK)
		var verifyErr *tls.CertificateVerificationError
		assert.ErrorAs(t, report.Err, &verifyErr)
		assert.Less(t, time.Since(start), 3*time.Second)
	})
}

func TestRunAllRate(t *testing.T) {
	opts := options(nil)
	opts.Rate = 20
	p := poke.New(opts, newRecorder())

	targets := []poke.Target{closedPort(t), closedPort(t), closedPort(t)}
	start := time.Now()
	results := p.RunAll(context.Background(), targets)
	require.Len(t, results, 3)
	// One token up front, then one every 50ms.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
