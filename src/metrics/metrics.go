// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/H0llyW00dzZ/tls-poke/src/internal/x509/expiry"
	"github.com/H0llyW00dzZ/tls-poke/src/poke"
)

const namespace = "tls_poke"

// Recorder holds gauges for a set of probe results.
//
// A Recorder is safe for concurrent use.
type Recorder struct {
	registry     *prometheus.Registry
	result       *prometheus.GaugeVec
	handshake    *prometheus.GaugeVec
	certificates *prometheus.GaugeVec
	statusCode   *prometheus.GaugeVec
	notAfter     *prometheus.GaugeVec
	failure      *prometheus.GaugeVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	target := []string{"host", "port"}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		result: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "result",
			Help: "Combined probe result (1 when both probes succeeded).",
		}, target),
		handshake: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "handshake_ok",
			Help: "Verified handshake probe result.",
		}, target),
		certificates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "certificates_ok",
			Help: "Certificate evaluation result.",
		}, target),
		statusCode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_status_code",
			Help: "HTTP status of the inspection request.",
		}, target),
		notAfter: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "certificate_not_after_seconds",
			Help: "NotAfter of each evaluated certificate as a Unix timestamp.",
		}, append(target, "index", "subject", "outcome")),
		failure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "failure",
			Help: "Set to 1 for the failure kind of a failing target.",
		}, append(target, "kind")),
	}

	r.registry.MustRegister(r.result, r.handshake, r.certificates, r.statusCode, r.notAfter, r.failure)
	return r
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Observe records res, replacing earlier values for the same target.
func (r *Recorder) Observe(res *poke.Result) {
	host, port := res.Target.Host, strconv.Itoa(res.Target.Port)

	r.result.WithLabelValues(host, port).Set(boolValue(res.OK()))
	if h := res.Handshake; h != nil {
		r.handshake.WithLabelValues(host, port).Set(boolValue(h.OK))
	}
	if kind := res.Kind(); kind != poke.FailureNone {
		r.failure.WithLabelValues(host, port, kind.String()).Set(1)
	}

	c := res.Certificates
	if c == nil {
		return
	}
	r.certificates.WithLabelValues(host, port).Set(boolValue(c.OK))
	if c.StatusCode != 0 {
		r.statusCode.WithLabelValues(host, port).Set(float64(c.StatusCode))
	}
	for _, v := range c.Verdicts {
		r.notAfter.WithLabelValues(host, port, strconv.Itoa(v.Index), expiry.Identity(v.Certificate), v.Outcome.String()).
			Set(float64(v.Certificate.NotAfter.Unix()))
	}
}

// Gatherer exposes the registry, e.g. for tests or an HTTP handler.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteFile atomically writes all recorded metrics to path in the text
// exposition format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
