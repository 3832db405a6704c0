// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	x509chain "github.com/H0llyW00dzZ/tls-poke/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-poke/src/logger"
	"github.com/H0llyW00dzZ/tls-poke/src/metrics"
	"github.com/H0llyW00dzZ/tls-poke/src/poke"
)

// jsonReport is the --json form of a run.
type jsonReport struct {
	Target       string                  `json:"target"`
	OK           bool                    `json:"ok"`
	Handshake    *jsonHandshake          `json:"handshake,omitempty"`
	Certificates *jsonCertificateSummary `json:"certificates"`
}

type jsonHandshake struct {
	OK           bool   `json:"ok"`
	DrainedBytes int    `json:"drainedBytes"`
	Kind         string `json:"failureKind,omitempty"`
	Error        string `json:"error,omitempty"`
}

type jsonCertificateSummary struct {
	OK         bool                        `json:"ok"`
	StatusCode int                         `json:"statusCode,omitempty"`
	Kind       string                      `json:"failureKind,omitempty"`
	Error      string                      `json:"error,omitempty"`
	Chain      []x509chain.CertificateData `json:"chain"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func kindString(k poke.FailureKind) string {
	if k == poke.FailureNone {
		return ""
	}
	return k.String()
}

func certificateSummary(r *poke.CertificateReport) *jsonCertificateSummary {
	return &jsonCertificateSummary{
		OK:         r.OK,
		StatusCode: r.StatusCode,
		Kind:       kindString(r.Kind),
		Error:      errString(r.Err),
		Chain:      x509chain.New(r.Chain).Certificates(r.Statuses()),
	}
}

// report writes the optional chain views selected by the output flags.
func (a *app) report(w io.Writer, res *poke.Result) error {
	if a.flags.jsonOutput {
		out := jsonReport{
			Target:       res.Target.String(),
			OK:           res.OK(),
			Certificates: certificateSummary(res.Certificates),
		}
		if h := res.Handshake; h != nil {
			out.Handshake = &jsonHandshake{
				OK:           h.OK,
				DrainedBytes: len(h.Drained),
				Kind:         kindString(h.Kind),
				Error:        errString(h.Err),
			}
		}
		return writeJSON(w, out)
	}

	return a.renderChain(w, res.Certificates)
}

// renderChain writes the tree and table views of r's chain when requested.
func (a *app) renderChain(w io.Writer, r *poke.CertificateReport) error {
	if len(r.Chain) == 0 || (!a.flags.tree && !a.flags.table) {
		return nil
	}

	chain := x509chain.New(r.Chain)
	statuses := r.Statuses()

	if a.flags.tree {
		if _, err := fmt.Fprintln(w, chain.RenderASCIITree(statuses)); err != nil {
			return err
		}
	}
	if a.flags.table {
		if _, err := fmt.Fprintln(w, chain.RenderTable(statuses)); err != nil {
			return err
		}
	}
	return nil
}

// saveChain writes the retrieved chain to the --save-chain file.
func (a *app) saveChain(log logger.Logger, r *poke.CertificateReport) error {
	if a.flags.saveChain == "" || r == nil || len(r.Chain) == 0 {
		return nil
	}

	chain := x509chain.New(r.Chain)
	data := chain.EncodePEM()
	if a.flags.derFormat {
		data = chain.EncodeDER()
	}

	if err := os.WriteFile(a.flags.saveChain, data, 0644); err != nil {
		return fmt.Errorf("error writing chain to %s: %w", a.flags.saveChain, err)
	}
	log.Info("saved certificate chain", "file", a.flags.saveChain, "certificates", chain.Len())
	return nil
}

// writeMetrics exports results to path for the node_exporter textfile
// collector. An empty path disables the export.
func writeMetrics(path string, log logger.Logger, results ...*poke.Result) error {
	if path == "" {
		return nil
	}

	rec := metrics.New()
	for _, res := range results {
		rec.Observe(res)
	}
	if err := rec.WriteFile(path); err != nil {
		return fmt.Errorf("error writing metrics to %s: %w", path, err)
	}
	log.Info("wrote metrics", "file", path, "targets", len(results))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
