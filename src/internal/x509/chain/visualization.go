// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

const (
	// StatusValid is the label rendered with a passing mark.
	StatusValid = "VALID"
	// StatusNotEvaluated is rendered for positions without a status,
	// e.g. certificates after the first failing one.
	StatusNotEvaluated = "NOT_EVALUATED"
)

// statusAt returns the label for chain position i.
func statusAt(statuses []string, i int) string {
	if i < len(statuses) && statuses[i] != "" {
		return statuses[i]
	}
	return StatusNotEvaluated
}

func statusIcon(status string) string {
	switch status {
	case StatusValid:
		return "✓"
	case StatusNotEvaluated:
		return "·"
	default:
		return "✗"
	}
}

// keyInfo returns the public key algorithm and size of the certificate.
func keyInfo(pub any) (string, int) {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return "RSA", key.Size() * 8
	case *ecdsa.PublicKey:
		return "ECDSA", key.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return "unknown", 0
	}
}

// RenderASCIITree renders the certificate chain as an ASCII tree diagram.
//
// statuses holds one evaluation label per chain position; missing entries
// render as [StatusNotEvaluated].
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderASCIITree(statuses []string) string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	for i, cert := range ch.Certs {
		connector := "├── "
		if i == len(ch.Certs)-1 {
			connector = "└── "
		}

		status := statusAt(statuses, i)
		fmt.Fprintf(&result, "%s%s[%s] %s (%s) expires %s\n",
			strings.Repeat("    ", i), connector, statusIcon(status), displayName(cert.Subject.CommonName, cert.Subject.String()),
			ch.getCertificateRole(i), cert.NotAfter.UTC().Format(time.RFC3339))
	}

	return result.String()
}

// RenderTable renders the certificate chain as a formatted markdown table.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderTable(statuses []string) string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Role", "Subject", "Issuer", "Valid From", "Valid Until", "Key", "Status"})

	rows := make([][]string, 0, len(ch.Certs))
	for i, cert := range ch.Certs {
		algo, size := keyInfo(cert.PublicKey)
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ch.getCertificateRole(i),
			displayName(cert.Subject.CommonName, cert.Subject.String()),
			displayName(cert.Issuer.CommonName, cert.Issuer.String()),
			cert.NotBefore.UTC().Format("2006-01-02"),
			cert.NotAfter.UTC().Format("2006-01-02"),
			fmt.Sprintf("%d-bit %s", size, algo),
			statusAt(statuses, i),
		})
	}

	_ = table.Bulk(rows)
	_ = table.Render()
	return buf.String()
}

// CertificateData is the JSON form of one chain position.
type CertificateData struct {
	Index              int       `json:"index"`
	Role               string    `json:"role"`
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	SerialNumber       string    `json:"serialNumber"`
	SignatureAlgorithm string    `json:"signatureAlgorithm"`
	PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
	KeySize            int       `json:"keySize"`
	NotBefore          time.Time `json:"notBefore"`
	NotAfter           time.Time `json:"notAfter"`
	IsCA               bool      `json:"isCA"`
	Status             string    `json:"status"`
}

// Certificates returns the JSON form of every chain position.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) Certificates(statuses []string) []CertificateData {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	data := make([]CertificateData, len(ch.Certs))
	for i, cert := range ch.Certs {
		algo, size := keyInfo(cert.PublicKey)
		data[i] = CertificateData{
			Index:              i,
			Role:               ch.getCertificateRole(i),
			Subject:            cert.Subject.String(),
			Issuer:             cert.Issuer.String(),
			SerialNumber:       cert.SerialNumber.String(),
			SignatureAlgorithm: cert.SignatureAlgorithm.String(),
			PublicKeyAlgorithm: algo,
			KeySize:            size,
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			IsCA:               cert.IsCA,
			Status:             statusAt(statuses, i),
		}
	}
	return data
}

// ToJSON converts the certificate chain to indented JSON.
func (ch *Chain) ToJSON(statuses []string) ([]byte, error) {
	return json.MarshalIndent(struct {
		ChainLength  int               `json:"chainLength"`
		Certificates []CertificateData `json:"certificates"`
	}{
		ChainLength:  ch.Len(),
		Certificates: ch.Certificates(statuses),
	}, "", "  ")
}

func displayName(commonName, full string) string {
	if commonName != "" {
		return commonName
	}
	return full
}
