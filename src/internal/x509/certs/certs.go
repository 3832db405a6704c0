// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrEmptyInput indicates that no data was provided.
	ErrEmptyInput = errors.New("x509certs: empty input")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected certificate type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")
)

// Certificate decodes and encodes [X.509] certificates for bundle
// inspection and for saving a retrieved chain.
//
// [X.509]: https://grokipedia.com/page/X.509
type Certificate struct {
	certBlockType string
}

// New creates a new Certificate with default settings.
func New() *Certificate {
	return &Certificate{
		certBlockType: "CERTIFICATE",
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// DecodeBundle decodes every certificate in data, preserving order.
//
// Accepted inputs are a sequence of PEM "CERTIFICATE" blocks, concatenated
// DER certificates, or a DER PKCS#7 (.p7b) bundle. A PEM-armoured PKCS#7
// block is also accepted.
func (c *Certificate) DecodeBundle(data []byte) ([]*x509.Certificate, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	if c.IsPEM(data) {
		return c.decodePEM(data)
	}

	if certs, err := x509.ParseCertificates(data); err == nil && len(certs) > 0 {
		return certs, nil
	}

	return c.decodePKCS7(data)
}

func (c *Certificate) decodePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}

		switch block.Type {
		case c.certBlockType:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}
			certs = append(certs, cert)
		case "PKCS7":
			bundle, err := c.decodePKCS7(block.Bytes)
			if err != nil {
				return nil, err
			}
			certs = append(certs, bundle...)
		default:
			return nil, ErrInvalidBlockType
		}

		data = rest
	}

	if len(certs) == 0 {
		return nil, ErrParseCertificate
	}
	return certs, nil
}

// decodePKCS7 parses a PKCS#7 signed-data bundle using Cloudflare's library.
func (c *Certificate) decodePKCS7(data []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, ErrParseCertificate
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.Raw,
	}
	return pem.EncodeToMemory(&block)
}

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (c *Certificate) EncodeMultiplePEM(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodePEM(cert)...)
	}

	return data
}

// EncodeMultipleDER concatenates the DER encoding of certs.
func (c *Certificate) EncodeMultipleDER(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, cert.Raw...)
	}

	return data
}
