// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package expiry

import (
	"crypto/x509"
	"errors"
	"time"
)

// DefaultWarnMonths is the size of the expiration-warning window.
const DefaultWarnMonths = 3

// ErrEmptyChain is returned when there is no certificate to evaluate.
var ErrEmptyChain = errors.New("expiry: empty certificate chain")

// Outcome is the per-certificate evaluation result.
type Outcome int

const (
	// Valid means the certificate is inside its validity window and outside the warning window.
	Valid Outcome = iota
	// NotYetValid means the current instant is before NotBefore.
	NotYetValid
	// Expired means the current instant is after NotAfter.
	Expired
	// ExpiringSoon means the certificate is still valid but today is past the warning date.
	ExpiringSoon
)

// String returns the report label of o.
func (o Outcome) String() string {
	switch o {
	case Valid:
		return "VALID"
	case NotYetValid:
		return "NOT_YET_VALID"
	case Expired:
		return "EXPIRED"
	case ExpiringSoon:
		return "EXPIRING_SOON"
	default:
		return "UNKNOWN"
	}
}

// Temporal reports whether o is a validity-window failure.
func (o Outcome) Temporal() bool { return o == NotYetValid || o == Expired }

// Policy holds the warning window configuration.
type Policy struct {
	// WarnMonths is the number of calendar months before NotAfter at which
	// the warning starts. Zero or negative means DefaultWarnMonths.
	WarnMonths int
	// Location is the zone used to compute calendar dates. Nil means time.Local.
	Location *time.Location
}

// Verdict is the evaluation of one certificate of a chain.
type Verdict struct {
	// Index is the chain position, leaf first.
	Index       int
	Certificate *x509.Certificate
	Outcome     Outcome
	// WarnDate is the last calendar day (midnight, policy location) on which
	// the certificate is not yet inside the warning window.
	WarnDate time.Time
}

// Identity returns a short name for v's certificate.
func (v Verdict) Identity() string { return Identity(v.Certificate) }

// Identity returns the subject common name of cert, or the full subject when
// the common name is empty.
func Identity(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	return cert.Subject.String()
}

func (p Policy) months() int {
	if p.WarnMonths <= 0 {
		return DefaultWarnMonths
	}
	return p.WarnMonths
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// WarnDate returns the civil date of notAfter minus the policy's months,
// with the day of month clamped to the length of the target month.
func (p Policy) WarnDate(notAfter time.Time) time.Time {
	loc := p.location()
	y, m, d := notAfter.In(loc).Date()
	y, m, d = subtractMonths(y, m, d, p.months())
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Evaluate classifies cert at instant now.
//
// The validity window check matches [x509.Certificate] semantics with both
// bounds inclusive. The warning check compares calendar dates and is strict:
// a certificate whose warning date is today is still Valid.
func (p Policy) Evaluate(cert *x509.Certificate, now time.Time) Verdict {
	v := Verdict{Certificate: cert, WarnDate: p.WarnDate(cert.NotAfter)}

	switch {
	case now.Before(cert.NotBefore):
		v.Outcome = NotYetValid
	case now.After(cert.NotAfter):
		v.Outcome = Expired
	case today(now, p.location()).After(v.WarnDate):
		v.Outcome = ExpiringSoon
	default:
		v.Outcome = Valid
	}

	return v
}

// EvaluateChain evaluates chain in order and stops at the first certificate
// that is not Valid. It returns the verdicts produced so far and, when the
// chain fails, a pointer to the failing verdict (the last element).
func (p Policy) EvaluateChain(chain []*x509.Certificate, now time.Time) ([]Verdict, *Verdict, error) {
	if len(chain) == 0 {
		return nil, nil, ErrEmptyChain
	}

	verdicts := make([]Verdict, 0, len(chain))
	for i, cert := range chain {
		v := p.Evaluate(cert, now)
		v.Index = i
		verdicts = append(verdicts, v)

		if v.Outcome != Valid {
			return verdicts, &verdicts[len(verdicts)-1], nil
		}
	}

	return verdicts, nil, nil
}

func today(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// subtractMonths moves the civil date (y, m, d) back n months. When the
// resulting month is shorter, d is clamped to its last day.
func subtractMonths(y int, m time.Month, d, n int) (int, time.Month, int) {
	total := y*12 + int(m-1) - n
	ny := total / 12
	nm := total % 12
	if nm < 0 {
		nm += 12
		ny--
	}

	month := time.Month(nm + 1)
	if last := daysIn(ny, month); d > last {
		d = last
	}
	return ny, month, d
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
