package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"
)

// ExpiryWarning is how close to NotAfter a certificate draws a warning.
const ExpiryWarning = 30 * 24 * time.Hour

// Leaf parses the first certificate of the chain.
func Leaf(cert *tls.Certificate) (*x509.Certificate, error) {
	if cert == nil || len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("certificate chain is empty")
	}
	if cert.Leaf != nil {
		return cert.Leaf, nil
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	return leaf, nil
}

// ValidateCertificate rejects a certificate outside its validity window at now.
func ValidateCertificate(cert *x509.Certificate, now time.Time) error {
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("certificate is not yet valid (valid from %s)", cert.NotBefore.Format(time.RFC3339))
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("certificate expired on %s", cert.NotAfter.Format(time.RFC3339))
	}
	return nil
}

// ExpiresSoon reports whether cert expires within ExpiryWarning of now, and
// the time left.
func ExpiresSoon(cert *x509.Certificate, now time.Time) (bool, time.Duration) {
	left := cert.NotAfter.Sub(now)
	return left < ExpiryWarning, left
}

// LoadKeyPair loads and validates a PEM certificate and key.
func LoadKeyPair(certFile, keyFile string, now time.Time) (*tls.Certificate, *x509.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	leaf, err := Leaf(&pair)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateCertificate(leaf, now); err != nil {
		return nil, nil, err
	}
	return &pair, leaf, nil
}

// ParseMinVersion maps "1.2" or "1.3" to its tls constant.
func ParseMinVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", v)
	}
}
