package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"machinehub/statusboard/pkg/config"
)

// Reloader serves the current certificate and reloads it when the files
// change.
type Reloader struct {
	certFile   string
	keyFile    string
	interval   time.Duration
	minVersion uint16
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

// NewReloader loads the configured certificate. It fails if the pair cannot
// be loaded now.
func NewReloader(cfg config.TLSConfig, logger *slog.Logger) (*Reloader, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, fmt.Errorf("cert_file and key_file are required when TLS is enabled")
	}
	minVersion, err := ParseMinVersion(cfg.MinVersion)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Reloader{
		certFile:   cfg.CertFile,
		keyFile:    cfg.KeyFile,
		interval:   cfg.ReloadInterval,
		minVersion: minVersion,
		logger:     logger.With("component", "tls"),
		now:        time.Now,
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// TLSConfig returns a server configuration that always presents the current
// certificate.
func (r *Reloader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: r.minVersion,
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			return r.Certificate(), nil
		},
	}
}

// Certificate returns the certificate in use.
func (r *Reloader) Certificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// Run checks for renewed files until ctx is cancelled. It returns
// immediately when the reload interval is zero.
func (r *Reloader) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Check()
		}
	}
}

// Check reloads the pair if either file changed since the last load. It
// reports whether a new certificate was installed.
func (r *Reloader) Check() bool {
	if !r.changed() {
		return false
	}
	if err := r.reload(); err != nil {
		r.logger.Error("Certificate reload failed, keeping current certificate",
			"cert_file", r.certFile,
			"error", err,
		)
		return false
	}
	return true
}

func (r *Reloader) changed() bool {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return !certInfo.ModTime().Equal(r.certTime) || !keyInfo.ModTime().Equal(r.keyTime)
}

func (r *Reloader) reload() error {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return fmt.Errorf("certificate file: %w", err)
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return fmt.Errorf("key file: %w", err)
	}

	now := r.now()
	cert, leaf, err := LoadKeyPair(r.certFile, r.keyFile, now)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = cert
	r.certTime = certInfo.ModTime()
	r.keyTime = keyInfo.ModTime()
	r.mu.Unlock()

	soon, left := ExpiresSoon(leaf, now)
	attrs := []any{
		"subject", leaf.Subject.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
		"expires_in_days", int(left.Hours() / 24),
	}
	if soon {
		r.logger.Warn("Certificate expiring soon", attrs...)
	} else {
		r.logger.Info("Certificate loaded", attrs...)
	}
	return nil
}
