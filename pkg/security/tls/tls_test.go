package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machinehub/statusboard/pkg/config"
	"machinehub/statusboard/pkg/telemetry/logging"
)

// writeCert writes a self-signed certificate and key for cn into dir.
func writeCert(t *testing.T, dir, cn string, notBefore, notAfter time.Time) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		DNSNames:     []string{"localhost"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func validCert(t *testing.T, dir, cn string) (string, string) {
	now := time.Now()
	return writeCert(t, dir, cn, now.Add(-time.Hour), now.Add(365*24*time.Hour))
}

func TestParseMinVersion(t *testing.T) {
	v, err := ParseMinVersion("1.2")
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), v)

	v, err = ParseMinVersion("1.3")
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), v)

	v, err = ParseMinVersion("")
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), v)

	_, err = ParseMinVersion("1.0")
	assert.Error(t, err)
}

func TestValidateCertificate(t *testing.T) {
	now := time.Now()
	cert := &x509.Certificate{NotBefore: now.Add(-time.Hour), NotAfter: now.Add(time.Hour)}

	assert.NoError(t, ValidateCertificate(cert, now))
	assert.ErrorContains(t, ValidateCertificate(cert, now.Add(-2*time.Hour)), "not yet valid")
	assert.ErrorContains(t, ValidateCertificate(cert, now.Add(2*time.Hour)), "expired")
}

func TestExpiresSoon(t *testing.T) {
	now := time.Now()

	soon, left := ExpiresSoon(&x509.Certificate{NotAfter: now.Add(10 * 24 * time.Hour)}, now)
	assert.True(t, soon)
	assert.Equal(t, 10*24*time.Hour, left)

	soon, _ = ExpiresSoon(&x509.Certificate{NotAfter: now.Add(90 * 24 * time.Hour)}, now)
	assert.False(t, soon)
}

func TestLeaf_Empty(t *testing.T) {
	_, err := Leaf(nil)
	assert.Error(t, err)
	_, err = Leaf(&tls.Certificate{})
	assert.Error(t, err)
}

func TestNewReloader_Errors(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := validCert(t, dir, "statusboard")

	_, err := NewReloader(config.TLSConfig{CertFile: certFile}, nil)
	assert.Error(t, err, "missing key file")

	_, err = NewReloader(config.TLSConfig{CertFile: certFile, KeyFile: keyFile, MinVersion: "1.1"}, nil)
	assert.Error(t, err)

	_, err = NewReloader(config.TLSConfig{CertFile: filepath.Join(dir, "none.crt"), KeyFile: keyFile}, nil)
	assert.Error(t, err)

	expiredDir := t.TempDir()
	now := time.Now()
	certFile, keyFile = writeCert(t, expiredDir, "old", now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	_, err = NewReloader(config.TLSConfig{CertFile: certFile, KeyFile: keyFile}, nil)
	assert.ErrorContains(t, err, "expired")
}

func TestReloader_ServesCertificate(t *testing.T) {
	certFile, keyFile := validCert(t, t.TempDir(), "statusboard")
	r, err := NewReloader(config.TLSConfig{CertFile: certFile, KeyFile: keyFile, MinVersion: "1.2"}, logging.Discard())
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = r.TLSConfig()
	srv.StartTLS()
	defer srv.Close()

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 - self-signed test certificate
	}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.NotEmpty(t, resp.TLS.PeerCertificates)
	assert.Equal(t, "statusboard", resp.TLS.PeerCertificates[0].Subject.CommonName)
}

func TestReloader_Check(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := validCert(t, dir, "first")
	r, err := NewReloader(config.TLSConfig{CertFile: certFile, KeyFile: keyFile}, logging.Discard())
	require.NoError(t, err)

	assert.False(t, r.Check(), "unchanged files")

	validCert(t, dir, "second")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(certFile, later, later))
	require.NoError(t, os.Chtimes(keyFile, later, later))

	assert.True(t, r.Check())
	leaf, err := Leaf(r.Certificate())
	require.NoError(t, err)
	assert.Equal(t, "second", leaf.Subject.CommonName)

	now := time.Now()
	writeCert(t, dir, "expired", now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	evenLater := later.Add(time.Minute)
	require.NoError(t, os.Chtimes(certFile, evenLater, evenLater))
	require.NoError(t, os.Chtimes(keyFile, evenLater, evenLater))

	assert.False(t, r.Check(), "expired renewal is rejected")
	leaf, err = Leaf(r.Certificate())
	require.NoError(t, err)
	assert.Equal(t, "second", leaf.Subject.CommonName)
}

func TestReloader_RunWithoutInterval(t *testing.T) {
	certFile, keyFile := validCert(t, t.TempDir(), "statusboard")
	r, err := NewReloader(config.TLSConfig{CertFile: certFile, KeyFile: keyFile}, logging.Discard())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		r.Run(t.Context())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return at once without a reload interval")
	}
}
