package materialize

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/cybersonic/lucli/internal/manifest"
)

const keystoreValidity = 825 * 24 * time.Hour // under the CA/Browser Forum's 825-day ceiling

// ensureKeystore generates a self-signed certificate for the instance's
// HTTPS connector when none exists yet, per §4.6 output 7. A keystore
// that already exists is only regenerated after an explicit
// confirmation, gated by mz.prompter — this runs whenever host changes,
// never silently (§Open Question a).
func (mz *Materializer) ensureKeystore(ctx context.Context, m *manifest.Manifest, in *Input) error {
	path := keystorePath(in.Instance.Dir)
	metaPath := path + ".host"

	if _, err := os.Stat(path); err == nil {
		prevHost, readErr := os.ReadFile(metaPath) //nolint:gosec // G304: path is this instance's own conf dir
		if readErr == nil && string(prevHost) == m.Host {
			return nil // unchanged host, keystore still valid
		}
		if mz.prompter != nil {
			ok, err := mz.prompter.Confirm(
				"Regenerate HTTPS keystore?",
				fmt.Sprintf("host changed to %q; the existing certificate's CN/SAN would no longer match", m.Host),
			)
			if err != nil {
				return fmt.Errorf("confirm keystore regeneration: %w", err)
			}
			if !ok {
				return nil
			}
		}
	}

	pemBytes, err := generateSelfSignedPEM(m.Host)
	if err != nil {
		return fmt.Errorf("generate self-signed certificate: %w", err)
	}

	if err := atomicWrite(path, pemBytes); err != nil {
		return err
	}
	return atomicWrite(metaPath, []byte(m.Host))
}

// generateSelfSignedPEM builds a PEM-encoded ECDSA keypair certificate
// with host as CN and SAN. No PKCS12 library exists anywhere in the
// pack, so the keystore this package produces is a PEM file rather than
// a true .p12 — the HTTPS connector fields still name it "keystoreFile"
// for the runtime template's sake.
func generateSelfSignedPEM(host string) ([]byte, error) {
	if host == "" {
		host = "localhost"
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: host},
		DNSNames:     []string{host},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(keystoreValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	keyBytes, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}

	var out []byte
	out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})...)
	out = append(out, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes})...)
	return out, nil
}
