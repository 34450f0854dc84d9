package secrets

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cybersonic/lucli/internal/lock"
)

// SecretKeyEnvVar, when set, supplies the passphrase directly and skips
// both the interactive prompt and the device-bound fallback.
const SecretKeyEnvVar = "LUCLI_SECRET_KEY"

// pepperFileName holds a per-store random pepper used, alongside the
// machine ID, to derive a passphrase when the user supplies none. It
// never leaves the machine and carries no secret material on its own.
const pepperFileName = ".device-key"

// Prompter is the subset of internal/prompt.Prompter needed to ask the
// user for a passphrase interactively.
type Prompter interface {
	Secret(prompt string) (string, error)
}

// ResolvePassphrase returns the passphrase bytes used to derive the
// store's encryption key, in precedence order: LUCLI_SECRET_KEY env
// var, an interactive prompt (if prompter is non-nil), or a device-
// bound key derived from the machine ID plus a locally generated
// pepper stored 0600 next to the store (§4.3).
func ResolvePassphrase(_ context.Context, storeDir string, prompter Prompter) ([]byte, error) {
	if v, ok := os.LookupEnv(SecretKeyEnvVar); ok && v != "" {
		return []byte(v), nil
	}

	if prompter != nil {
		value, err := prompter.Secret("Secret store passphrase")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(value) != "" {
			return []byte(value), nil
		}
	}

	return deviceBoundKey(storeDir)
}

// deviceBoundKey derives a passphrase from the machine ID (best effort;
// empty if unavailable on this platform) and a per-store random pepper,
// so two machines never derive the same key even without one.
func deviceBoundKey(storeDir string) ([]byte, error) {
	pepper, err := loadOrCreatePepper(storeDir)
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	h.Write([]byte(machineID()))
	h.Write(pepper)
	return h.Sum(nil), nil
}

func loadOrCreatePepper(storeDir string) ([]byte, error) {
	path := filepath.Join(storeDir, pepperFileName)

	//nolint:gosec // G304: path is built from the LuCLI-owned secrets directory
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	pepper := make([]byte, 32)
	if _, err := rand.Read(pepper); err != nil {
		return nil, fmt.Errorf("generate device pepper: %w", err)
	}

	if err := os.MkdirAll(storeDir, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", storeDir, err)
	}
	if err := lock.AtomicWriteFile(path, pepper, 0o600); err != nil {
		return nil, fmt.Errorf("persist device pepper: %w", err)
	}

	return pepper, nil
}

// machineID reads the Linux machine ID, returning "" on platforms or
// sandboxes where it isn't available; the caller's random pepper makes
// the derived key unique either way.
func machineID() string {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if data, err := os.ReadFile(path); err == nil { //nolint:gosec // G304: fixed well-known system paths
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}
