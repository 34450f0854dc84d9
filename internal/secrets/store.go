// Package secrets implements the SecretStore component: named secrets
// encrypted at rest with a user-provided or device-bound key, looked up
// by name during manifest placeholder resolution (§4.3).
package secrets

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/cybersonic/lucli/internal/lock"
	"github.com/cybersonic/lucli/internal/luerr"
)

// FileName is the on-disk store's filename, held inside a dedicated
// "secrets" subdirectory of the LuCLI home.
const FileName = "local.json"

const (
	scryptN  = 1 << 15
	scryptR  = 8
	scryptP  = 1
	keyLen   = 32
	nonceLen = 24
	saltLen  = 16
)

// kdfParams records the scrypt parameters used to derive the store's
// encryption key from its passphrase, so a later process can re-derive
// the same key without guessing (§4.3 "stored alongside the ciphertext
// file").
type kdfParams struct {
	Salt []byte `json:"salt"`
	N    int    `json:"n"`
	R    int    `json:"r"`
	P    int    `json:"p"`
}

// sealedSecret is one name's encrypted payload.
type sealedSecret struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// document is the full on-disk JSON shape of local.json.
type document struct {
	KDF     kdfParams               `json:"kdf"`
	Secrets map[string]sealedSecret `json:"secrets"`
}

// Store persists and retrieves named secrets, encrypted with
// nacl/secretbox using a key derived from a passphrase via scrypt.
// Plaintext never reaches disk.
type Store struct {
	dir        string
	path       string
	passphrase []byte
	flock      *lock.FileLock
}

// NewStore returns a Store rooted at homeDir/secrets, deriving its
// encryption key from passphrase once a document exists (or once one
// is created on the first Put).
func NewStore(homeDir string, passphrase []byte) *Store {
	dir := filepath.Join(homeDir, "secrets")
	return &Store{
		dir:        dir,
		path:       filepath.Join(dir, FileName),
		passphrase: passphrase,
		flock:      lock.New(filepath.Join(dir, FileName+".lock"), lock.DefaultTimeout),
	}
}

// Put encrypts and stores value under name, creating the store's
// document (and its scrypt parameters) on first use.
func (s *Store) Put(ctx context.Context, name string, value []byte) error {
	unlock, err := s.flock.Lock(ctx)
	if err != nil {
		return fmt.Errorf("secrets: lock store: %w", err)
	}
	defer unlock()

	doc, err := s.loadOrInit()
	if err != nil {
		return err
	}

	key, err := s.deriveKey(doc.KDF)
	if err != nil {
		return err
	}

	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("secrets: generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nil, value, &nonce, &key)
	doc.Secrets[name] = sealedSecret{Nonce: nonce[:], Ciphertext: sealed}

	return s.save(doc)
}

// Get returns the decrypted value for name, or ok=false if no such
// secret has been stored.
func (s *Store) Get(_ context.Context, name string) ([]byte, bool, error) {
	doc, err := s.load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	sealed, ok := doc.Secrets[name]
	if !ok {
		return nil, false, nil
	}

	key, err := s.deriveKey(doc.KDF)
	if err != nil {
		return nil, false, err
	}

	var nonce [nonceLen]byte
	copy(nonce[:], sealed.Nonce)

	plain, ok := secretbox.Open(nil, sealed.Ciphertext, &nonce, &key)
	if !ok {
		return nil, false, luerr.New(luerr.IOError,
			luerr.WithKeyPath(name),
			luerr.WithRemedy(fmt.Sprintf("secret %q could not be decrypted; wrong passphrase or corrupt store", name)))
	}
	return plain, true, nil
}

// List returns the known secret names, sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
	doc, err := s.load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(doc.Secrets))
	for name := range doc.Secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes name from the store. It is a no-op if name is absent.
func (s *Store) Delete(ctx context.Context, name string) error {
	unlock, err := s.flock.Lock(ctx)
	if err != nil {
		return fmt.Errorf("secrets: lock store: %w", err)
	}
	defer unlock()

	doc, err := s.load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	delete(doc.Secrets, name)
	return s.save(doc)
}

func (s *Store) loadOrInit() (*document, error) {
	doc, err := s.load()
	if err == nil {
		return doc, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	salt := make([]byte, saltLen)
	if _, randErr := rand.Read(salt); randErr != nil {
		return nil, fmt.Errorf("secrets: generate salt: %w", randErr)
	}

	return &document{
		KDF:     kdfParams{Salt: salt, N: scryptN, R: scryptR, P: scryptP},
		Secrets: map[string]sealedSecret{},
	}, nil
}

func (s *Store) load() (*document, error) {
	//nolint:gosec // G304: path is fixed (homeDir/secrets/local.json)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("secrets: parse %s: %w", s.path, err)
	}
	if doc.Secrets == nil {
		doc.Secrets = map[string]sealedSecret{}
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("secrets: create %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("secrets: encode store: %w", err)
	}

	return lock.AtomicWriteFile(s.path, data, 0o600)
}

func (s *Store) deriveKey(kdf kdfParams) ([keyLen]byte, error) {
	var key [keyLen]byte
	derived, err := scrypt.Key(s.passphrase, kdf.Salt, kdf.N, kdf.R, kdf.P, keyLen)
	if err != nil {
		return key, fmt.Errorf("secrets: derive key: %w", err)
	}
	copy(key[:], derived)
	return key, nil
}
