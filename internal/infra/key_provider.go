package infra

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

const (
	keyFileName = "store.key"
	keySize     = 32 // 256-bit SQLCipher key
)

// FileKeyProvider implements domain.KeyProvider with a key file next to
// the database, readable by the owner only.
type FileKeyProvider struct {
	keyPath string
}

// NewFileKeyProvider creates a FileKeyProvider for the given data directory.
func NewFileKeyProvider(dataDir string) *FileKeyProvider {
	return &FileKeyProvider{
		keyPath: filepath.Join(dataDir, keyFileName),
	}
}

// Path returns the key file location.
func (p *FileKeyProvider) Path() string {
	return p.keyPath
}

// GetKey reads the key. A key file readable by group or others is rejected.
func (p *FileKeyProvider) GetKey() ([]byte, error) {
	info, err := os.Stat(p.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat key file: %w", err)
	}
	if info.Mode().Perm()&0077 != 0 {
		return nil, fmt.Errorf("key file %s has permissions %o, want 600", p.keyPath, info.Mode().Perm())
	}

	encoded, err := os.ReadFile(p.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("session store key must be %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}

// StoreKey persists the session-store key. The file is created owner-only
// so GetKey accepts it on the next run.
func (p *FileKeyProvider) StoreKey(key []byte) error {
	if len(key) != keySize {
		return fmt.Errorf("session store key must be %d bytes, got %d", keySize, len(key))
	}
	if err := os.MkdirAll(filepath.Dir(p.keyPath), 0700); err != nil {
		return fmt.Errorf("failed to create data dir for store key: %w", err)
	}
	line := base64.StdEncoding.EncodeToString(key) + "\n"
	if err := os.WriteFile(p.keyPath, []byte(line), 0600); err != nil {
		return fmt.Errorf("failed to write store key %s: %w", p.keyPath, err)
	}
	return nil
}

// KeyExists reports whether a session store has been keyed in this data dir.
func (p *FileKeyProvider) KeyExists() bool {
	info, err := os.Stat(p.keyPath)
	return err == nil && info.Mode().IsRegular()
}

// GenerateKey returns fresh random bytes for a new session store.
func GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to read random store key: %w", err)
	}
	return key, nil
}

// EnsureKey loads the session-store key, creating and persisting one the
// first time focuscam runs in a data dir.
func EnsureKey(provider domain.KeyProvider) ([]byte, error) {
	if provider.KeyExists() {
		return provider.GetKey()
	}
	key, err := GenerateKey()
	if err == nil {
		err = provider.StoreKey(key)
	}
	if err != nil {
		return nil, err
	}
	return key, nil
}

// OpenStore opens the encrypted session store in dataDir, creating the key
// on first use.
func OpenStore(dataDir string) (*EncryptedStore, error) {
	key, err := EnsureKey(NewFileKeyProvider(dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load store key: %w", err)
	}
	return NewEncryptedStore(dataDir, key)
}

var _ domain.KeyProvider = (*FileKeyProvider)(nil)
