// Package crypto seals values written to client-local storage so that a
// tampered or truncated record is detected on read.
package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	ErrInvalidCiphertext = errors.New("crypto: invalid ciphertext")
	ErrDecryptionFailed  = errors.New("crypto: decryption failed")
)

// GenerateKey generates a random key of a given size.
func GenerateKey(keysize KeySize) ([]byte, error) {
	key := make([]byte, keysize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("crypto: generate key: %w", err)
	}
	return key, nil
}

// LoadOrCreateKey reads a raw key file, creating it with a fresh random key
// of the given size when it does not exist. The file is written 0600.
func LoadOrCreateKey(path string, keysize KeySize) ([]byte, error) {
	key, err := os.ReadFile(path) //nolint:gosec // path comes from client config
	switch {
	case err == nil:
		if len(key) != int(keysize) {
			return nil, fmt.Errorf("crypto: key file %s: expected %d bytes, got %d", path, keysize, len(key))
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("crypto: read key: %w", err)
	}

	key, err = GenerateKey(keysize)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("crypto: create key dir: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("crypto: write key: %w", err)
	}
	return key, nil
}
