package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Method selects the AEAD used by a Sealer.
type Method int

const (
	XChaCha20Poly1305 Method = iota
	AES256GCM
)

type KeySize uint32

const (
	AES256KeySize   KeySize = 32
	Chacha20KeySize KeySize = chacha20poly1305.KeySize
)

// KeySize returns the key length the method requires.
func (m Method) KeySize() KeySize {
	if m == AES256GCM {
		return AES256KeySize
	}
	return Chacha20KeySize
}

// Sealer encrypts and authenticates small records. Output is
// base64(nonce || ciphertext || tag) so it can live in a text column.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer for method using key.
func NewSealer(method Method, key []byte) (*Sealer, error) {
	var aead cipher.AEAD
	var err error
	keylength := len(key)
	switch method {
	case AES256GCM:
		if keylength != int(AES256KeySize) {
			return nil, fmt.Errorf("crypto: invalid aes256 key length: expected %d, got %d", int(AES256KeySize), keylength)
		}
		aead, err = newAESGCMCipher(key)
	case XChaCha20Poly1305:
		if keylength != int(Chacha20KeySize) {
			return nil, fmt.Errorf("crypto: invalid xchacha20poly1305 key length: expected %d, got %d", int(Chacha20KeySize), keylength)
		}
		aead, err = chacha20poly1305.NewX(key)
		if err != nil {
			err = fmt.Errorf("crypto: new xchacha20 cipher: %w", err)
		}
	default:
		err = fmt.Errorf("crypto: unknown sealing method: %v", method)
	}
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

func newAESGCMCipher(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: new aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: new gcm: %w", err)
	}
	return aead, nil
}

// Seal encrypts plaintext, binding it to label (e.g. the storage key) so a
// record cannot be moved to another key undetected.
func (s *Sealer) Seal(label string, plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, plaintext, []byte(label))
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Any corruption yields ErrInvalidCiphertext or
// ErrDecryptionFailed.
func (s *Sealer) Open(label, sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	ns := s.aead.NonceSize()
	if len(raw) < ns+s.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	plaintext, err := s.aead.Open(nil, raw[:ns], raw[ns:], []byte(label))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
