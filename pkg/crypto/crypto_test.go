package crypto

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealerRoundTrip(t *testing.T) {
	for _, method := range []Method{XChaCha20Poly1305, AES256GCM} {
		key, err := GenerateKey(method.KeySize())
		require.NoError(t, err)

		s, err := NewSealer(method, key)
		require.NoError(t, err)

		sealed, err := s.Seal("currentUser", []byte(`{"id":"1"}`))
		require.NoError(t, err)

		plain, err := s.Open("currentUser", sealed)
		require.NoError(t, err)
		assert.Equal(t, `{"id":"1"}`, string(plain))
	}
}

func TestSealerDetectsTampering(t *testing.T) {
	key, err := GenerateKey(Chacha20KeySize)
	require.NoError(t, err)
	s, err := NewSealer(XChaCha20Poly1305, key)
	require.NoError(t, err)

	sealed, err := s.Seal("currentUser", []byte("payload"))
	require.NoError(t, err)

	_, err = s.Open("theme", sealed)
	assert.ErrorIs(t, err, ErrDecryptionFailed, "label mismatch must fail")

	_, err = s.Open("currentUser", "not base64!")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = s.Open("currentUser", "AAAA")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestNewSealerRejectsBadKey(t *testing.T) {
	_, err := NewSealer(XChaCha20Poly1305, make([]byte, 5))
	assert.Error(t, err)
	_, err = NewSealer(Method(42), make([]byte, 32))
	assert.Error(t, err)
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "storage.key")

	first, err := LoadOrCreateKey(path, Chacha20KeySize)
	require.NoError(t, err)
	require.Len(t, first, int(Chacha20KeySize))

	second, err := LoadOrCreateKey(path, Chacha20KeySize)
	require.NoError(t, err)
	assert.Equal(t, first, second, "existing key must be reused")

	_, err = LoadOrCreateKey(path, AES256KeySize+1)
	assert.Error(t, err)
}
