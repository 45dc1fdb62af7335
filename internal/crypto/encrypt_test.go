package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBox(t *testing.T) *SecretBox {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	box, err := NewSecretBox(key)
	require.NoError(t, err)
	return box
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)

	assert.Len(t, a, KeySize)
	assert.NotEqual(t, a, b)
}

func TestKeyBase64(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	decoded, err := DecodeKeyBase64(EncodeKeyBase64(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = DecodeKeyBase64(EncodeKeyBase64(make([]byte, 16)))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = DecodeKeyBase64("not base64 !!")
	assert.Error(t, err)
}

func TestNewSecretBox_KeySize(t *testing.T) {
	for _, size := range []int{0, 16, 24, 31, 33} {
		_, err := NewSecretBox(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidKey, "size %d", size)
	}
}

func TestSecretBox_RoundTrip(t *testing.T) {
	box := newBox(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"app password", "abcd efgh ijkl mnop"},
		{"empty", ""},
		{"unicode", "pässwörd ✓"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := box.Encrypt([]byte(tt.plaintext))
			require.NoError(t, err)

			opened, err := box.Decrypt(sealed)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, string(opened))
		})
	}
}

func TestSecretBox_FreshNonce(t *testing.T) {
	box := newBox(t)

	a, err := box.Encrypt([]byte("secret"))
	require.NoError(t, err)
	b, err := box.Encrypt([]byte("secret"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSecretBox_DecryptFailures(t *testing.T) {
	box := newBox(t)
	sealed, err := box.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = newBox(t).Decrypt(sealed)
	assert.Error(t, err, "wrong key")

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)/2] ^= 'A' ^ 'B'
	_, err = box.Decrypt(tampered)
	assert.Error(t, err, "tampered")

	_, err = box.Decrypt([]byte("!!!"))
	assert.Error(t, err, "bad base64")

	_, err = box.Decrypt([]byte(EncodeKeyBase64([]byte("short"))))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}
