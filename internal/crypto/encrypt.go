// Package crypto seals secrets that the service has to keep on disk, such as
// the SMTP password in the settings record.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of a sealing key in bytes.
const KeySize = chacha20poly1305.KeySize

var (
	ErrInvalidKey         = errors.New("crypto: key must be 32 bytes")
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
)

// Encryptor seals and opens small secrets.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// SecretBox is an XChaCha20-Poly1305 Encryptor. Output is
// base64(nonce || ciphertext || tag) so it can sit in a JSON string.
type SecretBox struct {
	key []byte
}

var _ Encryptor = (*SecretBox)(nil)

func NewSecretBox(key []byte) (*SecretBox, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &SecretBox{key: k}, nil
}

func (b *SecretBox) Encrypt(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return nil, fmt.Errorf("crypto: init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: read nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

// Decrypt fails when the key is wrong or the data was altered.
func (b *SecretBox) Decrypt(ciphertext []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(ciphertext)))
	n, err := base64.StdEncoding.Decode(raw, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode ciphertext: %w", err)
	}
	raw = raw[:n]

	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return nil, fmt.Errorf("crypto: init cipher: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	nonce, body := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: open: %w", err)
	}
	return plaintext, nil
}

// GenerateKey returns a random sealing key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// EncodeKeyBase64 renders key for an environment variable.
func EncodeKeyBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DecodeKeyBase64 parses a key produced by EncodeKeyBase64.
func DecodeKeyBase64(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}
