package services

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Secret cipher error constants
var (
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrInvalidSealKey     = errors.New("seal key must be 32 bytes (64 hex characters)")
)

// SecretCipher seals per-tenant advertising access tokens before they are
// written to the database and opens them when the forwarder needs the
// plaintext. Tokens must round-trip, so an AEAD is used rather than a hash.
type SecretCipher interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// SecretCipherImpl implements SecretCipher with XChaCha20-Poly1305
type SecretCipherImpl struct {
	key []byte
}

// NewSecretCipher creates a cipher from a 64-character hex key
func NewSecretCipher(hexKey string) (SecretCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidSealKey
	}
	return &SecretCipherImpl{key: key}, nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext)
func (c *SecretCipherImpl) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to construct AEAD: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal
func (c *SecretCipherImpl) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed secret: %w", err)
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to construct AEAD: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed secret: %w", err)
	}
	return string(plaintext), nil
}
