// Package crypto seals patient contact data at rest with XChaCha20-Poly1305.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrInvalidKey         = errors.New("field key must be 32 bytes of hex")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// FieldCipher encrypts single column values. Output is base64 of
// nonce || sealed, with a fresh random nonce per call.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher parses a 64-char hex key. An empty key yields a nil cipher;
// callers then store no contact data.
func NewFieldCipher(hexKey string) (*FieldCipher, error) {
	if hexKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("field key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &FieldCipher{aead: aead}, nil
}

func (f *FieldCipher) Encrypt(plaintext string) (string, error) {
	if f == nil {
		return "", ErrInvalidKey
	}
	nonce := make([]byte, f.aead.NonceSize(), f.aead.NonceSize()+len(plaintext)+f.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := f.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (f *FieldCipher) Decrypt(encoded string) (string, error) {
	if f == nil {
		return "", ErrInvalidKey
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	n := f.aead.NonceSize()
	if len(data) < n {
		return "", ErrCiphertextTooShort
	}
	plain, err := f.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(plain), nil
}
