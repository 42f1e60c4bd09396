// Package secrets encrypts configuration values at rest with AES-256-CBC.
//
// The stored format is base64(base64(ciphertext) + "::" + iv) with a fresh
// random IV per value, which keeps existing encrypted settings readable after
// migration from the original store.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const keySize = 32

var (
	// ErrMalformedValue is returned when a stored value is not in the
	// expected ciphertext::iv format.
	ErrMalformedValue = errors.New("secrets: malformed encrypted value")

	// ErrInvalidKey is returned when the key is not 32 bytes.
	ErrInvalidKey = errors.New("secrets: key must be 32 bytes")
)

// Cipher encrypts and decrypts individual setting values.
type Cipher struct {
	key []byte
}

// New creates a Cipher from a hex-encoded 256-bit key. The key is generated
// once out of band (e.g. `openssl rand -hex 32`) and supplied via config; it
// is never derived from timestamps or other guessable material.
func New(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("secrets: decode key: %w", err)
	}
	if len(key) != keySize {
		return nil, ErrInvalidKey
	}
	return &Cipher{key: key}, nil
}

// Encrypt encrypts a plaintext value with a random IV.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("secrets: new cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("secrets: generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	inner := base64.StdEncoding.EncodeToString(ct) + "::" + string(iv)
	return base64.StdEncoding.EncodeToString([]byte(inner)), nil
}

// Decrypt decrypts a stored value. Malformed input returns ErrMalformedValue
// rather than garbage plaintext.
func (c *Cipher) Decrypt(value string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedValue, err)
	}

	// base64 text cannot contain ':' so the first "::" is the separator.
	parts := strings.SplitN(string(decoded), "::", 2)
	if len(parts) != 2 {
		return "", ErrMalformedValue
	}

	ct, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedValue, err)
	}
	iv := []byte(parts[1])

	if len(iv) != aes.BlockSize || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrMalformedValue
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("secrets: new cipher: %w", err)
	}

	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)

	unpadded, err := pkcs7Unpad(pt, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padding)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padding)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrMalformedValue
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, ErrMalformedValue
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrMalformedValue
		}
	}
	return data[:len(data)-padding], nil
}
