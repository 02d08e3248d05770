package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrInvalidKeySize = errors.New("invalid key size")
	ErrInvalidIVSize  = errors.New("invalid iv size")
	ErrEncryption     = errors.New("encryption failed")
	ErrDecryption     = errors.New("decryption failed")
)

// EnvelopeSeparator splits ciphertext from iv in an encrypted payload.
const EnvelopeSeparator = ":"

// Encryptor provides a generic interface for encryption/decryption
type Encryptor interface {
	Encrypt(data []byte) ([]byte, error)
	Decrypt(data []byte) ([]byte, error)
}

// EnvelopeCipher decrypts "<base64-ciphertext>:<hex-iv>" payloads with AES-256-CBC and PKCS7 padding.
type EnvelopeCipher struct {
	block cipher.Block
	iv    []byte
}

// NewEnvelopeCipher builds a cipher from the configured key and default iv.
// Both may be given raw (32 and 16 bytes) or hex encoded (64 and 32 characters).
func NewEnvelopeCipher(key, iv string) (*EnvelopeCipher, error) {
	k := decodeSecret(key, 32)
	if len(k) != 32 {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, ErrInvalidKeySize
	}

	var v []byte
	if iv != "" {
		v = decodeSecret(iv, aes.BlockSize)
		if len(v) != aes.BlockSize {
			return nil, ErrInvalidIVSize
		}
	}

	return &EnvelopeCipher{block: block, iv: v}, nil
}

func decodeSecret(s string, size int) []byte {
	if len(s) == size*2 {
		if b, err := hex.DecodeString(s); err == nil {
			return b
		}
	}
	return []byte(s)
}

// IsEnvelope reports whether a string payload should be treated as encrypted.
// The backend contract is a literal separator check; plain strings containing a
// colon are indistinguishable from envelopes.
func IsEnvelope(s string) bool {
	return strings.Contains(s, EnvelopeSeparator)
}

// Open decrypts an envelope string and returns the plaintext bytes.
func (c *EnvelopeCipher) Open(envelope string) ([]byte, error) {
	ct, ivHex, ok := strings.Cut(envelope, EnvelopeSeparator)
	if !ok {
		return nil, fmt.Errorf("%w: missing separator", ErrDecryption)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ct))
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext is not base64: %v", ErrDecryption, err)
	}

	iv := c.iv
	if ivHex = strings.TrimSpace(ivHex); ivHex != "" {
		iv, err = hex.DecodeString(ivHex)
		if err != nil {
			return nil, fmt.Errorf("%w: iv is not hex: %v", ErrDecryption, err)
		}
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, ErrInvalidIVSize)
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a multiple of the block size", ErrDecryption)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return plaintext, nil
}

// OpenJSON decrypts an envelope and unmarshals the plaintext into v.
func (c *EnvelopeCipher) OpenJSON(envelope string, v interface{}) error {
	plaintext, err := c.Open(envelope)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: plaintext is not valid JSON: %v", ErrDecryption, err)
	}
	return nil
}

// Seal encrypts plaintext with the given iv, or the configured iv when iv is nil,
// and returns the envelope string.
func (c *EnvelopeCipher) Seal(plaintext, iv []byte) (string, error) {
	if iv == nil {
		iv = c.iv
	}
	if len(iv) != aes.BlockSize {
		return "", ErrInvalidIVSize
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext) + EnvelopeSeparator + hex.EncodeToString(iv), nil
}

// SealJSON marshals v and seals it with a random iv.
func (c *EnvelopeCipher) SealJSON(v interface{}) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", ErrEncryption
	}
	return c.Seal(plaintext, iv)
}

// Encrypt implements Encryptor using a random iv.
func (c *EnvelopeCipher) Encrypt(data []byte) ([]byte, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, ErrEncryption
	}
	s, err := c.Seal(data, iv)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Decrypt implements Encryptor.
func (c *EnvelopeCipher) Decrypt(data []byte) ([]byte, error) {
	return c.Open(string(data))
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data[:len(data):len(data)], bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
