// Package cipher seals values at rest with the service data key.
//
// The data key is a base64-encoded 256 bit AES key, normally produced by
// `storefrontctl data-key generate` and supplied as STOREFRONT_DATA_KEY.
// Sealed values are laid out as
//
//	'G' | tag (16) | nonce (12) | ciphertext
//
// and bound to associated data, so a value sealed for one session cannot be
// opened as another.
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// KeySize is the length of a data key in bytes.
const KeySize = 32

const (
	nonceSize    = 12
	tagSize      = aes.BlockSize
	versionMagic = byte('G')
	headerSize   = 1 + tagSize + nonceSize
)

var (
	ErrShortCiphertext = errors.New("ciphertext is too short")
	ErrBadVersion      = errors.New("unknown ciphertext version")
)

// Sealer encrypts and decrypts values bound to associated data.
type Sealer interface {
	Seal(aad, plainText []byte) ([]byte, error)
	Open(aad, packedText []byte) ([]byte, error)
}

// Symmetric is an AES-256-GCM Sealer.
type Symmetric struct {
	key    []byte
	aesgcm stdcipher.AEAD
}

// NewSymmetric creates a Symmetric from a raw key.
func NewSymmetric(key []byte) (*Symmetric, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(key))
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := stdcipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	k := make([]byte, len(key))
	copy(k, key)
	return &Symmetric{key: k, aesgcm: aesgcm}, nil
}

// FromBase64 decodes a data key and creates a Symmetric from it.
func FromBase64(dataKey string) (*Symmetric, error) {
	key, err := base64.StdEncoding.DecodeString(dataKey)
	if err != nil {
		return nil, fmt.Errorf("bad data key: %w", err)
	}
	return NewSymmetric(key)
}

// GenerateKey returns a fresh base64-encoded data key.
func GenerateKey() (string, error) {
	key, err := RandomBytes(KeySize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.Strict().EncodeToString(key), nil
}

// RandomBytes reads size bytes from the system CSPRNG.
func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}
	return value, nil
}

// Derive returns a subkey of the data key for the given purpose, e.g. the
// cookie signing key. Subkeys for different purposes are unrelated.
func (s *Symmetric) Derive(purpose string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}

// Seal encrypts plainText under a random nonce.
func (s *Symmetric) Seal(aad, plainText []byte) ([]byte, error) {
	// Never use more than 2^32 random nonces with a given key.
	nonce, err := RandomBytes(nonceSize)
	if err != nil {
		return nil, err
	}
	return pack(s.aesgcm.Seal(nil, nonce, plainText, aad), nonce), nil
}

// Open decrypts a value produced by Seal with the same aad.
func (s *Symmetric) Open(aad, packedText []byte) ([]byte, error) {
	if len(packedText) < headerSize {
		return nil, ErrShortCiphertext
	}
	if packedText[0] != versionMagic {
		return nil, ErrBadVersion
	}
	cipherText, nonce := unpack(packedText)
	return s.aesgcm.Open(nil, nonce, cipherText, aad)
}

func pack(cipherTextWithTag, nonce []byte) []byte {
	split := len(cipherTextWithTag) - tagSize
	tag, cipherText := cipherTextWithTag[split:], cipherTextWithTag[:split]

	data := make([]byte, 0, headerSize+len(cipherText))
	data = append(data, versionMagic)
	data = append(data, tag...)
	data = append(data, nonce[:nonceSize]...)
	return append(data, cipherText...)
}

func unpack(packedText []byte) (cipherTextWithTag, nonce []byte) {
	tag := packedText[1 : 1+tagSize]
	nonce = packedText[1+tagSize : headerSize]

	cipherTextWithTag = make([]byte, 0, len(packedText)-headerSize+tagSize)
	cipherTextWithTag = append(cipherTextWithTag, packedText[headerSize:]...)
	return append(cipherTextWithTag, tag...), nonce
}
