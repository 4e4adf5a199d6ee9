package protector

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt is returned when a token fails authentication
var ErrDecrypt = errors.New("protector: token could not be decrypted")

// KeyError reports an unusable protection key
type KeyError struct {
	Reason string
}

// Error implements error interface
func (e *KeyError) Error() string {
	return "protector: invalid key: " + e.Reason
}

// Protector turns numeric identifiers into opaque URL-safe tokens and back
type Protector interface {
	ProtectID(purpose string, id uint) (string, error)
	UnprotectID(purpose string, token string) (uint, error)
}

// aesProtector implements Protector with AES-GCM
type aesProtector struct {
	aead cipher.AEAD
	rand io.Reader
}

// New creates a protector from a raw AES key (16, 24 or 32 bytes)
func New(key []byte) (Protector, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &aesProtector{aead: aead, rand: rand.Reader}, nil
}

// NewFromHex creates a protector from a hex encoded key
func NewFromHex(hexKey string) (Protector, error) {
	if hexKey == "" {
		return nil, &KeyError{Reason: "key is empty"}
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// ProtectID encrypts id; purpose is bound as additional data so a token
// issued for one entity type cannot be replayed for another.
func (p *aesProtector) ProtectID(purpose string, id uint) (string, error) {
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := io.ReadFull(p.rand, nonce); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}

	plain := make([]byte, 8)
	binary.BigEndian.PutUint64(plain, uint64(id))

	sealed := p.aead.Seal(nonce, nonce, plain, []byte(purpose))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// UnprotectID reverses ProtectID. A token that is not base64 returns the
// base64 decoding error; a token that fails authentication returns ErrDecrypt.
func (p *aesProtector) UnprotectID(purpose string, token string) (uint, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, err
	}

	nonceSize := p.aead.NonceSize()
	if len(sealed) < nonceSize+p.aead.Overhead() {
		return 0, ErrDecrypt
	}

	plain, err := p.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], []byte(purpose))
	if err != nil || len(plain) != 8 {
		return 0, ErrDecrypt
	}
	return uint(binary.BigEndian.Uint64(plain)), nil
}
