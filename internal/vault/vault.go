// Package vault keeps intermediate document text obfuscated between pipeline stages.
// It is not a security boundary: the key is derived from a process-wide secret.
package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrEmptySecret = errors.New("vault: empty secret")
	ErrCorrupt     = errors.New("vault: sealed text is corrupt")
)

const hkdfInfo = "debt-tracker/text-vault/v1"

// Sealer transforms plaintext into an opaque blob and back.
type Sealer interface {
	Seal(plain string) ([]byte, error)
	Open(blob []byte) (string, error)
}

// New returns an AEAD sealer when protect is set, otherwise a pass-through.
func New(secret string, protect bool) (Sealer, error) {
	if !protect {
		return Plain{}, nil
	}
	return NewAEAD(secret)
}

// AEAD seals with XChaCha20-Poly1305 under an HKDF-SHA256 derived key.
type AEAD struct {
	key []byte
}

func NewAEAD(secret string) (*AEAD, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("vault: derive key: %w", err)
	}
	return &AEAD{key: key}, nil
}

// Seal returns nonce||ciphertext.
func (a *AEAD) Seal(plain string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(a.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("vault: nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, []byte(plain), nil), nil
}

func (a *AEAD) Open(blob []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(a.key)
	if err != nil {
		return "", err
	}
	if len(blob) < aead.NonceSize() {
		return "", ErrCorrupt
	}
	nonce, ct := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return string(plain), nil
}

// Plain holds text as-is.
type Plain struct{}

func (Plain) Seal(plain string) ([]byte, error) { return []byte(plain), nil }

func (Plain) Open(blob []byte) (string, error) { return string(blob), nil }
