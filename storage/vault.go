// Package storage implements the encrypted blob vault. Every stored
// object is sealed with AES-256-GCM under a per-file key; nothing ever
// touches disk in plaintext.
package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	KeyLength = 32
	nonceLen  = 12
)

// ErrUnavailable wraps any I/O or decryption failure so callers can
// fail closed without inspecting the cause.
var ErrUnavailable = errors.New("storage unavailable")

type Vault struct {
	Dir string
}

func NewVault(dir string) (*Vault, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory, %w", err)
	}

	return &Vault{Dir: dir}, nil
}

// GenerateKey returns a fresh 256-bit file key
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	return key, nil
}

// Put seals content under key and writes it as ref. The on-disk layout
// is nonce || ciphertext.
func (v *Vault) Put(ref string, content, key []byte) error {
	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sealed := gcm.Seal(nonce, nonce, content, nil)

	if err := os.WriteFile(v.path(ref), sealed, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Get reads and opens ref. The context deadline bounds the read so a
// stalled disk can't hang an access attempt; on any failure the caller
// gets ErrUnavailable and must fail closed.
func (v *Vault) Get(ctx context.Context, ref string, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sealed, err := os.ReadFile(v.path(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(sealed) < nonceLen {
		return nil, fmt.Errorf("%w: object truncated", ErrUnavailable)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	content, err := gcm.Open(nil, sealed[:nonceLen], sealed[nonceLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt failed", ErrUnavailable)
	}

	return content, nil
}

// Delete removes an object. Missing objects are not an error, the
// caller may be cleaning up a half-finished upload.
func (v *Vault) Delete(ref string) error {
	err := os.Remove(v.path(ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

func (v *Vault) path(ref string) string {
	// refs are server-generated hex, but never trust them as paths
	return filepath.Join(v.Dir, filepath.Base(ref)+".enc")
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return gcm, nil
}
