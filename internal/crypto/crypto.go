package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
)

const (
	SaltSize    = 16 // Per-message salt size in bytes
	MinSaltSize = 8  // Shortest salt Argon2 accepts
	KeySize     = 32 // AES-256 key size
	NonceSize   = 12 // GCM nonce size
	TagSize     = 16 // GCM authentication tag size
)

var (
	ErrKeyDerivation = errors.New("key derivation failed")
	ErrEncryption    = errors.New("encryption failed")
	ErrDecryption    = errors.New("decryption failed")
	ErrInvalidKey    = errors.New("invalid key size")
)

// InvalidNonceError is returned when a nonce is not exactly NonceSize bytes.
type InvalidNonceError struct {
	Length int
}

func (e *InvalidNonceError) Error() string {
	return fmt.Sprintf("invalid nonce length: expected %d bytes, got %d", NonceSize, e.Length)
}

// GenerateSalt returns SaltSize fresh random bytes.
// A failing system random source is not recoverable and panics.
func GenerateSalt() []byte {
	return mustRandom(SaltSize)
}

// GenerateNonce returns NonceSize fresh random bytes.
func GenerateNonce() []byte {
	return mustRandom(NonceSize)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	memguard.WipeBytes(b)
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

func mustRandom(n int) []byte {
	b, err := GenerateRandom(n)
	if err != nil {
		panic(err)
	}
	return b
}
