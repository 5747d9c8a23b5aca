package envelope

import (
	"unicode/utf8"

	"github.com/awnumar/memguard"

	"github.com/illarion/clipseal/internal/crypto"
)

// SecretSource supplies a copy of the session passphrase.
// The returned buffer is destroyed by the caller.
type SecretSource interface {
	Get() (*memguard.LockedBuffer, error)
}

// Codec seals and opens envelopes under the passphrase held by a SecretSource.
// It keeps no state between calls and is safe for concurrent use.
type Codec struct {
	secrets SecretSource
}

// NewCodec creates a Codec reading the passphrase from secrets
func NewCodec(secrets SecretSource) *Codec {
	return &Codec{secrets: secrets}
}

// Seal encrypts plaintext under a key derived from the passphrase and a
// fresh salt, with a fresh nonce. The plaintext slice is wiped.
func (c *Codec) Seal(plaintext []byte) (*Envelope, error) {
	defer crypto.ClearBytes(plaintext)

	passphrase, err := c.secrets.Get()
	if err != nil {
		return nil, err
	}

	salt := crypto.GenerateSalt()
	key, err := crypto.DeriveKey(passphrase.Bytes(), salt)
	passphrase.Destroy()
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	nonce := crypto.GenerateNonce()
	ciphertext, err := crypto.Encrypt(key.Bytes(), nonce, plaintext)
	if err != nil {
		return nil, err
	}

	return encode(salt, nonce, ciphertext), nil
}

// Open authenticates and decrypts env, returning the plaintext as a string.
func (c *Codec) Open(env *Envelope) (string, error) {
	passphrase, err := c.secrets.Get()
	if err != nil {
		return "", err
	}

	r, err := env.decode()
	if err != nil {
		passphrase.Destroy()
		return "", err
	}

	key, err := crypto.DeriveKey(passphrase.Bytes(), r.salt)
	passphrase.Destroy()
	if err != nil {
		return "", err
	}
	defer key.Destroy()

	plaintext, err := crypto.Decrypt(key.Bytes(), r.nonce, r.ciphertext)
	if err != nil {
		return "", err
	}
	defer crypto.ClearBytes(plaintext)

	if !utf8.Valid(plaintext) {
		return "", ErrInvalidUTF8
	}

	return string(plaintext), nil
}
