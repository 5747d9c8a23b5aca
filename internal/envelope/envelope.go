// Package envelope seals and opens clipboard payloads.
//
// An Envelope is the unit that crosses the trust boundary: the per-message
// salt, the GCM nonce and the ciphertext, each base64 (standard) encoded.
// Every Seal derives a fresh key from the session passphrase and a fresh salt;
// keys are never cached between messages.
package envelope

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/illarion/clipseal/internal/crypto"
)

var (
	ErrInvalidEncoding = errors.New("invalid encoding")
	ErrInvalidUTF8     = errors.New("invalid utf-8 in decrypted message")
)

// Envelope is the transmissible form of one encrypted message
type Envelope struct {
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// raw holds the decoded envelope fields
type raw struct {
	salt       []byte
	nonce      []byte
	ciphertext []byte
}

func encode(salt, nonce, ciphertext []byte) *Envelope {
	return &Envelope{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}
}

// decode decodes and size-checks all fields. Nonce length is checked
// before anything else touches the cipher.
func (e *Envelope) decode() (*raw, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: missing envelope", ErrInvalidEncoding)
	}

	salt, err := decodeField("salt", e.Salt)
	if err != nil {
		return nil, err
	}
	nonce, err := decodeField("iv", e.IV)
	if err != nil {
		return nil, err
	}
	ciphertext, err := decodeField("ciphertext", e.Ciphertext)
	if err != nil {
		return nil, err
	}

	if len(salt) != crypto.SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidEncoding, crypto.SaltSize, len(salt))
	}
	if len(nonce) != crypto.NonceSize {
		return nil, &crypto.InvalidNonceError{Length: len(nonce)}
	}

	return &raw{salt: salt, nonce: nonce, ciphertext: ciphertext}, nil
}

func decodeField(name, value string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64", ErrInvalidEncoding, name)
	}
	return b, nil
}

// Validate checks that all fields decode and are correctly sized.
// It needs no secret and does not authenticate the ciphertext.
func (e *Envelope) Validate() error {
	r, err := e.decode()
	if err != nil {
		return err
	}
	if len(r.ciphertext) < crypto.TagSize {
		return fmt.Errorf("%w: ciphertext shorter than authentication tag", ErrInvalidEncoding)
	}
	return nil
}

// CiphertextSize returns the decoded ciphertext length, or 0 if it does not decode
func (e *Envelope) CiphertextSize() int {
	b, err := base64.StdEncoding.DecodeString(e.Ciphertext)
	if err != nil {
		return 0
	}
	return len(b)
}
