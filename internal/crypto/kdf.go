package crypto

import (
	"fmt"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters. These match the defaults of the Argon2 reference
// implementation used by other clients, so peers derive identical keys.
const (
	ArgonTime    = 2
	ArgonMemory  = 19 * 1024 // KiB
	ArgonThreads = 1
)

// DeriveKey derives a KeySize encryption key from a passphrase and salt.
// The same passphrase and salt always yield the same key. The key is returned
// in a locked buffer; the caller must Destroy it.
func DeriveKey(passphrase, salt []byte) (*memguard.LockedBuffer, error) {
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: salt too short (%d bytes)", ErrKeyDerivation, len(salt))
	}

	key := argon2.IDKey(passphrase, salt, ArgonTime, ArgonMemory, ArgonThreads, KeySize)

	// NewBufferFromBytes moves the key into guarded memory and wipes the source
	return memguard.NewBufferFromBytes(key), nil
}
