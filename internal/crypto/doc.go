// Package crypto provides the cryptographic primitives for clipseal.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the passphrase via Argon2id
//   - 12-byte random nonce per message, carried next to the ciphertext
//   - 16-byte authentication tag appended to the ciphertext
//
// Key derivation uses Argon2id with:
//   - 16-byte random salt, fresh for every message
//   - time=2, memory=19 MiB, threads=1 (fixed, not configurable)
//
// Memory safety:
//   - Derived keys are returned in memguard locked buffers; call Destroy when done
//   - Use ClearBytes() to zero other sensitive data after use
package crypto
