// Package storage provides the BBolt clipboard history for clipseal.
//
// Database structure uses two buckets:
//   - config: format version, creation time, device ID (unencrypted)
//   - history: sealed clipboard updates keyed by big-endian sequence number
//
// Only envelopes are stored. Plaintext and passphrases never reach the
// database, so listing history needs no passphrase; reading an entry's
// content requires opening its envelope with the session secret.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
