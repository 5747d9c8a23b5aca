// Package keyring persists the passphrase in the OS keyring.
// This is optional and separate from per-message cryptography.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "clipboard-sync"
	accountName = "default"
)

// ErrNotFound is returned when no passphrase is stored
var ErrNotFound = errors.New("secret not found in keyring")

// SaveSecret stores the passphrase in the OS keyring
func SaveSecret(secret string) error {
	if err := keyring.Set(serviceName, accountName, secret); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// LoadSecret retrieves the passphrase from the OS keyring
func LoadSecret() (string, error) {
	secret, err := keyring.Get(serviceName, accountName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read keyring: %w", err)
	}
	return secret, nil
}

// DeleteSecret removes the passphrase from the OS keyring.
// Deleting a missing entry returns ErrNotFound.
func DeleteSecret() error {
	if err := keyring.Delete(serviceName, accountName); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// HasSecret checks if a passphrase is stored in the keyring
func HasSecret() bool {
	_, err := keyring.Get(serviceName, accountName)
	return err == nil
}
