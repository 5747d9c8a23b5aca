// Package secret holds the session passphrase.
//
// The passphrase lives in a memguard enclave (encrypted while at rest in
// memory) behind a mutex. Callers get a locked copy per operation and must
// Destroy it; the store never hands out its own storage.
package secret

import (
	"errors"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

var (
	ErrSecretNotSet = errors.New("secret not set")
	ErrLockFailed   = errors.New("lock acquisition failed")
)

// Store is the single passphrase slot of a session. The zero value is an
// empty, usable store.
type Store struct {
	mu       sync.Mutex
	enclave  *memguard.Enclave
	set      bool
	poisoned bool
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{}
}

// Set replaces the current passphrase. The passphrase slice is wiped.
func (s *Store) Set(passphrase []byte) error {
	return s.withLock(func() error {
		// NewEnclave returns nil for an empty passphrase; set tracks presence
		s.enclave = memguard.NewEnclave(passphrase)
		s.set = true
		return nil
	})
}

// Get returns a copy of the passphrase in a locked buffer.
// The caller must Destroy the buffer.
func (s *Store) Get() (*memguard.LockedBuffer, error) {
	var buf *memguard.LockedBuffer
	err := s.withLock(func() error {
		if !s.set {
			return ErrSecretNotSet
		}
		if s.enclave == nil {
			buf = memguard.NewBuffer(0)
			return nil
		}

		b, err := s.enclave.Open()
		if err != nil {
			panic(fmt.Errorf("failed to open secret enclave: %w", err))
		}
		buf = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Clear removes the passphrase. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	return s.withLock(func() error {
		s.reset()
		return nil
	})
}

// IsSet reports whether a passphrase is held. A poisoned store reports false.
func (s *Store) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set && !s.poisoned
}

// Recover clears a poisoned store so it can be used again. The slot is left empty.
func (s *Store) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.poisoned = false
}

func (s *Store) reset() {
	s.enclave = nil
	s.set = false
}

// withLock runs fn under the store mutex. A panic inside fn poisons the
// store: the slot is dropped and this and every later call fail with
// ErrLockFailed until Recover.
func (s *Store) withLock(fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return ErrLockFailed
	}

	defer func() {
		if r := recover(); r != nil {
			s.reset()
			s.poisoned = true
			err = ErrLockFailed
		}
	}()

	return fn()
}
