package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/illarion/clipseal/internal/clipboard"
	"github.com/illarion/clipseal/internal/crypto"
	"github.com/illarion/clipseal/internal/envelope"
	"github.com/illarion/clipseal/internal/keyring"
	"github.com/illarion/clipseal/internal/secret"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"secret not set", secret.ErrSecretNotSet, CodeSecretNotSet},
		{"not saved", keyring.ErrNotFound, CodeSecretNotSaved},
		{"keyring", fmt.Errorf("%w: %w", ErrKeyring, errors.New("dbus")), CodeKeyring},
		{"decrypt", crypto.ErrDecryption, CodeDecryptFailed},
		{"encoding", fmt.Errorf("salt: %w", envelope.ErrInvalidEncoding), CodeInvalidInput},
		{"utf8", envelope.ErrInvalidUTF8, CodeInvalidInput},
		{"nonce", &crypto.InvalidNonceError{Length: 11}, CodeInvalidInput},
		{"update", clipboard.ErrInvalidUpdate, CodeInvalidInput},
		{"request", ErrBadRequest, CodeInvalidInput},
		{"canceled", context.Canceled, CodeCanceled},
		{"deadline", context.DeadlineExceeded, CodeCanceled},
		{"lock", secret.ErrLockFailed, CodeInternal},
		{"kdf", crypto.ErrKeyDerivation, CodeInternal},
		{"unknown", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestPublicErrorHidesDetail(t *testing.T) {
	assert.Nil(t, PublicError(nil))

	err := fmt.Errorf("open /home/user/.secret: %w", errors.New("permission denied"))
	pub := PublicError(err)
	assert.Equal(t, CodeInternal, pub.Code)
	assert.Equal(t, "internal error", pub.Error())

	for code, msg := range publicMessages {
		assert.NotEmpty(t, msg, "code %s has no message", code)
	}
}
