package core

import (
	"context"
	"errors"

	"github.com/illarion/clipseal/internal/clipboard"
	"github.com/illarion/clipseal/internal/crypto"
	"github.com/illarion/clipseal/internal/envelope"
	"github.com/illarion/clipseal/internal/keyring"
	"github.com/illarion/clipseal/internal/secret"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrKeyring    = errors.New("keyring unavailable")
)

// Code identifies a class of failure shown to the front end
type Code string

const (
	CodeSecretNotSet   Code = "secret_not_set"
	CodeSecretNotSaved Code = "secret_not_saved"
	CodeKeyring        Code = "keyring_unavailable"
	CodeInvalidInput   Code = "invalid_input"
	CodeDecryptFailed  Code = "decrypt_failed"
	CodeCanceled       Code = "canceled"
	CodeInternal       Code = "internal"
)

// Error is the only error form that leaves the process boundary.
// Messages are fixed per code and never carry internal detail.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

var publicMessages = map[Code]string{
	CodeSecretNotSet:   "no secret is set",
	CodeSecretNotSaved: "no saved secret",
	CodeKeyring:        "secret storage unavailable",
	CodeInvalidInput:   "invalid message",
	CodeDecryptFailed:  "failed to decrypt message",
	CodeCanceled:       "request canceled",
	CodeInternal:       "internal error",
}

// CodeOf classifies err. Unknown errors are internal.
func CodeOf(err error) Code {
	var nonceErr *crypto.InvalidNonceError
	switch {
	case errors.Is(err, secret.ErrSecretNotSet):
		return CodeSecretNotSet
	case errors.Is(err, keyring.ErrNotFound):
		return CodeSecretNotSaved
	case errors.Is(err, ErrKeyring):
		return CodeKeyring
	case errors.Is(err, crypto.ErrDecryption):
		return CodeDecryptFailed
	case errors.Is(err, envelope.ErrInvalidEncoding),
		errors.Is(err, envelope.ErrInvalidUTF8),
		errors.Is(err, clipboard.ErrInvalidUpdate),
		errors.Is(err, ErrBadRequest),
		errors.As(err, &nonceErr):
		return CodeInvalidInput
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		// secret.ErrLockFailed, key derivation and encryption failures
		return CodeInternal
	}
}

// PublicError collapses err into its generic boundary form. Returns nil for nil.
func PublicError(err error) *Error {
	if err == nil {
		return nil
	}
	code := CodeOf(err)
	return &Error{Code: code, Message: publicMessages[code]}
}
