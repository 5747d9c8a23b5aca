package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/sirupsen/logrus"

	"github.com/illarion/clipseal/internal/clipboard"
	"github.com/illarion/clipseal/internal/config"
	"github.com/illarion/clipseal/internal/envelope"
	"github.com/illarion/clipseal/internal/keyring"
	"github.com/illarion/clipseal/internal/logging"
	"github.com/illarion/clipseal/internal/secret"
	"github.com/illarion/clipseal/internal/storage"
)

var log = logging.For("core")

// SecretStatus reports where a secret is available
type SecretStatus struct {
	Session bool `json:"session"`
	Saved   bool `json:"saved"`
}

// secretStore is the session passphrase slot
type secretStore interface {
	Set(passphrase []byte) error
	Get() (*memguard.LockedBuffer, error)
	Clear() error
	IsSet() bool
	Recover()
}

// App holds one session: the passphrase slot and everything that uses it.
// All methods are safe for concurrent use.
type App struct {
	settings  *config.Settings
	secrets   secretStore
	codec     *envelope.Codec
	clipboard *clipboard.Service
	history   *storage.Storage
}

// Option configures an App
type Option func(*App)

// WithHistory records clipboard updates in db
func WithHistory(db *storage.Storage) Option {
	return func(a *App) {
		a.history = db
	}
}

// New creates an App with an empty secret store
func New(settings *config.Settings, opts ...Option) *App {
	if settings == nil {
		settings = config.Defaults()
	}

	a := &App{
		settings: settings,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.secrets == nil {
		a.secrets = secret.NewStore()
	}

	a.codec = envelope.NewCodec(a.secrets)

	var clipOpts []clipboard.Option
	if a.history != nil {
		clipOpts = append(clipOpts, clipboard.WithHistory(a.history, settings.HistoryLimit))
	}
	a.clipboard = clipboard.NewService(a.codec, settings.DeviceName, clipOpts...)

	return a
}

// Settings returns the settings the App was created with
func (a *App) Settings() *config.Settings {
	return a.settings
}

// History returns the history database, or nil when history is disabled
func (a *App) History() *storage.Storage {
	return a.history
}

// SetSecret replaces the session passphrase. A store left unusable by an
// internal failure is reset, so setting a secret is how a session recovers.
func (a *App) SetSecret(ctx context.Context, passphrase string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := a.storeSecret(passphrase)
	logResult("set_secret", err)
	return err
}

// ClearSecret removes the session passphrase and forgets the last clipboard
// update seen under it. It also resets a store left unusable by an internal failure.
func (a *App) ClearSecret(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := a.secrets.Clear()
	if errors.Is(err, secret.ErrLockFailed) {
		a.recoverSecrets()
		err = nil
	}
	a.clipboard.Reset()
	logResult("clear_secret", err)
	return err
}

// EncryptMessage seals plaintext under the session passphrase
func (a *App) EncryptMessage(ctx context.Context, plaintext string) (*envelope.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Seal wipes its input
	env, err := a.codec.Seal([]byte(plaintext))
	logResult("encrypt_message", err, logrus.Fields{"size": len(plaintext)})
	return env, err
}

// DecryptMessage opens env under the session passphrase
func (a *App) DecryptMessage(ctx context.Context, env *envelope.Envelope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	plaintext, err := a.codec.Open(env)
	logResult("decrypt_message", err)
	return plaintext, err
}

// SaveSecret stores passphrase in the OS keyring. The session is not changed.
func (a *App) SaveSecret(ctx context.Context, passphrase string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := keyring.SaveSecret(passphrase)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrKeyring, err)
	}
	logResult("save_secret", err)
	return err
}

// LoadSecret moves the passphrase saved in the OS keyring into the session.
// The passphrase is never returned to the caller.
func (a *App) LoadSecret(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	passphrase, err := keyring.LoadSecret()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrKeyring, err)
		}
		logResult("load_secret", err)
		return err
	}

	err = a.storeSecret(passphrase)
	logResult("load_secret", err)
	return err
}

// DeleteSavedSecret removes the passphrase from the OS keyring.
// Deleting when nothing is saved is not an error.
func (a *App) DeleteSavedSecret(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := keyring.DeleteSecret()
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		err = nil
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrKeyring, err)
	}
	logResult("delete_secret", err)
	return err
}

// SecretStatus reports whether a secret is in the session and in the keyring
func (a *App) SecretStatus(ctx context.Context) (*SecretStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &SecretStatus{
		Session: a.secrets.IsSet(),
		Saved:   keyring.HasSecret(),
	}, nil
}

// PublishClipboard seals content into a clipboard update
func (a *App) PublishClipboard(ctx context.Context, content string) (*clipboard.SealedUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := a.clipboard.Publish(content)
	logResult("publish_clipboard", err)
	return u, err
}

// ReceiveClipboard opens a clipboard update from a peer
func (a *App) ReceiveClipboard(ctx context.Context, u *clipboard.SealedUpdate) (*clipboard.Update, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	update, dup, err := a.clipboard.Receive(u)
	logResult("receive_clipboard", err, logrus.Fields{"duplicate": dup})
	return update, dup, err
}

// OpenRecord opens the content of a history record
func (a *App) OpenRecord(ctx context.Context, rec *storage.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := a.codec.Open(&rec.Payload)
	logResult("open_record", err, logrus.Fields{"seq": rec.Seq})
	return content, err
}

// storeSecret puts passphrase in the store, resetting the store once if it
// was left unusable by an internal failure
func (a *App) storeSecret(passphrase string) error {
	err := a.secrets.Set([]byte(passphrase))
	if errors.Is(err, secret.ErrLockFailed) {
		a.recoverSecrets()
		err = a.secrets.Set([]byte(passphrase))
	}
	return err
}

func (a *App) recoverSecrets() {
	a.secrets.Recover()
	log.WithFields(logging.Operation("recover_secret", "ok")).Warn("secret store was unusable and has been reset")
}

// Close drops the session passphrase
func (a *App) Close() error {
	return a.secrets.Clear()
}

// logResult logs the outcome of a command by error code only
func logResult(operation string, err error, fields ...logrus.Fields) {
	if err == nil {
		log.WithFields(logging.Operation(operation, "ok", fields...)).Debug("command completed")
		return
	}
	log.WithFields(logging.Operation(operation, "failed", fields...)).
		WithField("error_code", CodeOf(err)).
		Warn("command failed")
}
