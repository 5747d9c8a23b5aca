package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/illarion/clipseal/internal/config"
	"github.com/illarion/clipseal/internal/core"
	"github.com/illarion/clipseal/internal/crypto"
	"github.com/illarion/clipseal/internal/keyring"
	"github.com/illarion/clipseal/internal/logging"
	"github.com/illarion/clipseal/internal/storage"
)

var log = logging.For("cmd")

// exit wipes protected memory before the process ends
var exit = memguard.SafeExit

var errHistoryDisabled = errors.New("history is disabled (history_path is empty)")

// Session is an App set up from the user's settings
type Session struct {
	App      *core.App
	Settings *config.Settings
	history  *storage.Storage
}

// NewSession loads settings, configures logging and creates an App.
// withHistory opens the history database as well.
func NewSession(withHistory bool) *Session {
	path, err := config.DefaultPath()
	if err != nil {
		Fail(err)
	}
	settings, err := config.Load(path)
	if err != nil {
		Fail(err)
	}
	if err := logging.Setup(settings.LogLevel, settings.LogFormat, os.Stderr); err != nil {
		Fail(err)
	}

	s := &Session{Settings: settings}

	var opts []core.Option
	if withHistory && settings.HistoryPath != "" {
		db, err := openHistory(settings.HistoryPath)
		if err != nil {
			Fail(err)
		}
		s.history = db
		opts = append(opts, core.WithHistory(db))
	}

	s.App = core.New(settings, opts...)
	return s
}

func openHistory(path string) (*storage.Storage, error) {
	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	initialized, err := db.IsInitialized()
	if err != nil {
		db.Close()
		return nil, err
	}
	if initialized {
		return db, nil
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("path", path).Info("history database created")
	return db, nil
}

// History returns the history database or exits when it is disabled
func (s *Session) History() *storage.Storage {
	if s.history == nil {
		Fail(errHistoryDisabled)
	}
	return s.history
}

// Close drops the session secret and closes the history database
func (s *Session) Close() {
	s.App.Close()
	if s.history != nil {
		s.history.Close()
	}
}

// Unlock puts a passphrase into the session.
// Sources in order: CLIPSEAL_SECRET, the OS keyring, a terminal prompt.
// A prompted passphrase is saved to the keyring when save_secret is set.
func (s *Session) Unlock(ctx context.Context) {
	if password := core.GetPasswordFromEnv(); password != nil {
		defer crypto.ClearBytes(password)
		if err := s.App.SetSecret(ctx, string(password)); err != nil {
			HandleError(err)
		}
		return
	}

	err := s.App.LoadSecret(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, core.ErrKeyring) {
		HandleError(err)
	}

	password, err := core.ReadPassword("Enter secret: ")
	if err != nil {
		Fail(err)
	}
	defer crypto.ClearBytes(password)

	if err := s.App.SetSecret(ctx, string(password)); err != nil {
		HandleError(err)
	}

	if s.Settings.SaveSecret {
		if err := s.App.SaveSecret(ctx, string(password)); err != nil {
			warn("could not save secret to keyring")
		}
	}
}

// TryUnlock is Unlock without the prompt. Returns false when no passphrase was found.
func (s *Session) TryUnlock(ctx context.Context) bool {
	if password := core.GetPasswordFromEnv(); password != nil {
		defer crypto.ClearBytes(password)
		return s.App.SetSecret(ctx, string(password)) == nil
	}
	return s.App.LoadSecret(ctx) == nil
}

// HandleError reports a command failure in its public form and exits
func HandleError(err error) {
	pub := core.PublicError(err)
	failure(pub.Message)

	switch pub.Code {
	case core.CodeSecretNotSet:
		hint("Set " + core.EnvSecret + " or run 'clipseal secret save'")
	case core.CodeSecretNotSaved:
		hint("Run 'clipseal secret save' first")
	case core.CodeKeyring:
		hint("Use " + core.EnvSecret + " when no OS keyring is available")
	case core.CodeDecryptFailed:
		hint("Wrong secret, or the message was modified")
	}
	exit(1)
}

// Fail reports a local setup error with its detail and exits
func Fail(err error) {
	failure(fmt.Sprintf("Error: %s", err))
	exit(1)
}
