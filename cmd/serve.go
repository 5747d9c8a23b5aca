package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/illarion/clipseal/internal/ipc"
)

// Serve answers JSON-lines requests on stdin until stdin closes or ctx ends.
// A passphrase from the environment or the keyring is loaded up front when present.
func Serve(ctx context.Context) {
	session := NewSession(true)
	defer session.Close()

	session.TryUnlock(ctx)

	server := ipc.NewServer(session.App, session.Settings.MaxConcurrency)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		Fail(err)
	}
}
