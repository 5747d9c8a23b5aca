package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/illarion/clipseal/internal/core"
	"github.com/illarion/clipseal/internal/crypto"
)

// SecretSave saves a passphrase to the OS keyring
func SecretSave(ctx context.Context) {
	session := NewSession(false)
	defer session.Close()

	password := core.GetPasswordFromEnv()
	if password == nil {
		var err error
		password, err = core.ReadPasswordConfirm()
		if err != nil {
			Fail(err)
		}
	}
	defer crypto.ClearBytes(password)

	if err := session.App.SaveSecret(ctx, string(password)); err != nil {
		HandleError(err)
	}

	success("Secret saved to keyring")
}

// SecretForget removes the passphrase from the OS keyring
func SecretForget(ctx context.Context) {
	session := NewSession(false)
	defer session.Close()

	if err := session.App.DeleteSavedSecret(ctx); err != nil {
		HandleError(err)
	}

	success("Secret removed from keyring")
}

// SecretStatus shows where a passphrase is available
func SecretStatus(ctx context.Context) {
	session := NewSession(false)
	defer session.Close()

	status, err := session.App.SecretStatus(ctx)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Device:      %s\n", session.Settings.DeviceName)
	fmt.Printf("Keyring:     %s\n", yesNo(status.Saved, "stored", "not stored"))
	fmt.Printf("Environment: %s\n", yesNo(core.GetPasswordFromEnv() != nil, core.EnvSecret+" set", "not set"))
}

func yesNo(ok bool, yes, no string) string {
	if ok {
		return color.GreenString(yes)
	}
	return color.YellowString(no)
}
