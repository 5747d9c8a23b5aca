package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/clipseal/internal/core"
	"github.com/illarion/clipseal/internal/envelope"
)

// readInput returns args joined by spaces, or all of stdin when args is empty
func readInput(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		Fail(err)
	}
	return string(data)
}

// Seal prints the envelope for text
func Seal(ctx context.Context, args []string) {
	text := readInput(args)

	session := NewSession(false)
	defer session.Close()
	session.Unlock(ctx)

	env, err := session.App.EncryptMessage(ctx, text)
	if err != nil {
		HandleError(err)
	}

	out, err := json.Marshal(env)
	if err != nil {
		Fail(err)
	}
	fmt.Println(string(out))
}

// Open prints the plaintext of an envelope
func Open(ctx context.Context, args []string) {
	input := readInput(args)

	var env envelope.Envelope
	if err := json.Unmarshal([]byte(strings.TrimSpace(input)), &env); err != nil {
		HandleError(fmt.Errorf("%w: %w", core.ErrBadRequest, err))
	}

	session := NewSession(false)
	defer session.Close()
	session.Unlock(ctx)

	plaintext, err := session.App.DecryptMessage(ctx, &env)
	if err != nil {
		HandleError(err)
	}
	fmt.Print(plaintext)
	if !strings.HasSuffix(plaintext, "\n") && core.IsTerminal() {
		fmt.Println()
	}
}
