package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/illarion/clipseal/internal/clipboard"
	"github.com/illarion/clipseal/internal/core"
	"github.com/illarion/clipseal/internal/envelope"
)

type secretArgs struct {
	Secret string `json:"secret"`
}

type encryptArgs struct {
	Plaintext string `json:"plaintext"`
}

type decryptArgs struct {
	Payload *envelope.Envelope `json:"payload"`
}

type publishArgs struct {
	Content string `json:"content"`
}

// ReceiveResult is the result of receive_clipboard
type ReceiveResult struct {
	Duplicate bool              `json:"duplicate"`
	Update    *clipboard.Update `json:"update,omitempty"`
}

type handlerFunc func(ctx context.Context, app *core.App, args json.RawMessage) (any, error)

var handlers = map[string]handlerFunc{
	"set_secret":        setSecret,
	"clear_secret":      clearSecret,
	"unset_secret":      clearSecret,
	"encrypt_message":   encryptMessage,
	"decrypt_message":   decryptMessage,
	"save_secret":       saveSecret,
	"load_secret":       loadSecret,
	"delete_secret":     deleteSecret,
	"secret_status":     secretStatus,
	"publish_clipboard": publishClipboard,
	"receive_clipboard": receiveClipboard,
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, error) {
	h, ok := handlers[req.Command]
	if !ok {
		return nil, fmt.Errorf("%w: unknown command", core.ErrBadRequest)
	}
	return h(ctx, s.app, req.Args)
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing arguments", core.ErrBadRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", core.ErrBadRequest, err)
	}
	return nil
}

func setSecret(ctx context.Context, app *core.App, raw json.RawMessage) (any, error) {
	var args secretArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return nil, app.SetSecret(ctx, args.Secret)
}

func clearSecret(ctx context.Context, app *core.App, _ json.RawMessage) (any, error) {
	return nil, app.ClearSecret(ctx)
}

func encryptMessage(ctx context.Context, app *core.App, raw json.RawMessage) (any, error) {
	var args encryptArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	env, err := app.EncryptMessage(ctx, args.Plaintext)
	if err != nil {
		return nil, err
	}
	return env, nil
}

func decryptMessage(ctx context.Context, app *core.App, raw json.RawMessage) (any, error) {
	var args decryptArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	plaintext, err := app.DecryptMessage(ctx, args.Payload)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

func saveSecret(ctx context.Context, app *core.App, raw json.RawMessage) (any, error) {
	var args secretArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return nil, app.SaveSecret(ctx, args.Secret)
}

func loadSecret(ctx context.Context, app *core.App, _ json.RawMessage) (any, error) {
	return nil, app.LoadSecret(ctx)
}

func deleteSecret(ctx context.Context, app *core.App, _ json.RawMessage) (any, error) {
	return nil, app.DeleteSavedSecret(ctx)
}

func secretStatus(ctx context.Context, app *core.App, _ json.RawMessage) (any, error) {
	status, err := app.SecretStatus(ctx)
	if err != nil {
		return nil, err
	}
	return status, nil
}

func publishClipboard(ctx context.Context, app *core.App, raw json.RawMessage) (any, error) {
	var args publishArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	u, err := app.PublishClipboard(ctx, args.Content)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func receiveClipboard(ctx context.Context, app *core.App, raw json.RawMessage) (any, error) {
	var sealed clipboard.SealedUpdate
	if err := decodeArgs(raw, &sealed); err != nil {
		return nil, err
	}
	update, dup, err := app.ReceiveClipboard(ctx, &sealed)
	if err != nil {
		return nil, err
	}
	return &ReceiveResult{Duplicate: dup, Update: update}, nil
}
