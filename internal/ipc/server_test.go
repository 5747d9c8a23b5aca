package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/illarion/clipseal/internal/config"
	"github.com/illarion/clipseal/internal/core"
	"github.com/illarion/clipseal/internal/envelope"
)

type reply struct {
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  *core.Error     `json:"error"`
}

func newServer(t *testing.T) *Server {
	t.Helper()
	settings := config.Defaults()
	settings.DeviceName = "test"
	return NewServer(core.New(settings), 4)
}

// run feeds lines to a fresh server and returns replies keyed by id
func run(t *testing.T, s *Server, lines ...string) map[string]reply {
	t.Helper()
	var out bytes.Buffer
	err := s.Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, err)

	replies := make(map[string]reply)
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var r reply
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		replies[r.ID] = r
	}
	return replies
}

func request(id, command string, args any) string {
	req := map[string]any{"id": id, "command": command}
	if args != nil {
		req["args"] = args
	}
	b, _ := json.Marshal(req)
	return string(b)
}

func TestEncryptDecryptOverIPC(t *testing.T) {
	s := newServer(t)

	replies := run(t, s, request("1", "set_secret", map[string]string{"secret": "pw1"}))
	require.True(t, replies["1"].OK)

	replies = run(t, s, request("2", "encrypt_message", map[string]string{"plaintext": "hello"}))
	require.True(t, replies["2"].OK, "error: %+v", replies["2"].Error)

	var env envelope.Envelope
	require.NoError(t, json.Unmarshal(replies["2"].Result, &env))
	require.NoError(t, env.Validate())

	replies = run(t, s, request("3", "decrypt_message", map[string]any{"payload": env}))
	require.True(t, replies["3"].OK)

	var plaintext string
	require.NoError(t, json.Unmarshal(replies["3"].Result, &plaintext))
	assert.Equal(t, "hello", plaintext)
}

func TestErrorsArePublic(t *testing.T) {
	s := newServer(t)

	replies := run(t, s,
		request("1", "encrypt_message", map[string]string{"plaintext": "x"}),
		request("2", "no_such_command", nil),
		request("3", "set_secret", nil),
		`{not json`,
	)

	assert.False(t, replies["1"].OK)
	assert.Equal(t, &core.Error{Code: core.CodeSecretNotSet, Message: "no secret is set"}, replies["1"].Error)

	assert.Equal(t, core.CodeInvalidInput, replies["2"].Error.Code)
	assert.Equal(t, core.CodeInvalidInput, replies["3"].Error.Code)

	// unparseable lines are answered with a null id
	assert.Equal(t, core.CodeInvalidInput, replies[""].Error.Code)
}

func TestDecryptFailuresIndistinguishable(t *testing.T) {
	s := newServer(t)
	run(t, s, request("1", "set_secret", map[string]string{"secret": "pw1"}))
	replies := run(t, s, request("2", "encrypt_message", map[string]string{"plaintext": "hello"}))

	var env envelope.Envelope
	require.NoError(t, json.Unmarshal(replies["2"].Result, &env))

	tampered := env
	ct := []byte(tampered.Ciphertext)
	if ct[0] == 'A' {
		ct[0] = 'B'
	} else {
		ct[0] = 'A'
	}
	tampered.Ciphertext = string(ct)

	replies = run(t, s, request("3", "decrypt_message", map[string]any{"payload": tampered}))
	run(t, s, request("4", "set_secret", map[string]string{"secret": "pw2"}))
	wrong := run(t, s, request("5", "decrypt_message", map[string]any{"payload": env}))

	assert.Equal(t, replies["3"].Error, wrong["5"].Error)
	assert.Equal(t, core.CodeDecryptFailed, wrong["5"].Error.Code)
}

func TestConcurrentRequests(t *testing.T) {
	s := newServer(t)
	run(t, s, request("init", "set_secret", map[string]string{"secret": "pw"}))

	const n = 16
	lines := make([]string, n)
	for i := range lines {
		lines[i] = request(fmt.Sprint(i), "encrypt_message", map[string]string{"plaintext": fmt.Sprint("msg ", i)})
	}
	replies := run(t, s, lines...)
	require.Len(t, replies, n)

	for i := 0; i < n; i++ {
		r, ok := replies[fmt.Sprint(i)]
		require.True(t, ok, "missing reply %d", i)
		assert.True(t, r.OK)
	}
}

func TestSecretCommands(t *testing.T) {
	gokeyring.MockInit()
	s := newServer(t)

	replies := run(t, s,
		request("1", "save_secret", map[string]string{"secret": "stored"}),
	)
	require.True(t, replies["1"].OK)

	replies = run(t, s, request("2", "load_secret", nil))
	require.True(t, replies["2"].OK)
	assert.Empty(t, replies["2"].Result, "the secret is never returned")

	replies = run(t, s, request("3", "secret_status", nil))
	var status core.SecretStatus
	require.NoError(t, json.Unmarshal(replies["3"].Result, &status))
	assert.True(t, status.Session)
	assert.True(t, status.Saved)

	replies = run(t, s,
		request("4", "delete_secret", nil),
	)
	require.True(t, replies["4"].OK)

	replies = run(t, s, request("5", "unset_secret", nil))
	require.True(t, replies["5"].OK)

	replies = run(t, s, request("6", "load_secret", nil))
	assert.Equal(t, core.CodeSecretNotSaved, replies["6"].Error.Code)
}

func TestClipboardCommands(t *testing.T) {
	sender := newServer(t)
	receiver := newServer(t)
	for _, s := range []*Server{sender, receiver} {
		run(t, s, request("0", "set_secret", map[string]string{"secret": "shared"}))
	}

	replies := run(t, sender, request("1", "publish_clipboard", map[string]string{"content": "copied"}))
	require.True(t, replies["1"].OK)
	var sealed json.RawMessage = replies["1"].Result

	replies = run(t, receiver, request("2", "receive_clipboard", sealed))
	require.True(t, replies["2"].OK, "error: %+v", replies["2"].Error)

	var got ReceiveResult
	require.NoError(t, json.Unmarshal(replies["2"].Result, &got))
	assert.False(t, got.Duplicate)
	assert.Equal(t, "copied", got.Update.Content)

	replies = run(t, receiver, request("3", "receive_clipboard", sealed))
	require.NoError(t, json.Unmarshal(replies["3"].Result, &got))
	assert.True(t, got.Duplicate)
}

func TestServeStopsOnCancel(t *testing.T) {
	s := newServer(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, pr, io.Discard)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestOversizedRequestKeepsServing(t *testing.T) {
	gokeyring.MockInit()
	// one at a time so secret_status sees set_secret
	s := NewServer(core.New(config.Defaults()), 1)

	huge := request("2", "encrypt_message", map[string]string{"plaintext": strings.Repeat("a", MaxLineSize)})
	replies := run(t, s,
		request("1", "set_secret", map[string]string{"secret": "pw"}),
		huge,
		request("3", "secret_status", nil),
	)

	require.Len(t, replies, 3)
	assert.True(t, replies["1"].OK)
	assert.True(t, replies["3"].OK, "requests after an oversized line are still answered")

	tooLong := replies[""]
	assert.False(t, tooLong.OK)
	assert.Equal(t, core.CodeInvalidInput, tooLong.Error.Code)

	var status core.SecretStatus
	require.NoError(t, json.Unmarshal(replies["3"].Result, &status))
	assert.True(t, status.Session, "the session survives an oversized line")
}

func TestReadLineDiscardsLongLines(t *testing.T) {
	input := "short\n" + strings.Repeat("x", 100) + "\r\nnext\r\nlast"
	br := bufio.NewReaderSize(strings.NewReader(input), 16)

	line, tooLong, err := readLine(br, 20)
	require.NoError(t, err)
	assert.False(t, tooLong)
	assert.Equal(t, "short", string(line))

	line, tooLong, err = readLine(br, 20)
	require.NoError(t, err)
	assert.True(t, tooLong)
	assert.Empty(t, line)

	line, tooLong, err = readLine(br, 20)
	require.NoError(t, err)
	assert.False(t, tooLong)
	assert.Equal(t, "next", string(line))

	line, tooLong, err = readLine(br, 20)
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, tooLong)
	assert.Equal(t, "last", string(line))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteFailureStopsReader(t *testing.T) {
	s := newServer(t)
	before := runtime.NumGoroutine()

	pr, pw := io.Pipe()
	line := []byte(request("1", "secret_status", nil) + "\n")
	go func() {
		for i := 0; i < 3; i++ {
			if _, err := pw.Write(line); err != nil {
				return
			}
		}
	}()

	err := s.Serve(context.Background(), pr, failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write response")

	pw.Close()
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 5*time.Second, 10*time.Millisecond, "reader goroutine leaked")
}

func TestReadLinesStopsWhenNobodyListens(t *testing.T) {
	s := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.readLines(ctx, strings.NewReader("a\nb\n"), make(chan inputLine))
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("readLines blocked after cancel")
	}
}
