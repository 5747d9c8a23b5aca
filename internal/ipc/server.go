// Package ipc serves core commands over a JSON-lines stream.
//
// Each input line is one request; each output line is one response carrying
// the request id. Requests run concurrently, so responses may arrive out of
// order. Failures are always reported in their public form.
package ipc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/illarion/clipseal/internal/core"
	"github.com/illarion/clipseal/internal/logging"
)

var log = logging.For("ipc")

// MaxLineSize bounds a single request line
const MaxLineSize = 4 << 20

// Request is one command from the front end
type Request struct {
	ID      json.RawMessage `json:"id"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// Response answers one Request
type Response struct {
	ID     json.RawMessage `json:"id"`
	OK     bool            `json:"ok"`
	Result any             `json:"result,omitempty"`
	Error  *core.Error     `json:"error,omitempty"`
}

// Server dispatches requests to an App
type Server struct {
	app     *core.App
	limit   int
	maxLine int

	wmu sync.Mutex
	enc *json.Encoder
}

// NewServer creates a server running at most limit requests at once.
// A limit below one means one.
func NewServer(app *core.App, limit int) *Server {
	if limit < 1 {
		limit = 1
	}
	return &Server{app: app, limit: limit, maxLine: MaxLineSize}
}

// Serve reads requests from r and writes responses to w until r is
// exhausted or ctx is canceled. Requests already started are allowed to
// finish before Serve returns. Lines longer than MaxLineSize are discarded
// and answered with an invalid_input failure.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.enc = json.NewEncoder(w)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	lines := make(chan inputLine)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		readErr <- s.readLines(gCtx, r, lines)
	}()

	log.WithFields(logging.Operation("serve", "started")).Info("ipc server started")

loop:
	for {
		select {
		case <-gCtx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			g.Go(func() error {
				return s.write(s.handle(gCtx, line))
			})
		}
	}

	err := g.Wait()
	if err == nil {
		select {
		case err = <-readErr:
		default:
		}
	}
	if err == nil {
		err = ctx.Err()
	}

	log.WithFields(logging.Operation("serve", "stopped")).Info("ipc server stopped")
	return err
}

type inputLine struct {
	data    []byte
	tooLong bool
}

// readLines sends every non-empty line of r to lines. It stops at EOF, on a
// read error, or when ctx is done.
func (s *Server) readLines(ctx context.Context, r io.Reader, lines chan<- inputLine) error {
	br := bufio.NewReader(r)
	for {
		data, tooLong, err := readLine(br, s.maxLine)
		if len(data) > 0 || tooLong {
			select {
			case lines <- inputLine{data: data, tooLong: tooLong}:
			case <-ctx.Done():
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read request: %w", err)
		}
	}
}

// readLine reads up to the next newline. A line over limit bytes is
// consumed but not kept.
func readLine(br *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(bytes.TrimRight(chunk, "\r\n")) > limit {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return bytes.TrimRight(line, "\r\n"), tooLong, err
	}
}

func (s *Server) write(resp *Response) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) handle(ctx context.Context, line inputLine) *Response {
	if line.tooLong {
		return failure(nil, fmt.Errorf("%w: request exceeds %d bytes", core.ErrBadRequest, s.maxLine))
	}

	var req Request
	if err := json.Unmarshal(line.data, &req); err != nil {
		return failure(nil, fmt.Errorf("%w: %w", core.ErrBadRequest, err))
	}

	result, err := s.dispatch(ctx, &req)
	if err != nil {
		return failure(req.ID, err)
	}
	return &Response{ID: req.ID, OK: true, Result: result}
}

func failure(id json.RawMessage, err error) *Response {
	return &Response{ID: id, OK: false, Error: core.PublicError(err)}
}
