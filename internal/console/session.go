// Package console implements the exaroton console stream client: decoding
// inbound frames, dispatching them, and relaying stdin lines as commands.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oremus-labs/exaroton-console/internal/logutil"
	"github.com/oremus-labs/exaroton-console/internal/metrics"
)

// dispatchMode decides what happens to the next inbound frame.
type dispatchMode int

const (
	dispatchNormal dispatchMode = iota
	// suppressNext skips the first frame after a command is sent, whatever
	// it contains.
	suppressNext
)

// Options configure a Session.
type Options struct {
	// ID tags log lines; a random one is generated when empty.
	ID        string
	Conn      Conn
	Input     io.Reader
	Output    io.Writer
	Publisher LinePublisher
}

// Session relays between one console connection and a line-oriented input.
type Session struct {
	id         string
	conn       Conn
	input      io.Reader
	dispatcher *Dispatcher
}

type frameResult struct {
	data []byte
	err  error
}

// NewSession wires a Session.
func NewSession(opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		id:         id,
		conn:       opts.Conn,
		input:      opts.Input,
		dispatcher: NewDispatcher(opts.Conn, opts.Output, opts.Publisher),
	}
}

// ID identifies the session in log lines.
func (s *Session) ID() string {
	return s.id
}

// Run serves whichever of the connection and the input is ready first until
// the connection fails, a write fails, or ctx is cancelled. Input errors only
// stop command relaying.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	frames := s.readFrames(done)
	lines := s.readLines(done)
	mode := dispatchNormal

	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-frames:
			if frame.err != nil {
				return fmt.Errorf("console session closed: %w", frame.err)
			}
			mode, err = s.handleFrame(ctx, mode, frame.data)
		case line, ok := <-lines:
			if !ok {
				lines = nil
				logutil.Debug("console input closed", map[string]interface{}{"session": s.id})
				continue
			}
			mode, err = s.handleLine(line)
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) handleFrame(ctx context.Context, mode dispatchMode, frame []byte) (dispatchMode, error) {
	if mode == suppressNext {
		metrics.ObserveFrame("", metrics.OutcomeSuppressed)
		return dispatchNormal, nil
	}
	msg, err := Decode(frame)
	if err != nil {
		metrics.ObserveFrame("", metrics.OutcomeMalformed)
		logutil.Debug("skipping console frame", map[string]interface{}{
			"session": s.id,
			"error":   err.Error(),
		})
		return dispatchNormal, nil
	}
	metrics.ObserveFrame(msg.Type(), metrics.OutcomeDispatched)
	return dispatchNormal, s.dispatcher.Dispatch(ctx, msg)
}

func (s *Session) handleLine(line string) (dispatchMode, error) {
	err := Send(s.conn, CommandEnvelope(line))
	metrics.ObserveEnvelope("command", err)
	if err != nil {
		return dispatchNormal, fmt.Errorf("send command: %w", err)
	}
	return suppressNext, nil
}

// readFrames delivers text frames until the connection fails. The final
// delivery carries the read error.
func (s *Session) readFrames(done <-chan struct{}) <-chan frameResult {
	out := make(chan frameResult)
	go func() {
		for {
			kind, data, err := s.conn.ReadMessage()
			if err == nil && kind != websocket.TextMessage {
				continue
			}
			select {
			case out <- frameResult{data: data, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

// maxInputFailures is how many consecutive failed reads end command relaying.
const maxInputFailures = 5

// readLines delivers input lines without their trailing newline. A failed
// read yields no line; the channel closes at EOF or after maxInputFailures
// consecutive failures.
func (s *Session) readLines(done <-chan struct{}) <-chan string {
	out := make(chan string)
	if s.input == nil {
		close(out)
		return out
	}
	go func() {
		defer close(out)
		reader := bufio.NewReader(s.input)
		failures := 0
		for {
			line, err := reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				failures++
				logutil.Warn("console input read failed", err, map[string]interface{}{
					"session":  s.id,
					"failures": failures,
				})
				if failures >= maxInputFailures {
					return
				}
				continue
			}
			failures = 0
			if err == nil || line != "" {
				select {
				case out <- strings.TrimSuffix(line, "\n"):
				case <-done:
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}
