package console

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeFrame struct {
	kind int
	data []byte
}

type fakeConn struct {
	frames   chan fakeFrame
	writes   chan []byte
	writeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan fakeFrame),
		writes: make(chan []byte, 16),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	frame, ok := <-f.frames
	if !ok {
		return 0, nil, io.EOF
	}
	return frame.kind, frame.data, nil
}

func (f *fakeConn) WriteMessage(kind int, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if kind != websocket.TextMessage {
		return errors.New("unexpected frame kind")
	}
	f.writes <- append([]byte(nil), data...)
	return nil
}

func (f *fakeConn) push(t *testing.T, payload string) {
	t.Helper()
	select {
	case f.frames <- fakeFrame{kind: websocket.TextMessage, data: []byte(payload)}:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out pushing frame %s", payload)
	}
}

func (f *fakeConn) nextWrite(t *testing.T) string {
	t.Helper()
	select {
	case data := <-f.writes:
		return string(data)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound envelope")
		return ""
	}
}

func (f *fakeConn) expectNoWrite(t *testing.T) {
	t.Helper()
	select {
	case data := <-f.writes:
		t.Fatalf("unexpected outbound envelope %s", data)
	default:
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-timeout:
			t.Fatalf("timed out waiting for %q in output %q", want, out.String())
		case <-ticker.C:
			if strings.Contains(out.String(), want) {
				return
			}
		}
	}
}
