package console

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type recordingPublisher struct {
	lines     []string
	deadlines []bool
	err       error
}

func (p *recordingPublisher) PublishLine(ctx context.Context, line string) error {
	p.lines = append(p.lines, line)
	_, ok := ctx.Deadline()
	p.deadlines = append(p.deadlines, ok)
	return p.err
}

func TestDispatchReadySubscribes(t *testing.T) {
	conn := newFakeConn()
	var out bytes.Buffer
	d := NewDispatcher(conn, &out, nil)

	if err := d.Dispatch(context.Background(), Ready{}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := `{"stream":"console","type":"start","data":{"tail":100}}`
	if got := conn.nextWrite(t); got != want {
		t.Fatalf("expected %s got %s", want, got)
	}
	conn.expectNoWrite(t)
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestDispatchStartedOnlyConfirmsConsole(t *testing.T) {
	conn := newFakeConn()
	var out bytes.Buffer
	d := NewDispatcher(conn, &out, nil)

	for _, msg := range []Message{Started{Stream: "tick"}, Started{}, Started{Stream: "console"}} {
		if err := d.Dispatch(context.Background(), msg); err != nil {
			t.Fatalf("Dispatch(%#v): %v", msg, err)
		}
	}
	if got := out.String(); got != SubscribedNotice+"\n" {
		t.Fatalf("unexpected output %q", got)
	}
	conn.expectNoWrite(t)
}

func TestDispatchLinePrintsAndPublishes(t *testing.T) {
	conn := newFakeConn()
	var out bytes.Buffer
	pub := &recordingPublisher{err: errors.New("redis down")}
	d := NewDispatcher(conn, &out, pub)

	if err := d.Dispatch(context.Background(), Line{Data: "[12:00:00 INFO]: Done (3.2s)!"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got := out.String(); got != "[12:00:00 INFO]: Done (3.2s)!\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if len(pub.lines) != 1 || pub.lines[0] != "[12:00:00 INFO]: Done (3.2s)!" {
		t.Fatalf("unexpected published lines %v", pub.lines)
	}
	if !pub.deadlines[0] {
		t.Fatal("expected publish to run with a deadline")
	}
}

func TestDispatchIgnoresOtherMessages(t *testing.T) {
	conn := newFakeConn()
	var out bytes.Buffer
	d := NewDispatcher(conn, &out, nil)

	for _, msg := range []Message{KeepAlive{}, Unknown{Kind: "status"}, Unknown{Kind: "line"}} {
		if err := d.Dispatch(context.Background(), msg); err != nil {
			t.Fatalf("Dispatch(%#v): %v", msg, err)
		}
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
	conn.expectNoWrite(t)
}
