package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/oremus-labs/exaroton-console/internal/logutil"
	"github.com/oremus-labs/exaroton-console/internal/metrics"
)

// SubscribedNotice is printed once the console stream is running.
const SubscribedNotice = "Subscribed to console stream."

// publishTimeout bounds each mirrored line so a slow publisher cannot stall
// the relay loop.
const publishTimeout = 2 * time.Second

// LinePublisher mirrors console lines somewhere besides stdout.
type LinePublisher interface {
	PublishLine(ctx context.Context, line string) error
}

// Dispatcher reacts to decoded inbound messages.
type Dispatcher struct {
	conn      Conn
	out       io.Writer
	publisher LinePublisher
}

// NewDispatcher builds a Dispatcher. publisher may be nil.
func NewDispatcher(conn Conn, out io.Writer, publisher LinePublisher) *Dispatcher {
	return &Dispatcher{conn: conn, out: out, publisher: publisher}
}

// Dispatch handles msg. Only failures to write to the connection or to out
// are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	switch m := msg.(type) {
	case Ready:
		err := Send(d.conn, SubscribeEnvelope())
		metrics.ObserveEnvelope("start", err)
		if err != nil {
			return fmt.Errorf("subscribe to console stream: %w", err)
		}
	case Started:
		if m.Stream != consoleStream {
			return nil
		}
		if _, err := fmt.Fprintln(d.out, SubscribedNotice); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	case Line:
		if _, err := fmt.Fprintln(d.out, m.Data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		d.publish(ctx, m.Data)
	case KeepAlive, Unknown:
	}
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, line string) {
	if d.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err := d.publisher.PublishLine(ctx, line)
	metrics.ObservePublish(err)
	if err != nil {
		logutil.Warn("console line publish failed", err, nil)
	}
}
