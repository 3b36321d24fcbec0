package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel console lines are mirrored to.
const DefaultChannel = "exaroton-console-lines"

// Event is one mirrored console line.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Server    string    `json:"server"`
	Session   string    `json:"session,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      string    `json:"data"`
}

// Options configure the bus.
type Options struct {
	Client  redis.UniversalClient
	Channel string
	Server  string
	Session string
}

// Bus publishes console lines to Redis pub/sub.
type Bus struct {
	client  redis.UniversalClient
	channel string
	server  string
	session string
}

// NewBus creates a bus. A nil client makes PublishLine a no-op.
func NewBus(opts Options) *Bus {
	channel := opts.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Bus{
		client:  opts.Client,
		channel: channel,
		server:  opts.Server,
		session: opts.Session,
	}
}

// Channel reports the Redis channel in use.
func (b *Bus) Channel() string {
	return b.channel
}

// NewEvent wraps line in an Event stamped for this bus.
func (b *Bus) NewEvent(line string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      "console.line",
		Server:    b.server,
		Session:   b.session,
		Timestamp: time.Now().UTC(),
		Data:      line,
	}
}

// PublishLine mirrors one console line.
func (b *Bus) PublishLine(ctx context.Context, line string) error {
	if b.client == nil {
		return nil
	}
	payload, err := json.Marshal(b.NewEvent(line))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (b *Bus) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}
