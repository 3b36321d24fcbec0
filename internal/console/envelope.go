package console

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

const (
	consoleStream = "console"

	// DefaultTail is how many past log lines the API replays on subscribe.
	DefaultTail = 100
)

// Envelope is the outbound ConsoleStreamMessage.
type Envelope struct {
	Stream string      `json:"stream"`
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
}

// StartData is the payload of a console "start" request.
type StartData struct {
	Tail int `json:"tail"`
}

// NewEnvelope wraps data for the console stream.
func NewEnvelope(envType string, data interface{}) Envelope {
	return Envelope{Stream: consoleStream, Type: envType, Data: data}
}

// SubscribeEnvelope asks the API to start streaming console lines.
func SubscribeEnvelope() Envelope {
	return NewEnvelope("start", StartData{Tail: DefaultTail})
}

// CommandEnvelope wraps one console command line.
func CommandEnvelope(command string) Envelope {
	return NewEnvelope("command", command)
}

// Conn is the part of *websocket.Conn the console session needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

// Send serializes env and writes it as a single text frame.
func Send(conn Conn, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", env.Type, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("send %s envelope: %w", env.Type, err)
	}
	return nil
}
