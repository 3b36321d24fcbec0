package console

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedMessage marks an inbound frame that is not an object with a
// string "type" field.
var ErrMalformedMessage = errors.New("malformed console message")

const inboundSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string"}
  }
}`

var inboundSchemaLoader = gojsonschema.NewStringLoader(inboundSchema)

// Message is one decoded inbound frame. The concrete type is one of Ready,
// Started, Line, KeepAlive or Unknown.
type Message interface {
	Type() string
	message()
}

// Ready is sent by the API once the session is authenticated.
type Ready struct{}

// Started acknowledges a stream subscription.
type Started struct {
	Stream string
}

// Line carries one console log line.
type Line struct {
	Data string
}

// KeepAlive is a periodic heartbeat.
type KeepAlive struct{}

// Unknown is any other well-formed message.
type Unknown struct {
	Kind string
}

func (Ready) Type() string     { return "ready" }
func (Started) Type() string   { return "started" }
func (Line) Type() string      { return "line" }
func (KeepAlive) Type() string { return "keep-alive" }
func (u Unknown) Type() string { return u.Kind }

func (Ready) message()     {}
func (Started) message()   {}
func (Line) message()      {}
func (KeepAlive) message() {}
func (Unknown) message()   {}

type rawMessage struct {
	Type   string          `json:"type"`
	Stream json.RawMessage `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// Decode validates a text frame and converts it to a Message. Frames failing
// validation return an error wrapping ErrMalformedMessage.
func Decode(frame []byte) (Message, error) {
	result, err := gojsonschema.Validate(inboundSchemaLoader, gojsonschema.NewBytesLoader(frame))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if !result.Valid() {
		var reason string
		if errs := result.Errors(); len(errs) > 0 {
			reason = errs[0].String()
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedMessage, reason)
	}

	var raw rawMessage
	if err := json.Unmarshal(frame, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch raw.Type {
	case "ready":
		return Ready{}, nil
	case "started":
		stream, _ := stringField(raw.Stream)
		return Started{Stream: stream}, nil
	case "line":
		if data, ok := stringField(raw.Data); ok {
			return Line{Data: data}, nil
		}
		return Unknown{Kind: raw.Type}, nil
	case "keep-alive":
		return KeepAlive{}, nil
	default:
		return Unknown{Kind: raw.Type}, nil
	}
}

func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}
