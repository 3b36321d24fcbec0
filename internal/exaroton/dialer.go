// Package exaroton opens console WebSocket sessions against the exaroton API.
package exaroton

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oremus-labs/exaroton-console/internal/config"
)

const (
	// DefaultBaseURL is the exaroton API root used for console sessions.
	DefaultBaseURL = "wss://api.exaroton.com/v1"
	// UserAgent identifies this client to the API.
	UserAgent = "exaroton-console/0.1.0"

	defaultHandshakeTimeout = 15 * time.Second
)

// Dialer performs the one-shot WebSocket handshake.
type Dialer struct {
	BaseURL          string
	UserAgent        string
	HandshakeTimeout time.Duration
}

// NewDialer returns a Dialer pointed at the public API.
func NewDialer() *Dialer {
	return &Dialer{
		BaseURL:          DefaultBaseURL,
		UserAgent:        UserAgent,
		HandshakeTimeout: defaultHandshakeTimeout,
	}
}

// ConsoleURL builds the websocket endpoint for server.
func (d *Dialer) ConsoleURL(server string) string {
	base := d.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/servers/" + url.PathEscape(server) + "/websocket"
}

// Dial opens the console session for cfg. There is no retry; the caller owns
// the returned connection.
func (d *Dialer) Dial(ctx context.Context, cfg *config.Config) (*websocket.Conn, error) {
	target := d.ConsoleURL(cfg.Server)

	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	agent := d.UserAgent
	if agent == "" {
		agent = UserAgent
	}

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}
	header := http.Header{}
	header.Set("User-Agent", agent)
	header.Set("Authorization", "Bearer "+cfg.Token)

	conn, resp, err := dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connect %s: %s: %w", target, resp.Status, err)
		}
		return nil, fmt.Errorf("connect %s: %w", target, err)
	}
	return conn, nil
}
