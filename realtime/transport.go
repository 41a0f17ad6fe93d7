// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/xmidt-org/bascule/acquire"
	"golang.org/x/net/websocket"
)

var ErrInvalidURL = errors.New("realtime URL must use the ws or wss scheme")

const (
	DefaultURL    = "ws://localhost:9090"
	defaultOrigin = "http://localhost/"
)

// Conn is one physical connection to the realtime server. Receive blocks
// until a message arrives or the connection fails; Close unblocks it.
type Conn interface {
	Send(v any) error
	Receive() ([]byte, error)
	Close() error
}

// Transport opens connections to the realtime server.
type Transport interface {
	Dial(ctx context.Context) (Conn, error)
}

// WebsocketTransport dials the realtime server over a websocket.
type WebsocketTransport struct {
	url    string
	origin string
	auth   acquire.Acquirer
}

// NewWebsocketTransport creates a transport for the given ws:// or wss://
// URL. When auth is not nil its value is sent as the Authorization header of
// the handshake.
func NewWebsocketTransport(rawURL, origin string, auth acquire.Acquirer) (*WebsocketTransport, error) {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, err.Error())
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	if origin == "" {
		origin = defaultOrigin
	}
	return &WebsocketTransport{
		url:    rawURL,
		origin: origin,
		auth:   auth,
	}, nil
}

func (t *WebsocketTransport) Dial(ctx context.Context) (Conn, error) {
	cfg, err := websocket.NewConfig(t.url, t.origin)
	if err != nil {
		return nil, err
	}
	if t.auth != nil {
		value, err := t.auth.Acquire()
		if err != nil {
			return nil, fmt.Errorf("failed acquiring auth token: %w", err)
		}
		if value != "" {
			cfg.Header.Set("Authorization", value)
		}
	}

	ws, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	return &websocketConn{ws: ws}, nil
}

type websocketConn struct {
	ws *websocket.Conn
}

func (c *websocketConn) Send(v any) error {
	return websocket.JSON.Send(c.ws, v)
}

func (c *websocketConn) Receive() ([]byte, error) {
	var data []byte
	if err := websocket.Message.Receive(c.ws, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *websocketConn) Close() error {
	return c.ws.Close()
}
