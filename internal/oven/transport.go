package oven

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const maxFrameSize = 1 << 20 // 1 MB

// Conn is the part of a websocket connection the client uses. Close may be
// called concurrently with ReadMessage and WriteJSON.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

// Dialer opens gateway connections.
type Dialer interface {
	Dial(ctx context.Context, rawURL string, header http.Header) (Conn, error)
}

type websocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebsocketDialer returns a Dialer negotiating the given sub-protocol.
func NewWebsocketDialer(subprotocol string, handshakeTimeout time.Duration) Dialer {
	return &websocketDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
			Subprotocols:     []string{subprotocol},
		},
	}
}

func (d *websocketDialer) Dial(ctx context.Context, rawURL string, header http.Header) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, rawURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial gateway (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial gateway: %w", err)
	}
	conn.SetReadLimit(maxFrameSize)
	return conn, nil
}
