package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultFeedURL is Angel One's production smart-stream websocket.
const DefaultFeedURL = "wss://smartapisocket.angelone.in/smart-stream"

// Auth carries the credentials the feed socket is dialed with.
type Auth struct {
	AuthToken  string
	APIKey     string
	ClientCode string
	FeedToken  string
}

// Conn is the minimal surface of a live-data socket connection. The
// service only ever reads whole messages, writes the subscribe request,
// and closes.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens feed connections. Swapped for a fake in tests so the
// service's state machine is testable without a live socket.
type Dialer interface {
	Dial(ctx context.Context, auth Auth) (Conn, error)
}

// WebsocketDialer dials the real SmartAPI feed over a gorilla websocket.
type WebsocketDialer struct {
	URL              string
	HandshakeTimeout time.Duration
}

// NewWebsocketDialer creates a dialer for the given feed URL, defaulting
// to the production endpoint.
func NewWebsocketDialer(url string) *WebsocketDialer {
	if url == "" {
		url = DefaultFeedURL
	}
	return &WebsocketDialer{URL: url, HandshakeTimeout: 10 * time.Second}
}

// Dial opens the socket with the session's feed credentials in headers.
func (d *WebsocketDialer) Dial(ctx context.Context, auth Auth) (Conn, error) {
	header := http.Header{}
	header.Set("Authorization", auth.AuthToken)
	header.Set("x-api-key", auth.APIKey)
	header.Set("x-client-code", auth.ClientCode)
	header.Set("x-feed-token", auth.FeedToken)

	dialer := websocket.Dialer{HandshakeTimeout: d.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, d.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (HTTP %s)", d.URL, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", d.URL, err)
	}
	return &wsConn{conn: conn}, nil
}

// wsConn adapts *websocket.Conn to the Conn interface.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteJSON(v any) error {
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
