package lbcsapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/logging"
)

// handshakeTimeout bounds the websocket upgrade
const handshakeTimeout = 5 * time.Second

// watchURL converts the HTTP base URL to the websocket feed URL.
func watchURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.JoinPath("ws").String(), nil
}

// Watch subscribes to the server's live state feed. Every snapshot the
// server pushes is delivered on the returned channel, which is closed when
// ctx ends or the connection drops.
func (c *Client) Watch(ctx context.Context) (<-chan grid.Snapshot, error) {
	endpoint, err := watchURL(c.BaseURL)
	if err != nil {
		return nil, newRequestError("watch", "invalid server URL", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, newHTTPError("watch", resp.StatusCode, "")
		}
		return nil, classifyTransportError("watch", err)
	}
	logging.LogConnection(endpoint, "watch_connected")

	out := make(chan grid.Snapshot)
	done := make(chan struct{})

	// Unblock ReadMessage when the caller goes away
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		defer func() { _ = conn.Close() }()

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					logging.Warn("Watch connection closed", zap.String("url", endpoint), zap.Error(err))
				}
				return
			}
			logging.LogWebSocketMessage(endpoint, "received", msgType, data)

			var snap grid.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				logging.Warn("Ignoring malformed state push", zap.Error(err))
				continue
			}

			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
