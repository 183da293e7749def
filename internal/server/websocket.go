package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/littlebull/lbcs/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 512

	// Snapshots queued per subscriber before it is dropped as too slow
	sendBuffer = 16
)

// subscriber is one websocket client of the state feed.
type subscriber struct {
	conn       *websocket.Conn
	remoteAddr string
	send       chan []byte
	closeOnce  sync.Once
}

func (c *subscriber) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// hub fans snapshots out to subscribers.
type hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*subscriber]struct{})}
}

func (h *hub) add(c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[c] = struct{}{}
}

func (h *hub) remove(c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[c]; ok {
		delete(h.subs, c)
		c.close()
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// broadcast queues data for every subscriber, dropping the ones whose
// queue is full.
func (h *hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.subs {
		select {
		case c.send <- data:
		default:
			logging.Warn("Dropping slow subscriber", zap.String("remote_addr", c.remoteAddr))
			delete(h.subs, c)
			c.close()
		}
	}
}

// closeAll disconnects every subscriber.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.subs {
		delete(h.subs, c)
		c.close()
	}
}

// changed pushes the current state to subscribers.
func (s *Server) changed() {
	data, err := json.Marshal(s.wall.Snapshot())
	if err != nil {
		logging.Error("Failed to encode snapshot", zap.Error(err))
		return
	}
	s.hub.broadcast(data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		logging.Warn("WebSocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	logging.LogConnection(r.RemoteAddr, "websocket_upgraded")

	c := &subscriber{conn: conn, remoteAddr: r.RemoteAddr, send: make(chan []byte, sendBuffer)}

	// the first message is the state at connect time
	if data, err := json.Marshal(s.wall.Snapshot()); err == nil {
		c.send <- data
	}
	s.hub.add(c)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.writePump(c)
	}()
	go func() {
		defer s.wg.Done()
		s.readPump(c)
	}()
}

// readPump discards client messages and notices when the peer goes away.
func (s *Server) readPump(c *subscriber) {
	defer func() {
		s.hub.remove(c)
		logging.LogConnection(c.remoteAddr, "websocket_closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("WebSocket read error", zap.String("remote_addr", c.remoteAddr), zap.Error(err))
			}
			return
		}
		logging.LogWebSocketMessage(c.remoteAddr, "received", msgType, data)
	}
}

// writePump owns all writes to the connection.
func (s *Server) writePump(c *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Info("WebSocket write failed", zap.String("remote_addr", c.remoteAddr), zap.Error(err))
				s.hub.remove(c)
				return
			}
			logging.LogWebSocketMessage(c.remoteAddr, "sent", websocket.TextMessage, data)

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.hub.remove(c)
				return
			}
		}
	}
}
