// Package realtime pushes journey views to a user's open websocket
// connections.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/pkg/logger"
	"github.com/Dias221467/Questline/pkg/metrics"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Message is the only frame the server sends.
type Message struct {
	Type string      `json:"type"`
	View engine.View `json:"view"`
}

const MessageSnapshot = "snapshot"

// Hub tracks connections per user. A user may have several tabs open.
type Hub struct {
	mu      sync.RWMutex
	clients map[primitive.ObjectID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[primitive.ObjectID]map[*Client]struct{})}
}

// Client is one websocket connection. Writes happen only in its write loop.
type Client struct {
	UserID primitive.ObjectID
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

// Register adds conn for userID and starts its write loop.
func (h *Hub) Register(userID primitive.ObjectID, conn *websocket.Conn) *Client {
	c := &Client{UserID: userID, hub: h, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	metrics.WSClients.Inc()
	logger.Log.WithField("user_id", userID.Hex()).Info("WebSocket connected")
	go c.writeLoop()
	return c
}

// Unregister removes the client and closes its connection. Safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	c.once.Do(func() {
		h.mu.Lock()
		if set := h.clients[c.UserID]; set != nil {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.UserID)
			}
		}
		h.mu.Unlock()

		close(c.send)
		metrics.WSClients.Dec()
		logger.Log.WithField("user_id", c.UserID.Hex()).Info("WebSocket disconnected")
	})
}

// Connections reports how many sockets the user has open.
func (h *Hub) Connections(userID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// PublishView sends view to every connection of userID. A client whose
// buffer is full is dropped rather than stalling the caller.
func (h *Hub) PublishView(userID primitive.ObjectID, view engine.View) {
	payload, err := json.Marshal(Message{Type: MessageSnapshot, View: view})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to encode snapshot")
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Log.WithField("user_id", userID.Hex()).Warn("Dropping slow websocket client")
		h.Unregister(c)
	}
}

// Close disconnects everyone.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.Unregister(c)
	}
}

// ReadLoop consumes frames until the peer goes away. Clients never send
// anything meaningful; reading keeps pongs and close frames flowing.
func (c *Client) ReadLoop() {
	defer c.hub.Unregister(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Log.WithError(err).Warn("WebSocket write failed")
				go c.hub.Unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				go c.hub.Unregister(c)
				return
			}
		}
	}
}
