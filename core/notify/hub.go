package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"partyfm/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MessageType marks the kind of event pushed to connected party screens.
type MessageType string

const (
	MsgTypePing MessageType = "ping" // Heartbeat
	MsgTypePong MessageType = "pong" // Heartbeat reply

	MsgTypeMusicUpdate    MessageType = "music_update"    // Queue changed
	MsgTypeLibraryUpdate  MessageType = "library_update"  // Library index changed
	MsgTypeSearchActivity MessageType = "search_activity" // A guest searched
)

// WSMessage is the wire envelope for every hub message.
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// Client is one connected party screen.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	ID   string

	// Closed by the hub when the client is dropped. The hub never closes
	// Send: both pumps may still be sending on it, and a send on a closed
	// channel panics.
	done chan struct{}
}

// NewClient wraps a freshly upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, 64),
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// Hub fans events out to every connected client. There is one party, so
// there is one broadcast domain.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu   sync.RWMutex
	done chan struct{}
}

// NewHub creates the notification hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run drives the hub main loop until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastAll(msg)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop shuts the hub down and closes every connection.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	logger.Info("[Notify] Client connected",
		logger.String("client", client.ID),
		logger.Int("clients", len(h.clients)))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.done)
		logger.Info("[Notify] Client disconnected",
			logger.String("client", client.ID),
			logger.Int("clients", len(h.clients)))
	}
}

func (h *Hub) broadcastAll(message []byte) {
	h.mu.RLock()
	clientList := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	for _, client := range clientList {
		select {
		case client.Send <- message:
		default:
			// Send buffer full, drop the client. Done inline: this already
			// runs on the hub loop, so going through the channel would
			// deadlock it.
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.done)
	}
	h.clients = make(map[*Client]bool)
}

// Register hands a new client to the hub loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub loop.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount reports how many screens are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Broadcast marshals the payload into the wire envelope and fans it out.
// A marshal failure is logged and dropped; notifications are best-effort.
func (h *Hub) Broadcast(msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("[Notify] Failed to marshal broadcast payload",
			logger.String("type", string(msgType)),
			logger.ErrorField(err))
		return
	}

	msg := &WSMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		logger.Warn("[Notify] Failed to marshal broadcast envelope",
			logger.ErrorField(err))
		return
	}

	select {
	case h.broadcast <- raw:
	case <-h.done:
	}
}

// ReadPump consumes client messages until the connection dies. Clients only
// ever send heartbeats; anything else is ignored.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, message, err := c.Conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Warn("[Notify] Websocket read error",
						logger.String("client", c.ID),
						logger.ErrorField(err))
				}
				return
			}

			var msg WSMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				logger.Warn("[Notify] Invalid message format",
					logger.String("client", c.ID),
					logger.ErrorField(err))
				continue
			}

			if msg.Type == MsgTypePing {
				// Best-effort reply; Send stays open for the lifetime of the
				// client, so this cannot panic even after the hub drops it.
				pong := &WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()}
				if data, err := json.Marshal(pong); err == nil {
					select {
					case c.Send <- data:
					default:
					}
				}
			}
		}
	}
}

// WritePump pushes hub messages to the connection and keeps it alive with
// periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			// Hub dropped or shut down this client.
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Fold queued messages into the same frame.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
