package wshub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Client message types.
const (
	TypeStart   = "start"
	TypeAnswer  = "answer"
	TypeRestart = "restart"
)

// Server message types.
const (
	TypeState = "state"
	TypeCue   = "cue"
	TypeError = "error"
)

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type  string `json:"t"`
	Name  string `json:"n,omitempty"`
	Value string `json:"v,omitempty"`
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type  string `json:"t"`
	Cue   string `json:"c,omitempty"`
	State any    `json:"s,omitempty"`
	Error string `json:"e,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{ID: id, Conn: conn, Send: make(chan []byte, 16)}
}

// send enqueues data unless the client is closed or its buffer is full.
func (c *Client) send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// close closes Send once. Later sends are dropped.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// ReadPump decodes client messages and hands each to handle until the
// connection closes or ctx ends. A handler error is reported to the client
// and does not end the loop. Malformed JSON closes the connection.
func (c *Client) ReadPump(ctx context.Context, handle func(ClientMessage) error) error {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, c.Conn, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if err := handle(msg); err != nil {
			c.Queue(ServerMessage{Type: TypeError, Error: err.Error()})
		}
	}
}

// Queue encodes msg onto the client's Send channel. Non-blocking: drops if
// full or after the client was unregistered.
func (c *Client) Queue(msg ServerMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal error", "component", "wshub", "err", err)
		return false
	}
	return c.send(data)
}

// Hub tracks the WebSocket connections attached to one game.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		c.close()
		delete(h.clients, id)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every client. Non-blocking: drops if channel full.
func (h *Hub) Broadcast(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal error", "component", "wshub", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		c.send(data) // drops if full
	}
}

// CloseAll closes every connection with a going-away status. The close
// handshakes run after the hub lock is released.
func (h *Hub) CloseAll(reason string) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
		if c.Conn != nil {
			c.Conn.Close(websocket.StatusGoingAway, reason)
		}
	}
}
