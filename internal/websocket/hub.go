package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/intellijobs/api/internal/metrics"
	"github.com/intellijobs/api/internal/model"
)

// Client represents a WebSocket client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by user ID
	clients map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Broadcast messages to a user's room
	broadcast chan *model.Notification

	quit chan struct{}
	mu   sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *model.Notification, 256),
		quit:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for userID, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()
			metrics.WebsocketConnections.Inc()
			log.Printf("Client joined room %s", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			log.Printf("Client left room %s", client.UserID)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.UserID] {
				select {
				case client.Send <- msg.Message:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove expects h.mu to be held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	metrics.WebsocketConnections.Dec()
	if len(clients) == 0 {
		delete(h.clients, client.UserID)
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	close(h.quit)
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Send queues an encoded frame for every client in the user's room.
// Users without a connection simply miss it.
func (h *Hub) Send(userID string, message []byte) {
	select {
	case h.broadcast <- &model.Notification{UserID: userID, Message: message}:
	default:
		log.Printf("Broadcast queue full, dropping message for %s", userID)
	}
}

// Reply queues a frame for one client only. A client the hub already
// dropped is skipped.
func (h *Hub) Reply(client *Client, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client.UserID][client] {
		return
	}
	select {
	case client.Send <- message:
	default:
		log.Printf("Send buffer full, dropping reply for %s", client.UserID)
	}
}

// Connections returns the number of clients in a user's room.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(model.WSMessage{Event: event, Data: data})
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, userID string) {
	client := &Client{
		UserID: userID,
		Conn:   c,
		Send:   make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// The writer goroutine is not running yet, so the ack can go out directly.
	if ack, err := encode(model.EventConnected, model.ConnectedEvent{UserID: userID}); err == nil {
		if err := c.WriteMessage(websocket.TextMessage, ack); err != nil {
			return
		}
	}

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		h.handleMessage(client, message)
	}
}

// handleMessage answers client frames; only ping is understood.
func (h *Hub) handleMessage(client *Client, raw []byte) {
	var msg model.WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	if msg.Event == model.EventPing {
		if pong, err := encode(model.EventPong, nil); err == nil {
			h.Reply(client, pong)
		}
	}
}
