package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler delivers fire-and-forget event notifications: bet
// settlements and deposit/withdraw transitions to their user, and request
// notifications to connected admin consoles. It implements
// services.Notifier; a failed or absent connection is dropped silently and
// never affects the ledger transition that produced the event.
type WebSocketHandler struct {
	hub    *WebSocketHub
	logger zerolog.Logger
}

type WebSocketHub struct {
	clients    map[int64]*websocket.Conn
	admins     map[*websocket.Conn]bool
	register   chan *Client
	unregister chan *Client
	events     chan *Message
}

type Client struct {
	UserID  int64
	IsAdmin bool
	Conn    *websocket.Conn
}

type Message struct {
	Type    string `json:"type"`
	UserID  int64  `json:"user_id,omitempty"`
	ToAdmin bool   `json:"-"`
	Data    any    `json:"data"`
}

func NewWebSocketHandler(logger zerolog.Logger) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[int64]*websocket.Conn),
		admins:     make(map[*websocket.Conn]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{hub: hub, logger: logger}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to upgrade to websocket")
		return
	}

	client := &Client{UserID: userID, Conn: conn}
	h.serve(client)
}

// HandleAdminWebSocket registers an admin console connection. The route is
// guarded by an admin signature check at wiring time.
func (h *WebSocketHandler) HandleAdminWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to upgrade admin websocket")
		return
	}

	client := &Client{IsAdmin: true, Conn: conn}
	h.serve(client)
}

func (h *WebSocketHandler) serve(client *Client) {
	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		client.Conn.Close()
	}()

	for {
		var msg Message
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug().Err(err).Int64("user_id", client.UserID).Msg("websocket closed")
			}
			break
		}

		if msg.Type == "PING" {
			client.Conn.WriteJSON(Message{Type: "PONG", Data: gin.H{"timestamp": time.Now().Unix()}})
		}
	}
}

// NotifyUser implements services.Notifier.
func (h *WebSocketHandler) NotifyUser(userID int64, event string, payload any) {
	select {
	case h.hub.events <- &Message{Type: event, UserID: userID, Data: payload}:
	default:
		h.logger.Warn().Str("event", event).Msg("notification queue full, event dropped")
	}
}

// NotifyAdmin implements services.Notifier.
func (h *WebSocketHandler) NotifyAdmin(event string, payload any) {
	select {
	case h.hub.events <- &Message{Type: event, ToAdmin: true, Data: payload}:
	default:
		h.logger.Warn().Str("event", event).Msg("notification queue full, event dropped")
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			if client.IsAdmin {
				hub.admins[client.Conn] = true
			} else {
				hub.clients[client.UserID] = client.Conn
			}

		case client := <-hub.unregister:
			if client.IsAdmin {
				delete(hub.admins, client.Conn)
			} else if hub.clients[client.UserID] == client.Conn {
				delete(hub.clients, client.UserID)
			}

		case message := <-hub.events:
			hub.deliver(message)
		}
	}
}

func (hub *WebSocketHub) deliver(message *Message) {
	if message.ToAdmin {
		for conn := range hub.admins {
			conn.WriteJSON(message)
		}
		return
	}

	if conn, ok := hub.clients[message.UserID]; ok {
		conn.WriteJSON(message)
	}
}
