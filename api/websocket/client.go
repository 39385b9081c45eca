package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/pkg/config"
)

const maxMessageSize = 512

// settings holds connection timing derived from the loaded config.
type settings struct {
	writeWait    time.Duration
	pongWait     time.Duration
	pingPeriod   time.Duration
	readBuffer   int
	writeBuffer  int
	clientBuffer int
}

func newSettings(cfg config.WebSocketConfig) settings {
	s := settings{
		writeWait:    10 * time.Second,
		pongWait:     60 * time.Second,
		readBuffer:   1024,
		writeBuffer:  1024,
		clientBuffer: 256,
	}
	if cfg.WriteTimeout > 0 {
		s.writeWait = cfg.WriteTimeout
	}
	if cfg.PongTimeout > 0 {
		s.pongWait = cfg.PongTimeout
	}
	if cfg.ReadBufferSize > 0 {
		s.readBuffer = cfg.ReadBufferSize
	}
	if cfg.WriteBufferSize > 0 {
		s.writeBuffer = cfg.WriteBufferSize
	}
	if cfg.ClientBuffer > 0 {
		s.clientBuffer = cfg.ClientBuffer
	}
	s.pingPeriod = (s.pongWait * 9) / 10
	if cfg.PingInterval > 0 && cfg.PingInterval < s.pongWait {
		s.pingPeriod = cfg.PingInterval
	}
	return s
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	settings settings

	// Subscribed event types; empty means all.
	filter   map[string]bool
	filterMu sync.RWMutex
}

type IncomingMessage struct {
	Type   string   `json:"type"`
	Events []string `json:"events,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.settings.clientBuffer),
		settings: hub.settings,
		filter:   make(map[string]bool),
	}
}

func (c *Client) wants(eventType string) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	if len(c.filter) == 0 {
		return true
	}
	return c.filter[eventType]
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.settings.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.settings.pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.settings.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.settings.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		c.filterMu.Lock()
		for _, eventType := range msg.Events {
			c.filter[eventType] = true
		}
		c.filterMu.Unlock()
		c.sendConfirmation("subscribed", msg.Events)
	case "unsubscribe":
		c.filterMu.Lock()
		if len(msg.Events) == 0 {
			c.filter = make(map[string]bool)
		} else {
			for _, eventType := range msg.Events {
				delete(c.filter, eventType)
			}
		}
		c.filterMu.Unlock()
		c.sendConfirmation("unsubscribed", msg.Events)
	}
}

func (c *Client) sendConfirmation(action string, eventTypes []string) {
	confirmation := map[string]interface{}{
		"type":      "subscription_update",
		"action":    action,
		"events":    eventTypes,
		"timestamp": time.Now(),
	}
	data, err := json.Marshal(confirmation)
	if err != nil {
		logger.Errorf("Failed to marshal confirmation: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

// ServeWebSocket upgrades the connection and starts the client pumps.
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.readBuffer,
		WriteBufferSize: hub.settings.writeBuffer,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
