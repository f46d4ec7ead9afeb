package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/OldStager01/hostmon/internal/logger"
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	topics map[MessageType]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, topics []MessageType) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.settings.ClientBuffer),
	}
	c.setTopics(topics)
	return c
}

func (c *Client) setTopics(topics []MessageType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.topics = make(map[MessageType]bool, len(topics))
	for _, t := range topics {
		c.topics[t] = true
	}
}

// wants reports whether the client accepts msgType. An empty filter
// accepts everything.
func (c *Client) wants(msgType MessageType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.topics) == 0 || c.topics[msgType]
}

func (c *Client) ReadPump() {
	settings := c.hub.settings
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(settings.PongWait))
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
	settings := c.hub.settings
	ticker := time.NewTicker(settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		c.setTopics(msg.Topics)
		c.sendConfirmation("subscribed", msg.Topics)
	case "unsubscribe":
		c.setTopics(nil)
		c.sendConfirmation("unsubscribed", nil)
	}
}

func (c *Client) sendConfirmation(action string, topics []MessageType) {
	confirmation := NewMessage(messageTypeSubscription, "", map[string]interface{}{
		"action": action,
		"topics": topics,
	})
	select {
	case c.send <- confirmation.JSON():
	default:
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

// ServeWebSocket upgrades the request and attaches the connection to hub.
// Repeated "topic" query parameters set the initial filter.
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.ReadBufferSize,
		WriteBufferSize: hub.settings.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(c *gin.Context) {
		if hub.ClientCount() >= hub.settings.MaxConnections {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many websocket connections"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorCtxf(c.Request.Context(), "WebSocket upgrade failed: %v", err)
			return
		}

		var topics []MessageType
		for _, t := range c.QueryArray("topic") {
			topics = append(topics, MessageType(t))
		}

		logger.InfoCtxf(c.Request.Context(), "WebSocket subscription from %s (topics: %v)", c.ClientIP(), topics)

		client := NewClient(hub, conn, topics)
		if !hub.Register(client) {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
