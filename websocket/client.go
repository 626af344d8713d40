package websocket

import (
	"log"
	"time"

	"report-moderation/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client represents one connected dashboard
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	operator string
}

// RegisterClient wires a freshly upgraded connection into the hub. The
// initial snapshot is queued first so a new dashboard renders immediately
// instead of waiting for the next store change.
func (h *Hub) RegisterClient(conn *websocket.Conn, operator string, initial []models.Report) {
	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 16),
		operator: operator,
	}

	if data, err := encodeSnapshot(initial); err == nil {
		client.send <- data
	} else {
		log.Printf("Failed to marshal initial snapshot: %v", err)
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Dashboards are read-only over the socket; inbound frames only keep
		// the connection alive.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for operator %s: %v", c.operator, err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
