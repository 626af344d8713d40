package handlers

import (
	"log"
	"net/http"

	"report-moderation/middleware"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ListenReports handles WebSocket connections for the live dashboard feed.
// Connected clients get the current full snapshot immediately and a complete
// replacement snapshot after every store change.
func (h *Handlers) ListenReports(c *gin.Context) {
	operator := middleware.OperatorFromContext(c, h.defaultOperator)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection to WebSocket: %v", err)
		return
	}

	reports, err := h.db.GetAllReports(c.Request.Context())
	if err != nil {
		// The client still connects; it will catch up on the next push.
		log.Printf("Failed to load initial snapshot: %v", err)
	}

	h.hub.RegisterClient(conn, operator, reports)
	log.Printf("WebSocket connection established for operator %s", operator)
}
