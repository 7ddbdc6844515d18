package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"github.com/gorider/gorider-api/pkg/logger"
	"github.com/gorider/gorider-api/pkg/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// HandleWebSocket handles GET /ws?userType=rider|driver|dashboard&userId=<email>
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	if h.Hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live feed unavailable"})
		return
	}

	userID := c.Query("userId")
	userType := c.Query("userType")
	switch userType {
	case websocket.TypeDashboard:
	case websocket.TypeRider, websocket.TypeDriver:
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "userType must be rider, driver or dashboard"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, userID, userType, h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
