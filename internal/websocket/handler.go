package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws
// 身份来自 JWT middleware 注入的 "address"；allowQuery 时允许 ?userId= 用于本地调试
func ServeWS(hub *Hub, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("address")
		if userID == "" && allowQuery {
			userID = c.Query("userId")
		}
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := NewClient(userID, conn, hub)
		hub.join(client)

		go client.writePump()
		go client.readPump()
	}
}
