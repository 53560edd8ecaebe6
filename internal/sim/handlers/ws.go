package handlers

import (
	"net/http"
	"strings"

	greenhouse "greenhouse_console"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsConnect authenticates the socket before upgrading; the hub owns the
// connection afterwards.
func (h *Handler) wsConnect(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		token = strings.TrimSpace(c.Query("token"))
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.services.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	user, err := h.services.GetUser(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}
	if user.Status == greenhouse.StatusBanned {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account is banned"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	h.hub.Register(conn, user.ID, user.Username, user.Role)
}
