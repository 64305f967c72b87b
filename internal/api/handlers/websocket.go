package handlers

import (
	"social-service/internal/api/middleware"
	"social-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *websocket.Hub
}

func NewWSHandler(hub *websocket.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket upgrades the connection and joins the caller's
// room. The room key is the user id the auth middleware resolved
// from the token; a client-announced id is never trusted.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.UserID(c)
	websocket.ServeWS(h.hub, c.Writer, c.Request, userID)
}
