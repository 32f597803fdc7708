package handlers

import (
	"net/http"

	"playground_server/internal/logger"
	"playground_server/internal/ws"

	"github.com/gin-gonic/gin"
)

// WS upgrades an authenticated request and hands the connection to the hub.
// Query: game (default codenames), players, model, human.
func (h *Handler) WS(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	req, err := ws.ParseJoinRequest(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Players != 0 && !h.Factory.Supports(req.GameType, req.Players) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported game or player count"})
		return
	}
	if _, known := h.Factory.DefaultPlayers(req.GameType); !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game type"})
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("ws upgrade error", "error", err)
		return
	}

	go h.Hub.Serve(conn, userID, req)
}
