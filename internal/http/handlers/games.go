package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListGames returns the game catalogue with supported player counts.
func (h *Handler) ListGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": h.Factory.Catalog()})
}

// GetRoom returns a live room summary, including the current move deadline.
func (h *Handler) GetRoom(c *gin.Context) {
	room, ok := h.Hub.Room(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, room.Summary())
}

// Lobby reports matchmaking load.
func (h *Handler) Lobby(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms":   h.Hub.Rooms(),
		"waiting": h.Hub.Waiting(),
	})
}
