package handlers

import (
	"net/http"
	"strconv"

	"playground_server/internal/domain"
	"playground_server/internal/logger"

	"github.com/gin-gonic/gin"
)

// MyResults lists the caller's finished games and per-game stats.
func (h *Handler) MyResults(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if h.Results == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "result storage disabled"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	results, err := h.Results.ListByUser(ctx, userID, limit)
	if err != nil {
		logger.WithContext(ctx).Error("list results", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get results"})
		return
	}
	stats, err := h.Results.StatsByUser(ctx, userID)
	if err != nil {
		logger.WithContext(ctx).Warn("result stats", "user", userID, "error", err)
	}
	if results == nil {
		results = []domain.GameResult{}
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "stats": stats})
}
