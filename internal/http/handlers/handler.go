package handlers

import (
	"context"

	"playground_server/internal/domain"
	"playground_server/internal/game"
	"playground_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ResultReader is the read side of result persistence.
type ResultReader interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.GameResult, error)
	StatsByUser(ctx context.Context, userID int64) ([]domain.ResultStats, error)
}

type Handler struct {
	Hub      *ws.Hub
	Factory  *game.Factory
	Results  ResultReader // nil when persistence is disabled
	Upgrader *websocket.Upgrader
}

func NewHandler(hub *ws.Hub, factory *game.Factory, results ResultReader, allowedOrigin string) *Handler {
	return &Handler{
		Hub:      hub,
		Factory:  factory,
		Results:  results,
		Upgrader: ws.NewUpgrader(allowedOrigin),
	}
}

// getUserID reads the user_id stored by the JWT middleware.
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
