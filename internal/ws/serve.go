package ws

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"

	"playground_server/internal/game"
)

// NewUpgrader accepts any origin when allowedOrigin is empty.
func NewUpgrader(allowedOrigin string) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}
}

// ParseJoinRequest reads game, players, model and human from a connect URL.
// Connections that name a model are treated as agents unless human=true.
func ParseJoinRequest(q url.Values) (JoinRequest, error) {
	req := JoinRequest{
		GameType:  game.GameType(q.Get("game")),
		ModelName: q.Get("model"),
	}
	if req.GameType == "" {
		req.GameType = game.TypeCodenames
	}

	if v := q.Get("players"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return JoinRequest{}, game.Errorf(game.KindConfiguration, "player_count", "players must be a positive integer, got %q", v)
		}
		req.Players = n
	}

	req.IsHuman = req.ModelName == ""
	if v := q.Get("human"); v != "" {
		human, err := strconv.ParseBool(v)
		if err != nil {
			return JoinRequest{}, game.Errorf(game.KindConfiguration, "human", "human must be a boolean, got %q", v)
		}
		req.IsHuman = human
	}
	return req, nil
}

// Serve runs a client on an upgraded connection and blocks until it closes.
func (h *Hub) Serve(conn *websocket.Conn, userID int64, req JoinRequest) {
	NewClient(userID, conn, h, req).Run()
}
