package ws

import (
	"errors"

	"playground_server/internal/game"
)

// server → client
type SeatInfo struct {
	Seat      int    `json:"seat"`
	UserID    int64  `json:"user_id"`
	ModelName string `json:"model_name,omitempty"`
	IsHuman   bool   `json:"is_human"`
}

type MatchedPayload struct {
	RoomID   string        `json:"room_id"`
	GameType game.GameType `json:"game_type"`
	Seat     int           `json:"seat"`
	Players  []SeatInfo    `json:"players"`
}

type StatePayload struct {
	RoomID           string  `json:"room_id"`
	Iteration        int     `json:"iteration"`
	State            any     `json:"state"`
	Reward           float64 `json:"reward"`
	TimeoutTimestamp int64   `json:"timeout_timestamp"`
	GameOver         bool    `json:"game_over"`
}

type ErrorPayload struct {
	Kind    game.Kind `json:"kind"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message"`
}

type ResultPayload struct {
	RoomID     string    `json:"room_id"`
	Reason     string    `json:"reason"`
	Seat       int       `json:"seat"`
	Outcome    float64   `json:"outcome"`
	Reward     float64   `json:"reward"`
	Outcomes   []float64 `json:"outcomes"`
	Iterations int       `json:"iterations"`
}

func errorPayload(err error) ErrorPayload {
	var ge *game.Error
	if errors.As(err, &ge) {
		return ErrorPayload{Kind: ge.Kind, Reason: ge.Reason, Message: ge.Message}
	}
	return ErrorPayload{Kind: game.KindUnknown, Message: err.Error()}
}
