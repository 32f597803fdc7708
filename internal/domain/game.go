package domain

import "time"

// GameResult is one seat's record of a finished session.
type GameResult struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	GameType   string    `db:"game_type" json:"game_type"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Seat       int       `db:"seat" json:"seat"`
	ModelName  string    `db:"model_name" json:"model_name,omitempty"`
	IsHuman    bool      `db:"is_human" json:"is_human"`
	Outcome    float64   `db:"outcome" json:"outcome"`
	Reward     float64   `db:"reward" json:"reward"`
	Iterations int       `db:"iterations" json:"iterations"`
	Reason     string    `db:"reason" json:"reason"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Won reports a full win; draws score 0.5.
func (r GameResult) Won() bool { return r.Outcome >= 1 }

// ResultStats aggregates a user's results for one game type.
type ResultStats struct {
	GameType string  `json:"game_type"`
	Played   int     `json:"played"`
	Wins     int     `json:"wins"`
	Score    float64 `json:"score"`
}
