package tictactoe

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"playground_server/internal/game"
)

const (
	Empty   = -1
	Squares = 9
)

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type State struct {
	PlayerMoving   int64     `json:"player_moving"`
	ModelName      string    `json:"model_name"`
	PlayerMovingID int       `json:"player_moving_id"`
	Board          [3][3]int `json:"board"`
}

type Game struct {
	*game.Base

	players []game.Player

	mu      sync.RWMutex
	board   [Squares]int
	moves   int
	mover   int
	rewards []float64
	over    bool
	winner  int // seat index, Empty on a draw
}

var (
	_ game.Session   = (*Game)(nil)
	_ game.Forfeiter = (*Game)(nil)
)

func New(id string, roster game.Roster, opts game.Options) (*Game, error) {
	if roster.Len() != 2 {
		return nil, game.Errorf(game.KindConfiguration, "player_count", "tic-tac-toe needs 2 players, got %d", roster.Len())
	}
	g := &Game{
		Base:    game.NewBase(id, game.TypeTicTacToe, roster, opts),
		players: roster.All(),
		rewards: make([]float64, 2),
		winner:  Empty,
	}
	for i := range g.board {
		g.board[i] = Empty
	}
	return g, nil
}

func (g *Game) SubmitAction(action []byte, callerSID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.Advance(callerSID, func() error {
		return g.apply(action, callerSID)
	})
}

func (g *Game) apply(raw []byte, callerSID string) error {
	if g.over {
		return game.NewError(game.KindGameOver, "game already finished")
	}
	mover := g.players[g.mover]
	if mover.SID() != callerSID {
		return game.Errorf(game.KindInvalidTurn, "", "it is seat %d's turn", mover.Index)
	}

	square, err := parseSquare(raw)
	if err != nil {
		return err
	}
	if g.board[square] != Empty {
		return game.Errorf(game.KindInvalidMove, "occupied", "square %d is taken", square)
	}

	g.board[square] = mover.Index
	g.moves++

	if g.hasLine() {
		g.rewards[mover.Index] = 1
		g.rewards[1-mover.Index] = -1
		g.over = true
		g.winner = mover.Index
		g.Logger().Info("tic-tac-toe won", "winner", mover.Index, "moves", g.moves)
	} else if g.moves == Squares {
		g.over = true
		g.Logger().Info("tic-tac-toe drawn")
	}

	g.mover = 1 - g.mover
	return nil
}

// parseSquare accepts 4, "4" or {"square": 4}.
func parseSquare(raw []byte) (int, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, game.Wrap(game.KindInvalidActionSchema, "action is not valid JSON", err)
	}

	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, game.Wrap(game.KindInvalidActionSchema, "square must be a number", err)
		}
		n = float64(parsed)
	case map[string]any:
		f, ok := t["square"].(float64)
		if !ok {
			return 0, game.NewError(game.KindInvalidActionSchema, "square field missing")
		}
		n = f
	default:
		return 0, game.NewError(game.KindInvalidActionSchema, "unsupported action shape")
	}

	if n != float64(int(n)) || n < 0 || n >= Squares {
		return 0, game.Errorf(game.KindInvalidMove, "out_of_range", "square %v is not in [0, %d)", n, Squares)
	}
	return int(n), nil
}

func (g *Game) hasLine() bool {
	for _, l := range lines {
		a := g.board[l[0]]
		if a != Empty && a == g.board[l[1]] && a == g.board[l[2]] {
			return true
		}
	}
	return false
}

func (g *Game) Forfeit(playerIndex int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return game.NewError(game.KindGameOver, "game already finished")
	}
	if playerIndex != 0 && playerIndex != 1 {
		return game.Errorf(game.KindUnknownPlayer, "", "no seat %d", playerIndex)
	}
	g.over = true
	g.winner = 1 - playerIndex
	g.rewards[g.winner] = 1
	g.rewards[playerIndex] = -1
	return nil
}

func (g *Game) State(callerSID string, playerIndex int) (any, float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if playerIndex == game.MoverIndex {
		playerIndex = g.mover
	}
	if playerIndex != 0 && playerIndex != 1 {
		return nil, 0, game.Errorf(game.KindUnknownPlayer, "", "no seat %d", playerIndex)
	}

	mover := g.players[g.mover]
	st := State{
		PlayerMoving:   mover.UserID(),
		ModelName:      mover.ModelName(),
		PlayerMovingID: mover.Index,
	}
	for i, v := range g.board {
		st.Board[i/3][i%3] = v
	}
	return st, g.rewards[playerIndex], nil
}

func (g *Game) IsGameOver() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.over
}

// Outcome is 1 for a win, 0.5 for a draw and 0 for a loss.
func (g *Game) Outcome(playerIndex int) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.over || (playerIndex != 0 && playerIndex != 1) {
		return 0, false
	}
	switch g.winner {
	case Empty:
		return 0.5, true
	case playerIndex:
		return 1, true
	}
	return 0, true
}

func (g *Game) PlayerMoving() game.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.players[g.mover]
}

func Definition() game.Definition {
	return game.Definition{
		Type:           game.TypeTicTacToe,
		Players:        []int{2},
		DefaultPlayers: 2,
		New: func(id string, roster game.Roster, opts game.Options) (game.Session, error) {
			g, err := New(id, roster, opts)
			if err != nil {
				return nil, err
			}
			return g, nil
		},
	}
}
