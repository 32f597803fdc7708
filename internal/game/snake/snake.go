package snake

import (
	"encoding/json"
	"math/rand"
	"strings"
	"sync"

	"playground_server/internal/game"
)

const (
	GridSize = 10

	moveCost   = -0.01
	appleBonus = 1
	deathCost  = -1
)

// Cell is an (x, y) grid position; y grows downwards.
type Cell [2]int

var directions = map[string]Cell{
	"N": {0, -1},
	"E": {1, 0},
	"S": {0, 1},
	"W": {-1, 0},
}

type State struct {
	PlayerMoving   int64  `json:"player_moving"`
	ModelName      string `json:"model_name"`
	PlayerMovingID int    `json:"player_moving_id"`
	Apple          Cell   `json:"apple"`
	Snake          []Cell `json:"snake"` // tail first, head last
	Heading        string `json:"heading"`
}

// Game is a single-player snake on a GridSize x GridSize board.
type Game struct {
	*game.Base

	player game.Player
	rng    *rand.Rand

	mu      sync.RWMutex
	body    []Cell
	apple   Cell
	heading string
	reward  float64
	over    bool
}

var (
	_ game.Session   = (*Game)(nil)
	_ game.Forfeiter = (*Game)(nil)
)

func New(id string, roster game.Roster, opts game.Options) (*Game, error) {
	if roster.Len() != 1 {
		return nil, game.Errorf(game.KindConfiguration, "player_count", "snake needs 1 player, got %d", roster.Len())
	}
	p, _ := roster.At(0)
	return &Game{
		Base:    game.NewBase(id, game.TypeSnake, roster, opts),
		player:  p,
		rng:     opts.RandOrDefault(),
		body:    []Cell{{1, 1}},
		apple:   Cell{GridSize / 4, GridSize / 4},
		heading: "E",
	}, nil
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
	if g.player.SID() != callerSID {
		return game.NewError(game.KindInvalidTurn, "not your snake")
	}

	dir, err := parseMove(raw)
	if err != nil {
		return err
	}
	delta := directions[dir]
	head := g.body[len(g.body)-1]
	next := Cell{head[0] + delta[0], head[1] + delta[1]}

	g.heading = dir
	g.reward = moveCost

	if !inside(next) {
		g.die("wall", next)
		return nil
	}

	if next == g.apple {
		g.body = append(g.body, next)
		g.reward = appleBonus
		if !g.placeApple() {
			g.over = true
			g.Logger().Info("snake filled the board", "length", len(g.body))
		}
		return nil
	}

	// the tail moves out of the way before the head can hit it
	body := append(g.body[1:len(g.body):len(g.body)], next)
	if occupies(body[:len(body)-1], next) {
		g.die("self", next)
		return nil
	}
	g.body = body
	return nil
}

func (g *Game) die(cause string, at Cell) {
	g.reward = deathCost
	g.over = true
	g.Logger().Info("snake died", "cause", cause, "at", at, "length", len(g.body))
}

// placeApple puts the apple on a random free cell. It reports false when
// the snake covers the whole board.
func (g *Game) placeApple() bool {
	free := make([]Cell, 0, GridSize*GridSize-len(g.body))
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			if c := (Cell{x, y}); !occupies(g.body, c) {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return false
	}
	g.apple = free[g.rng.Intn(len(free))]
	return true
}

// parseMove accepts "N" or {"move": "N"}, case-insensitively.
func parseMove(raw []byte) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", game.Wrap(game.KindInvalidActionSchema, "action is not valid JSON", err)
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case map[string]any:
		m, ok := t["move"].(string)
		if !ok {
			return "", game.NewError(game.KindInvalidActionSchema, "move field missing")
		}
		s = m
	default:
		return "", game.NewError(game.KindInvalidActionSchema, "unsupported action shape")
	}

	s = strings.ToUpper(strings.TrimSpace(s))
	if _, ok := directions[s]; !ok {
		return "", game.Errorf(game.KindInvalidMove, "unknown_direction", `move must be one of "N", "E", "S" or "W", got %q`, s)
	}
	return s, nil
}

func inside(c Cell) bool {
	return c[0] >= 0 && c[0] < GridSize && c[1] >= 0 && c[1] < GridSize
}

func occupies(cells []Cell, c Cell) bool {
	for _, b := range cells {
		if b == c {
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
	if playerIndex != 0 {
		return game.Errorf(game.KindUnknownPlayer, "", "no seat %d", playerIndex)
	}
	g.over = true
	g.reward = deathCost
	return nil
}

func (g *Game) State(callerSID string, playerIndex int) (any, float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if playerIndex != game.MoverIndex && playerIndex != 0 {
		return nil, 0, game.Errorf(game.KindUnknownPlayer, "", "no seat %d", playerIndex)
	}
	return State{
		PlayerMoving:   g.player.UserID(),
		ModelName:      g.player.ModelName(),
		PlayerMovingID: g.player.Index,
		Apple:          g.apple,
		Snake:          append([]Cell(nil), g.body...),
		Heading:        g.heading,
	}, g.reward, nil
}

func (g *Game) IsGameOver() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.over
}

// Outcome is the snake's final length.
func (g *Game) Outcome(playerIndex int) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.over || playerIndex != 0 {
		return 0, false
	}
	return float64(len(g.body)), true
}

func (g *Game) PlayerMoving() game.Player { return g.player }

func Definition() game.Definition {
	return game.Definition{
		Type:           game.TypeSnake,
		Players:        []int{1},
		DefaultPlayers: 1,
		New: func(id string, roster game.Roster, opts game.Options) (game.Session, error) {
			g, err := New(id, roster, opts)
			if err != nil {
				return nil, err
			}
			return g, nil
		},
	}
}
