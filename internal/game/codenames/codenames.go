// Package codenames implements the team word-guessing game: a giver offers
// a one-word clue and a count, their guesser reveals cells hoping to find
// their own team's cards while avoiding the opponent's and the assassin.
package codenames

import (
	"sync"

	"playground_server/internal/game"
	"playground_server/internal/words"
)

// State is the projection of the game seen by one seat.
type State struct {
	PlayerMoving   int64         `json:"player_moving"`
	ModelName      string        `json:"model_name"`
	PlayerMovingID int           `json:"player_moving_id"`
	Color          Color         `json:"color"`
	Role           Role          `json:"role"`
	Words          []string      `json:"words"`
	Guessed        []Color       `json:"guessed"`
	Actual         []Color       `json:"actual"`
	Clue           string        `json:"clue"`
	Count          int           `json:"count"`
	Scores         map[Color]int `json:"scores"`
}

type Game struct {
	*game.Base

	params  Parameters
	corpus  *words.Corpus
	players []Player

	mu        sync.RWMutex
	board     *Board
	mover     int
	lastClue  string
	lastCount int
	chain     int // correct guesses made on the current clue
	scores    map[Color]int
	rewards   []float64
	over      bool
	winner    Color
}

var (
	_ game.Session   = (*Game)(nil)
	_ game.Forfeiter = (*Game)(nil)
)

// New deals a board from corpus and seats the roster.
func New(id string, roster game.Roster, params Parameters, corpus *words.Corpus, opts game.Options) (*Game, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	players, err := assignRoles(roster.All())
	if err != nil {
		return nil, err
	}
	board, err := newBoard(corpus, opts.RandOrDefault(), params)
	if err != nil {
		return nil, err
	}

	g := &Game{
		Base:    game.NewBase(id, game.TypeCodenames, roster, opts),
		params:  params,
		corpus:  corpus,
		players: players,
		board:   board,
		scores:  map[Color]int{Red: 0, Blue: 0},
		rewards: make([]float64, len(players)),
	}
	g.Logger().Info("codenames game created", "players", len(players), "board_size", params.BoardSize)
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
		return game.Errorf(game.KindInvalidTurn, "", "it is %s's turn", mover)
	}

	a, err := decodeAction(raw)
	if err != nil {
		return err
	}

	if mover.Role == Giver {
		return g.applyClue(a)
	}
	return g.applyGuesses(mover, a)
}

func (g *Game) applyClue(a Action) error {
	c, err := a.clue(g.board, g.corpus)
	if err != nil {
		return err
	}
	g.lastClue = c.word
	g.lastCount = c.count
	g.endTurn()
	return nil
}

// applyGuesses reveals cells in order until the list runs out or a stop
// condition is hit. The list is fully validated before any cell changes.
func (g *Game) applyGuesses(mover Player, a Action) error {
	cells, chained, err := a.guesses(g.board)
	if err != nil {
		return err
	}

	for _, i := range cells {
		if i == EndTurn {
			g.endTurn()
			return nil
		}

		color := g.board.Reveal(i)
		switch color {
		case Assassin:
			g.finish(mover.Team.Other(), "assassin")
			g.endTurn()
			return nil

		case mover.Team:
			g.scores[color]++
			g.chain++
			g.rewards[mover.Index]++
			if g.checkWin() {
				return nil
			}
			if g.chain > g.lastCount {
				g.endTurn()
				return nil
			}

		case Innocent:
			g.rewards[mover.Index] -= 0.5

		default:
			g.scores[color]++
			g.rewards[mover.Index]--
			if g.checkWin() {
				return nil
			}
			g.endTurn()
			return nil
		}
	}

	if chained {
		g.endTurn()
	}
	return nil
}

func (g *Game) endTurn() {
	g.mover = (g.mover + 1) % len(g.players)
	g.chain = 0
	g.rewards[g.mover] = 0
}

func (g *Game) checkWin() bool {
	for _, team := range []Color{Red, Blue} {
		if g.scores[team] >= g.params.Cards(team) {
			g.finish(team, "all_cards_found")
			return true
		}
	}
	return false
}

func (g *Game) finish(winner Color, reason string) {
	g.over = true
	g.winner = winner
	g.Logger().Info("codenames game over", "winner", winner, "reason", reason,
		"red", g.scores[Red], "blue", g.scores[Blue])
}

// Forfeit ends the game against the team of the given seat.
func (g *Game) Forfeit(playerIndex int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return game.NewError(game.KindGameOver, "game already finished")
	}
	if playerIndex < 0 || playerIndex >= len(g.players) {
		return game.Errorf(game.KindUnknownPlayer, "", "no seat %d", playerIndex)
	}
	g.finish(g.players[playerIndex].Team.Other(), "forfeit")
	return nil
}

// State returns the projection for the given seat. Only givers see the true
// colors; guessers get the revealed board in that slot.
func (g *Game) State(callerSID string, playerIndex int) (any, float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if playerIndex == game.MoverIndex {
		playerIndex = g.mover
	}
	if playerIndex < 0 || playerIndex >= len(g.players) {
		return nil, 0, game.Errorf(game.KindUnknownPlayer, "", "no seat %d", playerIndex)
	}

	p := g.players[playerIndex]
	mover := g.players[g.mover]
	b := g.board.clone()

	actual := b.Revealed
	if p.Role == Giver {
		actual = b.Actual
	}

	st := State{
		PlayerMoving:   mover.UserID(),
		ModelName:      mover.ModelName(),
		PlayerMovingID: mover.Index,
		Color:          p.Team,
		Role:           p.Role,
		Words:          b.Words,
		Guessed:        b.Revealed,
		Actual:         actual,
		Clue:           g.lastClue,
		Count:          g.lastCount,
		Scores:         map[Color]int{Red: g.scores[Red], Blue: g.scores[Blue]},
	}
	return st, g.rewards[playerIndex], nil
}

func (g *Game) IsGameOver() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.over
}

// Outcome is 1 for members of the winning team and 0 for everyone else.
func (g *Game) Outcome(playerIndex int) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.over || playerIndex < 0 || playerIndex >= len(g.players) {
		return 0, false
	}
	if g.players[playerIndex].Team == g.winner {
		return 1, true
	}
	return 0, true
}

func (g *Game) PlayerMoving() game.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.players[g.mover].Player
}

// Seat returns the team and role of a seat.
func (g *Game) Seat(playerIndex int) (Player, bool) {
	if playerIndex < 0 || playerIndex >= len(g.players) {
		return Player{}, false
	}
	return g.players[playerIndex], true
}

// Winner returns the winning team once the game is over.
func (g *Game) Winner() (Color, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.winner, g.over
}

// Definition registers codenames with a game.Factory. Boards are dealt from
// corpus using params.
func Definition(corpus *words.Corpus, params Parameters) game.Definition {
	return game.Definition{
		Type:           game.TypeCodenames,
		Players:        []int{2, 4},
		DefaultPlayers: 4,
		New: func(id string, roster game.Roster, opts game.Options) (game.Session, error) {
			g, err := New(id, roster, params, corpus, opts)
			if err != nil {
				return nil, err
			}
			return g, nil
		},
	}
}
