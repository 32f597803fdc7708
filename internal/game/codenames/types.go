package codenames

import (
	"fmt"

	"playground_server/internal/game"
)

type Color string

const (
	Red      Color = "RED"
	Blue     Color = "BLUE"
	Innocent Color = "INNOCENT"
	Assassin Color = "ASSASSIN"
	Unknown  Color = "UNKNOWN"
)

// Other returns the opposing team.
func (c Color) Other() Color {
	if c == Red {
		return Blue
	}
	return Red
}

type Role string

const (
	Giver   Role = "GIVER"
	Guesser Role = "GUESSER"
)

const (
	DefaultBoardSize = 25
	DefaultRedCards  = 9
	DefaultBlueCards = 8
	AssassinCards    = 1

	MaxClueCount = 9

	// EndTurn is the guess value a guesser submits to stop guessing.
	EndTurn = -1
)

// Rejection reasons carried by *game.Error.
const (
	ReasonNotSingleWord     = "not_single_word"
	ReasonNotInDictionary   = "not_in_dictionary"
	ReasonOverlapsBoardWord = "overlaps_board_word"
	ReasonCountOutOfRange   = "count_out_of_range"
	ReasonGuessOutOfRange   = "guess_out_of_range"
	ReasonDuplicateGuess    = "duplicate_guess"
	ReasonAlreadyRevealed   = "already_revealed"
)

// Parameters shape the board. The number of players comes from the roster.
type Parameters struct {
	BoardSize int
	RedCards  int
	BlueCards int
}

func DefaultParameters() Parameters {
	return Parameters{
		BoardSize: DefaultBoardSize,
		RedCards:  DefaultRedCards,
		BlueCards: DefaultBlueCards,
	}
}

func (p Parameters) validate() error {
	if p.RedCards <= 0 || p.BlueCards <= 0 {
		return game.Errorf(game.KindConfiguration, "card_counts", "team card counts must be positive, got red=%d blue=%d", p.RedCards, p.BlueCards)
	}
	if p.RedCards+p.BlueCards+AssassinCards > p.BoardSize {
		return game.Errorf(game.KindConfiguration, "board_size", "board of %d cells cannot hold %d red, %d blue and %d assassin cards",
			p.BoardSize, p.RedCards, p.BlueCards, AssassinCards)
	}
	return nil
}

// Cards returns how many cells a team owns.
func (p Parameters) Cards(team Color) int {
	switch team {
	case Red:
		return p.RedCards
	case Blue:
		return p.BlueCards
	}
	return 0
}

// Player is a seat with its team and role fixed at setup.
type Player struct {
	game.Player
	Team Color
	Role Role
}

// assignRoles seats players: the first half of the table plays red and the
// second half blue, each team's first seat giving clues and second
// guessing. Two players form a single red pair.
func assignRoles(players []game.Player) ([]Player, error) {
	n := len(players)
	if n != 2 && n != 4 {
		return nil, game.Errorf(game.KindConfiguration, "player_count", "codenames needs 2 or 4 players, got %d", n)
	}

	out := make([]Player, n)
	for i, p := range players {
		team := Red
		if n == 4 && i >= n/2 {
			team = Blue
		}
		role := Giver
		if i%2 == 1 {
			role = Guesser
		}
		out[i] = Player{Player: p, Team: team, Role: role}
	}
	return out, nil
}

func (p Player) String() string {
	return fmt.Sprintf("seat %d (%s %s)", p.Index, p.Team, p.Role)
}
