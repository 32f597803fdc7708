package codenames

import (
	"math/rand"
	"strings"

	"playground_server/internal/game"
	"playground_server/internal/words"
)

// Board is the grid of cards, flattened row by row.
type Board struct {
	Words    []string
	Actual   []Color
	Revealed []Color
}

func newBoard(corpus *words.Corpus, r *rand.Rand, p Parameters) (*Board, error) {
	if corpus == nil {
		return nil, game.Errorf(game.KindConfiguration, "corpus", "no word corpus supplied")
	}
	cards, err := corpus.Sample(r, p.BoardSize)
	if err != nil {
		return nil, game.Wrap(game.KindConfiguration, "corpus too small for board", err)
	}

	b := &Board{
		Words:    cards,
		Actual:   make([]Color, p.BoardSize),
		Revealed: make([]Color, p.BoardSize),
	}
	for i := range b.Actual {
		b.Actual[i] = Innocent
		b.Revealed[i] = Unknown
	}

	positions := r.Perm(p.BoardSize)
	for _, i := range positions[:p.RedCards] {
		b.Actual[i] = Red
	}
	for _, i := range positions[p.RedCards : p.RedCards+p.BlueCards] {
		b.Actual[i] = Blue
	}
	b.Actual[positions[p.RedCards+p.BlueCards]] = Assassin

	return b, nil
}

func (b *Board) Size() int { return len(b.Words) }

func (b *Board) IsRevealed(i int) bool {
	return b.Revealed[i] != Unknown
}

// Reveal exposes the true color of cell i and returns it.
func (b *Board) Reveal(i int) Color {
	b.Revealed[i] = b.Actual[i]
	return b.Revealed[i]
}

// Overlap returns a board word that contains clue or is contained in it.
func (b *Board) Overlap(clue string) (string, bool) {
	clue = words.Normalize(clue)
	for _, w := range b.Words {
		lw := words.Normalize(w)
		if strings.Contains(lw, clue) || strings.Contains(clue, lw) {
			return w, true
		}
	}
	return "", false
}

// Count returns how many cells have actual color c.
func (b *Board) Count(c Color) int {
	n := 0
	for _, a := range b.Actual {
		if a == c {
			n++
		}
	}
	return n
}

func (b *Board) clone() *Board {
	return &Board{
		Words:    append([]string(nil), b.Words...),
		Actual:   append([]Color(nil), b.Actual...),
		Revealed: append([]Color(nil), b.Revealed...),
	}
}
