package codenames

import (
	"encoding/json"
	"math"

	"playground_server/internal/game"
	"playground_server/internal/words"
)

// Action is the wire form of a move. Givers send Word and Count; guessers
// send either Guess or Guesses. Numbers are decoded as floats so that
// non-integral values can be rejected explicitly.
type Action struct {
	Word    *string   `json:"word,omitempty"`
	Count   *float64  `json:"count,omitempty"`
	Guess   *float64  `json:"guess,omitempty"`
	Guesses []float64 `json:"guesses,omitempty"`
}

func decodeAction(raw []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return Action{}, game.Wrap(game.KindInvalidActionSchema, "action is not a valid JSON object", err)
	}
	return a, nil
}

type clue struct {
	word  string
	count int
}

// clue validates a giver action against the board, in order: single token,
// dictionary, board overlap, count range.
func (a Action) clue(b *Board, corpus *words.Corpus) (clue, error) {
	if a.Word == nil || a.Count == nil {
		return clue{}, game.Errorf(game.KindInvalidActionSchema, "", "clue needs both word and count")
	}

	word := words.Normalize(*a.Word)
	if !words.IsSingleWord(word) {
		return clue{}, game.Errorf(game.KindInvalidClue, ReasonNotSingleWord, "clue %q must be a single word", *a.Word)
	}
	if !corpus.Contains(word) {
		return clue{}, game.Errorf(game.KindInvalidClue, ReasonNotInDictionary, "clue %q is not a recognised word", word)
	}
	if w, ok := b.Overlap(word); ok {
		return clue{}, game.Errorf(game.KindInvalidClue, ReasonOverlapsBoardWord, "clue %q overlaps board word %q", word, w)
	}

	count := *a.Count
	if count != math.Trunc(count) || count < 0 || count > MaxClueCount {
		return clue{}, game.Errorf(game.KindInvalidClue, ReasonCountOutOfRange, "count must be an integer from 0 to %d, got %v", MaxClueCount, count)
	}
	return clue{word: word, count: int(count)}, nil
}

// guesses validates a guesser action as a whole. chained reports whether the
// list form was used.
func (a Action) guesses(b *Board) (cells []int, chained bool, err error) {
	var raw []float64
	switch {
	case len(a.Guesses) > 0:
		raw, chained = a.Guesses, true
	case a.Guess != nil:
		raw = []float64{*a.Guess}
	default:
		return nil, false, game.Errorf(game.KindInvalidActionSchema, "", "guess needs guess or a non-empty guesses list")
	}

	n := b.Size()
	seen := make(map[int]bool, len(raw))
	cells = make([]int, 0, len(raw))
	for _, v := range raw {
		if v != math.Trunc(v) || v < EndTurn || v >= float64(n) {
			return nil, false, game.Errorf(game.KindInvalidGuess, ReasonGuessOutOfRange, "guess %v is not a cell in [-1, %d)", v, n)
		}
		i := int(v)
		if i == EndTurn {
			cells = append(cells, i)
			continue
		}
		if seen[i] {
			return nil, false, game.Errorf(game.KindInvalidGuess, ReasonDuplicateGuess, "cell %d guessed twice", i)
		}
		if b.IsRevealed(i) {
			return nil, false, game.Errorf(game.KindInvalidGuess, ReasonAlreadyRevealed, "cell %d is already revealed", i)
		}
		seen[i] = true
		cells = append(cells, i)
	}
	return cells, chained, nil
}
