// Package words provides the read-only word lists used by the word-guessing
// game: the card list that boards are sampled from, and the dictionary that
// clue words are checked against.
//
// A Corpus is built once at process start (from files or the embedded
// defaults) and handed to sessions; it is never mutated afterwards and is
// safe for concurrent use.
package words

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed cards.txt
var embeddedCards string

//go:embed dictionary.txt
var embeddedDictionary string

var ErrEmptyCorpus = errors.New("words: card list is empty")

// Corpus holds the card list and the clue dictionary.
type Corpus struct {
	cards []string
	dict  map[string]struct{}
}

// New builds a corpus. Entries are normalised; blanks and duplicates are
// dropped. Every card is also a dictionary word.
func New(cards, dictionary []string) (*Corpus, error) {
	c := &Corpus{dict: make(map[string]struct{}, len(cards)+len(dictionary))}

	seen := make(map[string]struct{}, len(cards))
	for _, w := range cards {
		w = Normalize(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		c.cards = append(c.cards, w)
		c.dict[w] = struct{}{}
	}
	for _, w := range dictionary {
		if w = Normalize(w); w != "" {
			c.dict[w] = struct{}{}
		}
	}

	if len(c.cards) == 0 {
		return nil, ErrEmptyCorpus
	}
	return c, nil
}

// Default builds the corpus from the embedded lists.
func Default() (*Corpus, error) {
	return New(splitLines(embeddedCards), splitLines(embeddedDictionary))
}

// Load builds the corpus from files; an empty path falls back to the
// embedded list for that part.
func Load(cardsPath, dictionaryPath string) (*Corpus, error) {
	cards := splitLines(embeddedCards)
	dict := splitLines(embeddedDictionary)

	if cardsPath != "" {
		var err error
		if cards, err = readWordFile(cardsPath); err != nil {
			return nil, fmt.Errorf("read cards: %w", err)
		}
	}
	if dictionaryPath != "" {
		var err error
		if dict, err = readWordFile(dictionaryPath); err != nil {
			return nil, fmt.Errorf("read dictionary: %w", err)
		}
	}
	return New(cards, dict)
}

// Len returns the number of distinct cards.
func (c *Corpus) Len() int { return len(c.cards) }

// DictionarySize returns the number of distinct dictionary words.
func (c *Corpus) DictionarySize() int { return len(c.dict) }

// Sample draws n distinct cards using r.
func (c *Corpus) Sample(r *rand.Rand, n int) ([]string, error) {
	if n < 0 || n > len(c.cards) {
		return nil, fmt.Errorf("words: need %d cards, corpus has %d", n, len(c.cards))
	}
	out := make([]string, n)
	for i, j := range r.Perm(len(c.cards))[:n] {
		out[i] = c.cards[j]
	}
	return out, nil
}

// Contains reports whether w is a dictionary word.
func (c *Corpus) Contains(w string) bool {
	_, ok := c.dict[Normalize(w)]
	return ok
}

// Normalize trims and lower-cases w.
func Normalize(w string) string {
	// Casers are stateful, so one per call.
	return cases.Lower(language.English).String(strings.TrimSpace(w))
}

// IsSingleWord reports whether w is one non-empty run of letters.
func IsSingleWord(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}
