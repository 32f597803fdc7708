package game

import (
	"slices"
	"sync"
)

// Constructor builds a fresh session of one game type.
type Constructor func(id string, roster Roster, opts Options) (Session, error)

// Definition describes a game the factory can build.
type Definition struct {
	Type           GameType    `json:"type"`
	Players        []int       `json:"players"`
	DefaultPlayers int         `json:"default_players"`
	New            Constructor `json:"-"`
}

type Factory struct {
	opts Options

	mu    sync.RWMutex
	defs  map[GameType]Definition
	order []GameType
}

func NewFactory(opts Options, defs ...Definition) *Factory {
	f := &Factory{opts: opts, defs: make(map[GameType]Definition)}
	for _, d := range defs {
		f.Register(d)
	}
	return f
}

// Register adds or replaces a game definition.
func (f *Factory) Register(d Definition) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.defs[d.Type]; !ok {
		f.order = append(f.order, d.Type)
	}
	f.defs[d.Type] = d
}

// CreateSession builds a session of gameType for the seated roster.
func (f *Factory) CreateSession(gameType GameType, id string, roster Roster) (Session, error) {
	f.mu.RLock()
	d, ok := f.defs[gameType]
	f.mu.RUnlock()

	if !ok {
		return nil, Errorf(KindConfiguration, "unknown_game", "unknown game type: %s", gameType)
	}
	if !slices.Contains(d.Players, roster.Len()) {
		return nil, Errorf(KindConfiguration, "player_count", "%s does not support %d players", gameType, roster.Len())
	}
	return d.New(id, roster, f.opts)
}

// Supports reports whether gameType can be played by n players.
func (f *Factory) Supports(gameType GameType, n int) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	d, ok := f.defs[gameType]
	return ok && slices.Contains(d.Players, n)
}

// DefaultPlayers returns the player count used when a client does not ask
// for one.
func (f *Factory) DefaultPlayers(gameType GameType) (int, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	d, ok := f.defs[gameType]
	return d.DefaultPlayers, ok
}

// Catalog lists registered games in registration order.
func (f *Factory) Catalog() []Definition {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Definition, 0, len(f.order))
	for _, t := range f.order {
		d := f.defs[t]
		d.Players = slices.Clone(d.Players)
		out = append(out, d)
	}
	return out
}
