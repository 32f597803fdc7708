package game

// SessionInfo describes the connection a player arrived on. It is supplied
// by the transport layer and never changes for the life of a session.
type SessionInfo struct {
	SID       string // connection id, the caller identity for SubmitAction
	UserID    int64
	GameID    string
	ModelName string
	IsHuman   bool
}

// Player is one seat in a session.
type Player struct {
	Info  SessionInfo
	Index int
}

func (p Player) SID() string { return p.Info.SID }
func (p Player) UserID() int64 { return p.Info.UserID }
func (p Player) ModelName() string { return p.Info.ModelName }
func (p Player) IsHuman() bool { return p.Info.IsHuman }

// Roster is the fixed, ordered set of players of a session.
type Roster struct {
	players []Player
	bySID   map[string]int
}

// NewRoster seats infos in order. SIDs must be non-empty and unique.
func NewRoster(gameID string, infos []SessionInfo) (Roster, error) {
	r := Roster{
		players: make([]Player, 0, len(infos)),
		bySID:   make(map[string]int, len(infos)),
	}
	for i, info := range infos {
		if info.SID == "" {
			return Roster{}, Errorf(KindConfiguration, "empty_sid", "player %d has no connection id", i)
		}
		if _, dup := r.bySID[info.SID]; dup {
			return Roster{}, Errorf(KindConfiguration, "duplicate_sid", "connection %q seated twice", info.SID)
		}
		info.GameID = gameID
		r.bySID[info.SID] = i
		r.players = append(r.players, Player{Info: info, Index: i})
	}
	return r, nil
}

// Len returns the number of seats.
func (r Roster) Len() int { return len(r.players) }

// At returns the player in seat i.
func (r Roster) At(i int) (Player, bool) {
	if i < 0 || i >= len(r.players) {
		return Player{}, false
	}
	return r.players[i], true
}

// BySID looks up a seat by connection id.
func (r Roster) BySID(sid string) (Player, bool) {
	i, ok := r.bySID[sid]
	if !ok {
		return Player{}, false
	}
	return r.players[i], true
}

// All returns a copy of the seated players.
func (r Roster) All() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}
