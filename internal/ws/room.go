package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"playground_server/internal/domain"
	"playground_server/internal/game"
)

// Finish reasons reported in result messages.
const (
	ReasonCompleted  = "completed"
	ReasonTimeout    = "timeout"
	ReasonDisconnect = "disconnect"
	ReasonShutdown   = "shutdown"
)

// Room hosts one session and the connections seated in it. Actions, turn
// timeouts and disconnects are applied one at a time under turnMu.
type Room struct {
	ID        string
	createdAt time.Time

	session game.Session
	clients []*Client // by seat
	hub     *Hub
	log     *slog.Logger

	turnMu   sync.Mutex
	finished bool
	reason   string

	mu        sync.RWMutex
	connected []bool
}

func newRoom(id string, session game.Session, clients []*Client, hub *Hub) *Room {
	connected := make([]bool, len(clients))
	for i := range connected {
		connected[i] = true
	}
	return &Room{
		ID:        id,
		createdAt: time.Now(),
		session:   session,
		clients:   clients,
		hub:       hub,
		log:       hub.log.With("room", id, "game", string(session.Type())),
		connected: connected,
	}
}

func (r *Room) seats() []SeatInfo {
	players := r.session.Players()
	out := make([]SeatInfo, len(players))
	for i, p := range players {
		out[i] = SeatInfo{Seat: p.Index, UserID: p.UserID(), ModelName: p.ModelName(), IsHuman: p.IsHuman()}
	}
	return out
}

// start announces the match, sends the opening state and arms the clock.
func (r *Room) start() {
	r.turnMu.Lock()

	seats := r.seats()
	for i, c := range r.clients {
		c.send(Message{Type: MsgMatched, Payload: MatchedPayload{
			RoomID:   r.ID,
			GameType: r.session.Type(),
			Seat:     i,
			Players:  seats,
		}})
	}
	r.arm()
	r.broadcastState()
	r.turnMu.Unlock()

	for i, c := range r.clients {
		c.attach(r, i)
	}

	// a seat may have dropped between matchmaking and registration
	for _, c := range r.clients {
		select {
		case <-c.Done:
			r.disconnect(c)
		default:
		}
	}
}

// HandleMessage dispatches one inbound frame from c.
func (r *Room) HandleMessage(c *Client, raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.send(Message{Type: MsgError, Payload: errorPayload(
			game.Wrap(game.KindInvalidActionSchema, "message is not a valid JSON envelope", err))})
		return
	}

	switch msg.Type {
	case MsgPing:
		c.send(Message{Type: MsgPong})
	case MsgState:
		r.sendState(c)
	case MsgAction:
		r.act(c, msg.Value)
	default:
		c.send(Message{Type: MsgError, Payload: errorPayload(
			game.Errorf(game.KindInvalidActionSchema, "unknown_message", "unknown message type %q", msg.Type))})
	}
}

func (r *Room) act(c *Client, action json.RawMessage) {
	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	kind := string(r.session.Type())
	if r.finished {
		c.send(Message{Type: MsgError, Payload: errorPayload(game.NewError(game.KindGameOver, "game already finished"))})
		return
	}
	if len(action) == 0 {
		ActionsTotal.WithLabelValues(kind, string(game.KindInvalidActionSchema)).Inc()
		c.send(Message{Type: MsgError, Payload: errorPayload(game.NewError(game.KindInvalidActionSchema, "action value missing"))})
		return
	}

	if err := r.session.SubmitAction(action, c.SID); err != nil {
		ActionsTotal.WithLabelValues(kind, string(game.KindOf(err))).Inc()
		r.log.Debug("action rejected", "sid", c.SID, "error", err)
		c.send(Message{Type: MsgError, Payload: errorPayload(err)})
		return
	}
	ActionsTotal.WithLabelValues(kind, "ok").Inc()

	if r.session.IsGameOver() {
		r.finish(ReasonCompleted)
		return
	}
	r.arm()
	r.broadcastState()
}

// arm restarts the move clock. The callback carries the iteration it was
// armed for so a fire racing with a later move is ignored.
func (r *Room) arm() {
	iteration := r.session.Iteration()
	r.session.ResetTimeout(func() {
		r.onTimeout(iteration)
	})
}

func (r *Room) onTimeout(iteration int) {
	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	if r.finished || r.session.Iteration() != iteration {
		return
	}
	mover := r.session.PlayerMoving()
	TimeoutsTotal.WithLabelValues(string(r.session.Type())).Inc()
	r.log.Info("turn timed out", "seat", mover.Index, "iteration", iteration)
	r.forfeit(mover.Index, ReasonTimeout)
}

func (r *Room) seatOf(c *Client) int {
	for i, rc := range r.clients {
		if rc == c {
			return i
		}
	}
	return -1
}

func (r *Room) disconnect(c *Client) {
	seat := r.seatOf(c)
	if seat < 0 {
		return
	}

	r.mu.Lock()
	wasConnected := r.connected[seat]
	r.connected[seat] = false
	r.mu.Unlock()

	if !wasConnected {
		return
	}

	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	if r.finished {
		return
	}
	r.log.Info("player disconnected", "seat", seat, "sid", c.SID)
	r.forfeit(seat, ReasonDisconnect)
}

// forfeit ends the session against seat. Must hold turnMu.
func (r *Room) forfeit(seat int, reason string) {
	if f, ok := r.session.(game.Forfeiter); ok {
		if err := f.Forfeit(seat); err != nil {
			r.log.Warn("forfeit failed", "seat", seat, "error", err)
		}
	}
	r.finish(reason)
}

// abort ends a room without a forfeit, e.g. on server shutdown.
func (r *Room) abort(reason string) {
	r.turnMu.Lock()
	defer r.turnMu.Unlock()

	if !r.finished {
		r.finish(reason)
	}
}

// finish sends final state and results, persists them and removes the room.
// Must hold turnMu.
func (r *Room) finish(reason string) {
	r.finished = true
	r.reason = reason
	r.session.CancelTimeout()

	kind := string(r.session.Type())
	SessionsFinished.WithLabelValues(kind, reason).Inc()
	r.log.Info("room finished", "reason", reason, "iterations", r.session.Iteration())

	r.broadcastState()

	n := len(r.clients)
	outcomes := make([]float64, n)
	for i := range outcomes {
		outcomes[i], _ = r.session.Outcome(i)
	}

	records := make([]domain.GameResult, 0, n)
	now := time.Now().UTC()
	for i, c := range r.clients {
		_, reward, _ := r.session.State(c.SID, i)
		outcome, decided := r.session.Outcome(i)

		if r.isConnected(i) {
			c.send(Message{Type: MsgResult, Payload: ResultPayload{
				RoomID:     r.ID,
				Reason:     reason,
				Seat:       i,
				Outcome:    outcome,
				Reward:     reward,
				Outcomes:   outcomes,
				Iterations: r.session.Iteration(),
			}})
		}
		if decided {
			records = append(records, domain.GameResult{
				SessionID:  r.ID,
				GameType:   kind,
				UserID:     c.UserID,
				Seat:       i,
				ModelName:  c.ModelName,
				IsHuman:    c.IsHuman,
				Outcome:    outcome,
				Reward:     reward,
				Iterations: r.session.Iteration(),
				Reason:     reason,
				CreatedAt:  now,
			})
		}
	}

	r.hub.removeRoom(r)
	go r.hub.saveResults(records)
}

func (r *Room) isConnected(seat int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected[seat]
}

func (r *Room) stateFor(c *Client, seat int) (StatePayload, error) {
	st, reward, err := r.session.State(c.SID, seat)
	if err != nil {
		return StatePayload{}, err
	}
	return StatePayload{
		RoomID:           r.ID,
		Iteration:        r.session.Iteration(),
		State:            st,
		Reward:           reward,
		TimeoutTimestamp: r.session.TimeoutTimestamp(),
		GameOver:         r.session.IsGameOver(),
	}, nil
}

func (r *Room) sendState(c *Client) {
	p, err := r.stateFor(c, r.seatOf(c))
	if err != nil {
		c.send(Message{Type: MsgError, Payload: errorPayload(err)})
		return
	}
	c.send(Message{Type: MsgState, Payload: p})
}

// broadcastState sends every connected seat its own projection.
func (r *Room) broadcastState() {
	for i, c := range r.clients {
		if !r.isConnected(i) {
			continue
		}
		p, err := r.stateFor(c, i)
		if err != nil {
			r.log.Error("project state", "seat", i, "error", err)
			continue
		}
		c.send(Message{Type: MsgState, Payload: p})
	}
}

// RoomSummary is the public view of a room.
type RoomSummary struct {
	ID               string        `json:"id"`
	GameType         game.GameType `json:"game_type"`
	Players          []SeatInfo    `json:"players"`
	Iteration        int           `json:"iteration"`
	PlayerMoving     int           `json:"player_moving"`
	TimeoutTimestamp int64         `json:"timeout_timestamp"`
	GameOver         bool          `json:"game_over"`
	CreatedAt        time.Time     `json:"created_at"`
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:               r.ID,
		GameType:         r.session.Type(),
		Players:          r.seats(),
		Iteration:        r.session.Iteration(),
		PlayerMoving:     r.session.PlayerMoving().Index,
		TimeoutTimestamp: r.session.TimeoutTimestamp(),
		GameOver:         r.session.IsGameOver(),
		CreatedAt:        r.createdAt,
	}
}
