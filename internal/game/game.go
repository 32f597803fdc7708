package game

import (
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"playground_server/internal/logger"
)

type GameType string

const (
	TypeCodenames GameType = "codenames"
	TypeTicTacToe GameType = "tic_tac_toe"
	TypeSnake     GameType = "snake"
)

// MoverIndex asks State for the projection of whoever is moving.
const MoverIndex = -1

// Session is one running game. Implementations serialise their own state;
// callers still submit at most one action per session at a time.
type Session interface {
	ID() string
	Type() GameType
	Players() []Player
	Iteration() int

	// SubmitAction applies an action on behalf of the caller identified by
	// callerSID. A non-nil error is a *Error and leaves state untouched.
	SubmitAction(action []byte, callerSID string) error

	// State returns the view of the game seen by seat playerIndex (or the
	// mover for MoverIndex) and that seat's pending reward.
	State(callerSID string, playerIndex int) (any, float64, error)

	IsGameOver() bool

	// Outcome is only available once the game is over.
	Outcome(playerIndex int) (float64, bool)

	PlayerMoving() Player

	ResetTimeout(callback func())
	CancelTimeout()
	TimeoutTimestamp() int64
}

// Forfeiter is implemented by sessions that can be ended against a seat
// outside the normal action path, for turn timeouts and disconnects.
type Forfeiter interface {
	Forfeit(playerIndex int) error
}

// Options carries construction-time dependencies shared by all games.
type Options struct {
	TurnTimeout time.Duration
	Logger      *slog.Logger
	Rand        *rand.Rand
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Get()
}

// RandOrDefault returns o.Rand or a time-seeded source.
func (o Options) RandOrDefault() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Base holds the bookkeeping every game shares: identity, roster, the move
// counter and the turn clock. Concrete games embed *Base.
type Base struct {
	id        string
	kind      GameType
	roster    Roster
	clock     *Clock
	log       *slog.Logger
	iteration atomic.Int64
	attempts  atomic.Int64
}

func NewBase(id string, kind GameType, roster Roster, opts Options) *Base {
	return &Base{
		id:     id,
		kind:   kind,
		roster: roster,
		clock:  NewClock(opts.TurnTimeout),
		log:    opts.logger().With("game", string(kind), "session", id),
	}
}

func (b *Base) ID() string { return b.id }
func (b *Base) Type() GameType { return b.kind }
func (b *Base) Players() []Player { return b.roster.All() }
func (b *Base) Roster() Roster { return b.roster }
func (b *Base) Logger() *slog.Logger { return b.log }
func (b *Base) Iteration() int { return int(b.iteration.Load()) }
func (b *Base) Attempts() int { return int(b.attempts.Load()) }
func (b *Base) Clock() *Clock { return b.clock }
func (b *Base) CancelTimeout() { b.clock.Cancel() }
func (b *Base) TimeoutTimestamp() int64 { return b.clock.Deadline().Unix() }

func (b *Base) ResetTimeout(callback func()) {
	b.clock.Reset(callback)
}

// Advance records a move attempt by callerSID, runs apply, and bumps the
// iteration counter only if apply succeeded.
func (b *Base) Advance(callerSID string, apply func() error) error {
	n := b.attempts.Add(1)
	if err := apply(); err != nil {
		b.log.Debug("action rejected", "caller", callerSID, "attempt", n, "kind", KindOf(err), "error", err)
		return err
	}
	it := b.iteration.Add(1)
	b.log.Debug("action applied", "caller", callerSID, "attempt", n, "iteration", it)
	return nil
}
