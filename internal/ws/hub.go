package ws

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"playground_server/internal/domain"
	"playground_server/internal/game"
	"playground_server/internal/logger"
)

// ResultStore persists per-seat results of finished sessions.
type ResultStore interface {
	SaveResults(ctx context.Context, results []domain.GameResult) error
}

type queueKey struct {
	game    game.GameType
	players int
}

// Hub matches waiting clients into rooms. Clients queue per game type and
// player count; a room opens as soon as a queue holds enough players.
type Hub struct {
	factory *game.Factory
	results ResultStore
	log     *slog.Logger

	mu       sync.RWMutex
	rooms    map[string]*Room
	waiting  map[queueKey][]*Client
	bySID    map[string]string // client SID -> room ID
	saveWait time.Duration
}

func NewHub(factory *game.Factory, results ResultStore) *Hub {
	return &Hub{
		factory:  factory,
		results:  results,
		log:      logger.With("component", "hub"),
		rooms:    make(map[string]*Room),
		waiting:  make(map[queueKey][]*Client),
		bySID:    make(map[string]string),
		saveWait: 5 * time.Second,
	}
}

// Enqueue places c in its matchmaking queue and opens a room when the queue
// is full.
func (h *Hub) Enqueue(c *Client) error {
	if c.Players == 0 {
		n, ok := h.factory.DefaultPlayers(c.GameType)
		if !ok {
			return game.Errorf(game.KindConfiguration, "unknown_game", "unknown game type: %s", c.GameType)
		}
		c.Players = n
	}
	if !h.factory.Supports(c.GameType, c.Players) {
		return game.Errorf(game.KindConfiguration, "player_count", "%s does not support %d players", c.GameType, c.Players)
	}

	key := queueKey{game: c.GameType, players: c.Players}

	h.mu.Lock()
	queue := append(h.waiting[key], c)
	if len(queue) < key.players {
		h.waiting[key] = queue
		h.mu.Unlock()
		h.log.Debug("client queued", "sid", c.SID, "game", key.game, "players", key.players, "waiting", len(queue))
		return nil
	}
	delete(h.waiting, key)
	h.mu.Unlock()

	return h.open(key, queue)
}

func (h *Hub) open(key queueKey, clients []*Client) error {
	id := uuid.NewString()

	infos := make([]game.SessionInfo, len(clients))
	for i, c := range clients {
		infos[i] = c.info()
	}
	roster, err := game.NewRoster(id, infos)
	if err == nil {
		var session game.Session
		session, err = h.factory.CreateSession(key.game, id, roster)
		if err == nil {
			room := newRoom(id, session, clients, h)

			h.mu.Lock()
			h.rooms[id] = room
			for _, c := range clients {
				h.bySID[c.SID] = id
			}
			h.mu.Unlock()

			SessionsActive.WithLabelValues(string(key.game)).Inc()
			h.log.Info("room opened", "room", id, "game", key.game, "players", len(clients))
			room.start()
			return nil
		}
	}

	// the whole group failed to start; tell everyone but the caller, whose
	// error is returned
	h.log.Error("open room failed", "game", key.game, "error", err)
	for _, c := range clients[:len(clients)-1] {
		c.send(Message{Type: MsgError, Payload: errorPayload(err)})
		c.close()
	}
	return err
}

// Leave removes c from any queue and forfeits its seat if it was playing.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	for key, queue := range h.waiting {
		if i := slices.Index(queue, c); i >= 0 {
			queue = slices.Delete(queue, i, i+1)
			if len(queue) == 0 {
				delete(h.waiting, key)
			} else {
				h.waiting[key] = queue
			}
		}
	}
	room := h.rooms[h.bySID[c.SID]]
	h.mu.Unlock()

	if room != nil {
		room.disconnect(c)
	}
}

// Room looks up a live room by ID.
func (h *Hub) Room(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

// Waiting returns the number of queued clients.
func (h *Hub) Waiting() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, q := range h.waiting {
		n += len(q)
	}
	return n
}

// Rooms returns the number of live rooms.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) removeRoom(r *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[r.ID]; !ok {
		return
	}
	delete(h.rooms, r.ID)
	for _, c := range r.clients {
		delete(h.bySID, c.SID)
	}
	SessionsActive.WithLabelValues(string(r.session.Type())).Dec()
}

func (h *Hub) saveResults(results []domain.GameResult) {
	if h.results == nil || len(results) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.saveWait)
	defer cancel()

	if err := h.results.SaveResults(ctx, results); err != nil {
		h.log.Error("save results failed", "session", results[0].SessionID, "error", err)
	}
}

// StartCleanup periodically drops queued clients whose connection has
// already closed.
func (h *Hub) StartCleanup(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupStaleClients()
			}
		}
	}()
}

func (h *Hub) cleanupStaleClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, queue := range h.waiting {
		live := queue[:0]
		for _, c := range queue {
			select {
			case <-c.Done:
				h.log.Debug("dropped stale client", "sid", c.SID)
			default:
				live = append(live, c)
			}
		}
		if len(live) == 0 {
			delete(h.waiting, key)
		} else {
			h.waiting[key] = live
		}
	}
}

// Shutdown ends every live room as aborted.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		r.abort("shutdown")
	}
}
