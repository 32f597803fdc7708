package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"playground_server/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 8192
	sendBuffer     = 256
)

// JoinRequest describes the match a connection asks for.
type JoinRequest struct {
	GameType  game.GameType
	Players   int // 0 selects the game's default
	ModelName string
	IsHuman   bool
}

type Client struct {
	SID       string
	UserID    int64
	GameType  game.GameType
	Players   int
	ModelName string
	IsHuman   bool

	Conn *websocket.Conn
	Send chan []byte
	Done chan struct{}

	hub *Hub

	mu      sync.Mutex
	room    *Room
	seat    int
	pending [][]byte

	closeOnce sync.Once
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub, req JoinRequest) *Client {
	return &Client{
		SID:       uuid.NewString(),
		UserID:    userID,
		GameType:  req.GameType,
		Players:   req.Players,
		ModelName: req.ModelName,
		IsHuman:   req.IsHuman,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		Done:      make(chan struct{}),
		hub:       hub,
	}
}

// Run starts the pumps, queues the client for a match and blocks until the
// connection closes.
func (c *Client) Run() {
	go c.writePump()
	c.send(Message{Type: MsgReady, Payload: map[string]any{"sid": c.SID}})

	// read early so nothing is lost while matchmaking
	go c.readPump()

	if err := c.hub.Enqueue(c); err != nil {
		c.hub.log.Warn("join rejected", "sid", c.SID, "user", c.UserID, "error", err)
		c.send(Message{Type: MsgError, Payload: errorPayload(err)})
		c.close()
	}

	<-c.Done
}

// attach binds the client to its room once everything it sent while waiting
// for a match has been handled. Frames read during the replay keep queueing
// behind it, so the room sees them in arrival order.
func (c *Client) attach(r *Room, seat int) {
	c.mu.Lock()
	c.seat = seat
	c.mu.Unlock()

	for {
		c.mu.Lock()
		batch := c.pending
		c.pending = nil
		if len(batch) == 0 {
			c.room = r
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		for _, m := range batch {
			r.HandleMessage(c, m)
		}
	}
}

func (c *Client) Room() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Client) Seat() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seat
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("read error", "sid", c.SID, "error", err)
			}
			return
		}

		c.deliver(msg)
	}
}

// deliver hands msg to the room, or queues it until attach has run.
func (c *Client) deliver(msg []byte) {
	c.mu.Lock()
	room := c.room
	if room == nil {
		c.pending = append(c.pending, msg)
	}
	c.mu.Unlock()

	if room != nil {
		room.HandleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Debug("write error", "sid", c.SID, "error", err)
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.Done:
			c.flush()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever is still queued so a final result reaches the peer
// before the close frame.
func (c *Client) flush() {
	for {
		select {
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

// send queues msg for the write pump without blocking. A client whose
// buffer is full is not reading and gets disconnected.
func (c *Client) send(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.Error("marshal message", "type", msg.Type, "error", err)
		return false
	}

	select {
	case <-c.Done:
		return false
	default:
	}

	select {
	case c.Send <- data:
		return true
	default:
		c.hub.log.Warn("send buffer full, dropping client", "sid", c.SID, "type", msg.Type)
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.Done)
	})
}

func (c *Client) info() game.SessionInfo {
	return game.SessionInfo{
		SID:       c.SID,
		UserID:    c.UserID,
		ModelName: c.ModelName,
		IsHuman:   c.IsHuman,
	}
}
