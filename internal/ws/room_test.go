package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"playground_server/internal/domain"
	"playground_server/internal/game"
	"playground_server/internal/game/codenames"
	"playground_server/internal/game/snake"
	"playground_server/internal/game/tictactoe"
	"playground_server/internal/words"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type memStore struct {
	saved chan []domain.GameResult
}

func (m *memStore) SaveResults(_ context.Context, results []domain.GameResult) error {
	m.saved <- results
	return nil
}

func newTestFactory(t *testing.T, timeout time.Duration) *game.Factory {
	t.Helper()
	corpus, err := words.Default()
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	return game.NewFactory(
		game.Options{TurnTimeout: timeout, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
		codenames.Definition(corpus, codenames.DefaultParameters()),
		tictactoe.Definition(),
		snake.Definition(),
	)
}

func newTestServer(t *testing.T, timeout time.Duration) (*Hub, *memStore, string) {
	t.Helper()
	store := &memStore{saved: make(chan []domain.GameResult, 4)}
	hub := NewHub(newTestFactory(t, timeout), store)
	hub.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	up := NewUpgrader("")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := ParseJoinRequest(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		uid, _ := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go hub.Serve(conn, uid, req)
	}))
	t.Cleanup(srv.Close)

	return hub, store, "ws" + strings.TrimPrefix(srv.URL, "http")
}

type testConn struct {
	conn *websocket.Conn
	in   chan envelope
}

func dial(t *testing.T, base, query string) *testConn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(base+"/?"+query, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	tc := &testConn{conn: conn, in: make(chan envelope, 64)}
	go func() {
		defer close(tc.in)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var e envelope
			if json.Unmarshal(msg, &e) == nil {
				tc.in <- e
			}
		}
	}()
	return tc
}

func (c *testConn) write(t *testing.T, msg string) {
	t.Helper()
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func (c *testConn) action(t *testing.T, value string) {
	t.Helper()
	c.write(t, `{"type":"action","value":`+value+`}`)
}

// next skips messages until one of type typ arrives.
func (c *testConn) next(t *testing.T, typ string) json.RawMessage {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-c.in:
			if !ok {
				t.Fatalf("connection closed waiting for %s", typ)
			}
			if e.Type == typ {
				return e.Payload
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", typ)
		}
	}
}

func (c *testConn) state(t *testing.T, iteration int) StatePayload {
	t.Helper()
	for {
		var p StatePayload
		if err := json.Unmarshal(c.next(t, MsgState), &p); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if p.Iteration == iteration {
			return p
		}
	}
}

func (c *testConn) errorMsg(t *testing.T) ErrorPayload {
	t.Helper()
	var p ErrorPayload
	if err := json.Unmarshal(c.next(t, MsgError), &p); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return p
}

func (c *testConn) result(t *testing.T) ResultPayload {
	t.Helper()
	var p ResultPayload
	if err := json.Unmarshal(c.next(t, MsgResult), &p); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return p
}

// match dials n clients and returns them ordered by seat.
func match(t *testing.T, base, query string, n int) ([]*testConn, MatchedPayload) {
	t.Helper()
	conns := make([]*testConn, n)
	for i := range conns {
		conns[i] = dial(t, base, query+"&user="+strconv.Itoa(i+1))
	}

	seated := make([]*testConn, n)
	var first MatchedPayload
	for _, c := range conns {
		var m MatchedPayload
		if err := json.Unmarshal(c.next(t, MsgMatched), &m); err != nil {
			t.Fatalf("decode matched: %v", err)
		}
		if seated[m.Seat] != nil {
			t.Fatalf("seat %d assigned twice", m.Seat)
		}
		seated[m.Seat] = c
		first = m
	}
	return seated, first
}

func TestTicTacToeOverWebsocket(t *testing.T) {
	hub, store, base := newTestServer(t, time.Minute)
	seats, m := match(t, base, "game=tic_tac_toe", 2)
	x, o := seats[0], seats[1]

	if m.GameType != game.TypeTicTacToe || len(m.Players) != 2 {
		t.Fatalf("matched = %+v", m)
	}
	if _, ok := hub.Room(m.RoomID); !ok {
		t.Fatal("room not registered")
	}

	x.state(t, 0)
	o.state(t, 0)

	o.action(t, "4")
	if e := o.errorMsg(t); e.Kind != game.KindInvalidTurn {
		t.Fatalf("error = %+v", e)
	}

	moves := []struct {
		c  *testConn
		sq string
	}{{x, "0"}, {o, "3"}, {x, "1"}, {o, "4"}, {x, "2"}}
	for i, mv := range moves {
		mv.c.action(t, mv.sq)
		if i < len(moves)-1 {
			moves[i+1].c.state(t, i+1)
		}
	}

	rx, ro := x.result(t), o.result(t)
	if rx.Outcome != 1 || ro.Outcome != 0 || rx.Reason != ReasonCompleted || rx.Iterations != 5 {
		t.Fatalf("results = %+v / %+v", rx, ro)
	}

	select {
	case saved := <-store.saved:
		if len(saved) != 2 || saved[0].SessionID != m.RoomID || saved[0].GameType != "tic_tac_toe" {
			t.Fatalf("saved = %+v", saved)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("results not saved")
	}
	if _, ok := hub.Room(m.RoomID); ok {
		t.Fatal("finished room still registered")
	}
}

func TestCodenamesOpeningExchange(t *testing.T) {
	_, _, base := newTestServer(t, time.Minute)
	seats, m := match(t, base, "game=codenames&players=2", 2)
	giver, guesser := seats[0], seats[1]

	if m.GameType != game.TypeCodenames {
		t.Fatalf("matched = %+v", m)
	}

	var st codenames.State
	p := giver.state(t, 0)
	raw, _ := json.Marshal(p.State)
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("decode codenames state: %v", err)
	}
	if st.Role != codenames.Giver || len(st.Words) != codenames.DefaultBoardSize {
		t.Fatalf("giver state = %+v", st)
	}
	if p.TimeoutTimestamp <= time.Now().Unix() {
		t.Fatalf("timeout timestamp %d not in the future", p.TimeoutTimestamp)
	}

	giver.action(t, `{"word":"two words","count":1}`)
	if e := giver.errorMsg(t); e.Kind != game.KindInvalidClue || e.Reason != codenames.ReasonNotSingleWord {
		t.Fatalf("error = %+v", e)
	}

	clue := ""
	for _, cand := range []string{"animal", "ocean", "fruit", "music", "river"} {
		overlaps := false
		for _, w := range st.Words {
			if strings.Contains(w, cand) || strings.Contains(cand, w) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			clue = cand
			break
		}
	}
	if clue == "" {
		t.Skip("every candidate clue overlaps the board")
	}

	giver.action(t, `{"word":"`+clue+`","count":2}`)
	gp := guesser.state(t, 1)
	raw, _ = json.Marshal(gp.State)
	var gst codenames.State
	if err := json.Unmarshal(raw, &gst); err != nil {
		t.Fatalf("decode guesser state: %v", err)
	}
	if gst.Clue != clue || gst.Count != 2 || gst.PlayerMovingID != 1 {
		t.Fatalf("guesser state = %+v", gst)
	}
	for _, c := range gst.Actual {
		if c != codenames.Unknown {
			t.Fatalf("guesser must not see true colors: %v", gst.Actual)
		}
	}

	guesser.action(t, `{"guesses":[-1]}`)
	if back := giver.state(t, 2); back.GameOver {
		t.Fatal("game should continue")
	}

	guesser.write(t, `{"type":"ping"}`)
	guesser.next(t, MsgPong)
	guesser.write(t, `{"type":"dance"}`)
	if e := guesser.errorMsg(t); e.Kind != game.KindInvalidActionSchema {
		t.Fatalf("error = %+v", e)
	}
	guesser.write(t, `{"type":"state"}`)
	if p := guesser.state(t, 2); p.State == nil {
		t.Fatal("empty state reply")
	}
}

func TestSnakeSoloRoom(t *testing.T) {
	_, store, base := newTestServer(t, time.Minute)
	seats, m := match(t, base, "game=snake", 1)
	p := seats[0]

	if m.GameType != game.TypeSnake || len(m.Players) != 1 {
		t.Fatalf("matched = %+v", m)
	}
	p.state(t, 0)

	p.action(t, `"Q"`)
	if e := p.errorMsg(t); e.Kind != game.KindInvalidMove {
		t.Fatalf("error = %+v", e)
	}

	p.action(t, `"N"`)
	if st := p.state(t, 1); st.GameOver {
		t.Fatal("snake died one step from the wall")
	}
	p.action(t, `"N"`)

	r := p.result(t)
	if r.Reason != ReasonCompleted || r.Outcome != 1 || r.Reward != -1 {
		t.Fatalf("result = %+v", r)
	}
	select {
	case saved := <-store.saved:
		if len(saved) != 1 || saved[0].GameType != "snake" || saved[0].Outcome != 1 {
			t.Fatalf("saved = %+v", saved)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("results not saved")
	}
}

func TestDisconnectForfeits(t *testing.T) {
	_, _, base := newTestServer(t, time.Minute)
	seats, _ := match(t, base, "game=tic_tac_toe", 2)

	seats[0].conn.Close()

	r := seats[1].result(t)
	if r.Reason != ReasonDisconnect || r.Outcome != 1 || r.Seat != 1 {
		t.Fatalf("result = %+v", r)
	}
}

func TestTurnTimeoutForfeitsMover(t *testing.T) {
	_, store, base := newTestServer(t, 100*time.Millisecond)
	seats, _ := match(t, base, "game=tic_tac_toe", 2)

	r0, r1 := seats[0].result(t), seats[1].result(t)
	if r0.Reason != ReasonTimeout || r0.Outcome != 0 || r1.Outcome != 1 {
		t.Fatalf("results = %+v / %+v", r0, r1)
	}

	select {
	case saved := <-store.saved:
		if saved[0].Reason != ReasonTimeout {
			t.Fatalf("saved = %+v", saved)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("results not saved")
	}
}

func TestEnqueueRejectsUnsupported(t *testing.T) {
	hub := NewHub(newTestFactory(t, time.Minute), nil)
	hub.log = slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []JoinRequest{
		{GameType: "chess"},
		{GameType: game.TypeCodenames, Players: 3},
		{GameType: game.TypeTicTacToe, Players: 4},
	}
	for _, req := range cases {
		c := NewClient(1, nil, hub, req)
		if err := hub.Enqueue(c); game.KindOf(err) != game.KindConfiguration {
			t.Fatalf("Enqueue(%+v) = %v", req, err)
		}
	}
	if hub.Waiting() != 0 {
		t.Fatalf("waiting = %d", hub.Waiting())
	}
}

func TestQueueAndLeave(t *testing.T) {
	hub := NewHub(newTestFactory(t, time.Minute), nil)
	hub.log = slog.New(slog.NewTextHandler(io.Discard, nil))

	a := NewClient(1, nil, hub, JoinRequest{GameType: game.TypeCodenames})
	b := NewClient(2, nil, hub, JoinRequest{GameType: game.TypeCodenames, Players: 2})
	for _, c := range []*Client{a, b} {
		if err := hub.Enqueue(c); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if a.Players != 4 {
		t.Fatalf("default players = %d", a.Players)
	}
	// different player counts never share a queue
	if hub.Waiting() != 2 || hub.Rooms() != 0 {
		t.Fatalf("waiting=%d rooms=%d", hub.Waiting(), hub.Rooms())
	}

	hub.Leave(a)
	if hub.Waiting() != 1 {
		t.Fatalf("waiting after leave = %d", hub.Waiting())
	}

	b.close()
	hub.cleanupStaleClients()
	if hub.Waiting() != 0 {
		t.Fatalf("stale client kept: %d", hub.Waiting())
	}
}

func TestParseJoinRequest(t *testing.T) {
	cases := []struct {
		query   string
		want    JoinRequest
		wantErr bool
	}{
		{"", JoinRequest{GameType: game.TypeCodenames, IsHuman: true}, false},
		{"game=tic_tac_toe&players=2", JoinRequest{GameType: game.TypeTicTacToe, Players: 2, IsHuman: true}, false},
		{"model=gpt", JoinRequest{GameType: game.TypeCodenames, ModelName: "gpt"}, false},
		{"model=gpt&human=true", JoinRequest{GameType: game.TypeCodenames, ModelName: "gpt", IsHuman: true}, false},
		{"players=abc", JoinRequest{}, true},
		{"human=maybe", JoinRequest{}, true},
	}
	for _, tc := range cases {
		q, _ := url.ParseQuery(tc.query)
		got, err := ParseJoinRequest(q)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%q: err = %v", tc.query, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Fatalf("%q: got %+v; want %+v", tc.query, got, tc.want)
		}
	}
}
