package tictactoe

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"playground_server/internal/game"
)

func newGame(t *testing.T) *Game {
	t.Helper()
	roster, err := game.NewRoster("t1", []game.SessionInfo{
		{SID: "x", UserID: 1},
		{SID: "o", UserID: 2},
	})
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	g, err := New("t1", roster, game.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return g
}

func play(t *testing.T, g *Game, squares ...int) {
	t.Helper()
	sids := []string{"x", "o"}
	for i, sq := range squares {
		if err := g.SubmitAction([]byte(strconv.Itoa(sq)), sids[i%2]); err != nil {
			t.Fatalf("move %d (square %d): %v", i, sq, err)
		}
	}
}

func TestWin(t *testing.T) {
	g := newGame(t)
	play(t, g, 0, 3, 1, 4, 2)

	if !g.IsGameOver() {
		t.Fatal("expected game over")
	}
	if got, _ := g.Outcome(0); got != 1 {
		t.Fatalf("winner outcome = %v", got)
	}
	if got, _ := g.Outcome(1); got != 0 {
		t.Fatalf("loser outcome = %v", got)
	}
	if _, reward, _ := g.State("", 1); reward != -1 {
		t.Fatalf("loser reward = %v", reward)
	}
	if g.Iteration() != 5 {
		t.Fatalf("iteration = %d", g.Iteration())
	}
}

func TestDraw(t *testing.T) {
	g := newGame(t)
	play(t, g, 0, 1, 2, 4, 3, 5, 7, 6, 8)

	if !g.IsGameOver() {
		t.Fatal("expected draw to end the game")
	}
	for i := 0; i < 2; i++ {
		if got, ok := g.Outcome(i); !ok || got != 0.5 {
			t.Fatalf("outcome(%d) = %v,%v", i, got, ok)
		}
	}
}

func TestRejectedMoves(t *testing.T) {
	cases := []struct {
		name   string
		action string
		caller string
		kind   game.Kind
	}{
		{"wrong player", "0", "o", game.KindInvalidTurn},
		{"out of range", "9", "x", game.KindInvalidMove},
		{"bad shape", `[1]`, "x", game.KindInvalidActionSchema},
		{"not a number", `"abc"`, "x", game.KindInvalidActionSchema},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t)
			err := g.SubmitAction([]byte(tc.action), tc.caller)
			if game.KindOf(err) != tc.kind {
				t.Fatalf("kind = %s; want %s (%v)", game.KindOf(err), tc.kind, err)
			}
			if g.Iteration() != 0 {
				t.Fatal("iteration advanced on rejected move")
			}
		})
	}

	g := newGame(t)
	play(t, g, 4)
	if err := g.SubmitAction([]byte(`{"square":4}`), "o"); !errors.Is(err, game.ErrInvalidMove) {
		t.Fatalf("expected occupied square to be rejected, got %v", err)
	}
	if err := g.SubmitAction([]byte(`"5"`), "o"); err != nil {
		t.Fatalf("quoted square: %v", err)
	}
}

func TestStateBoard(t *testing.T) {
	g := newGame(t)
	play(t, g, 4, 0)

	raw, _, err := g.State("", game.MoverIndex)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	st := raw.(State)
	if st.Board[1][1] != 0 || st.Board[0][0] != 1 || st.Board[2][2] != Empty {
		t.Fatalf("board = %v", st.Board)
	}
	if st.PlayerMovingID != 0 || st.PlayerMoving != 1 {
		t.Fatalf("mover = %d/%d", st.PlayerMovingID, st.PlayerMoving)
	}
}

func TestForfeit(t *testing.T) {
	g := newGame(t)
	if err := g.Forfeit(0); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if got, _ := g.Outcome(1); got != 1 {
		t.Fatalf("outcome = %v", got)
	}
	if err := g.SubmitAction([]byte("0"), "x"); !errors.Is(err, game.ErrGameOver) {
		t.Fatalf("expected game over, got %v", err)
	}
}
