package snake

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"playground_server/internal/game"
)

func newGame(t *testing.T) *Game {
	t.Helper()
	roster, err := game.NewRoster("s1", []game.SessionInfo{{SID: "p", UserID: 7, ModelName: "m"}})
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	g, err := New("s1", roster, game.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rand:   rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return g
}

func move(t *testing.T, g *Game, dirs ...string) {
	t.Helper()
	for i, d := range dirs {
		if err := g.SubmitAction([]byte(`"`+d+`"`), "p"); err != nil {
			t.Fatalf("move %d (%s): %v", i, d, err)
		}
	}
}

func TestNeedsOnePlayer(t *testing.T) {
	roster, _ := game.NewRoster("s1", []game.SessionInfo{{SID: "a"}, {SID: "b"}})
	if _, err := New("s1", roster, game.Options{}); game.ReasonOf(err) != "player_count" {
		t.Fatalf("expected player_count error, got %v", err)
	}
}

func TestMoves(t *testing.T) {
	cases := []struct {
		name       string
		body       []Cell
		apple      Cell
		moves      []string
		wantLen    int
		wantHead   Cell
		wantReward float64
		wantOver   bool
	}{
		{"step", []Cell{{1, 1}}, Cell{2, 2}, []string{"E"}, 1, Cell{2, 1}, moveCost, false},
		{"eat apple grows", []Cell{{1, 1}}, Cell{2, 2}, []string{"E", "S"}, 2, Cell{2, 2}, appleBonus, false},
		{"north wall", []Cell{{1, 1}}, Cell{5, 5}, []string{"N", "N"}, 1, Cell{1, 0}, deathCost, true},
		{"west wall", []Cell{{1, 1}}, Cell{5, 5}, []string{"W", "W"}, 1, Cell{0, 1}, deathCost, true},
		{"east wall", []Cell{{9, 4}}, Cell{5, 5}, []string{"E"}, 1, Cell{9, 4}, deathCost, true},
		{"bites itself", []Cell{{2, 3}, {3, 3}, {4, 3}, {4, 4}, {3, 4}}, Cell{9, 9}, []string{"N"}, 5, Cell{3, 4}, deathCost, true},
		{"chases own tail", []Cell{{3, 3}, {4, 3}, {4, 4}, {3, 4}}, Cell{9, 9}, []string{"N"}, 4, Cell{3, 3}, moveCost, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t)
			g.body = tc.body
			g.apple = tc.apple
			move(t, g, tc.moves...)

			raw, reward, err := g.State("p", 0)
			if err != nil {
				t.Fatalf("state: %v", err)
			}
			st := raw.(State)
			if len(st.Snake) != tc.wantLen || st.Snake[len(st.Snake)-1] != tc.wantHead {
				t.Fatalf("snake = %v; want length %d with head %v", st.Snake, tc.wantLen, tc.wantHead)
			}
			if reward != tc.wantReward {
				t.Fatalf("reward = %v; want %v", reward, tc.wantReward)
			}
			if g.IsGameOver() != tc.wantOver {
				t.Fatalf("over = %v; want %v", g.IsGameOver(), tc.wantOver)
			}
			if g.Iteration() != len(tc.moves) {
				t.Fatalf("iteration = %d", g.Iteration())
			}
		})
	}
}

func TestAppleRespawnsOffSnake(t *testing.T) {
	g := newGame(t)
	move(t, g, "E", "S")

	for _, c := range g.body {
		if c == g.apple {
			t.Fatalf("apple %v placed on snake %v", g.apple, g.body)
		}
	}
	if !inside(g.apple) {
		t.Fatalf("apple %v off the board", g.apple)
	}
}

func TestOutcomeIsLength(t *testing.T) {
	g := newGame(t)
	if _, ok := g.Outcome(0); ok {
		t.Fatal("outcome available before game over")
	}

	g.body = []Cell{{1, 2}, {1, 1}}
	g.apple = Cell{8, 8}
	move(t, g, "N", "N")

	if got, ok := g.Outcome(0); !ok || got != 2 {
		t.Fatalf("outcome = %v,%v; want 2", got, ok)
	}
	if err := g.SubmitAction([]byte(`"E"`), "p"); !errors.Is(err, game.ErrGameOver) {
		t.Fatalf("expected game over, got %v", err)
	}
}

func TestRejectedMoves(t *testing.T) {
	cases := []struct {
		name   string
		action string
		caller string
		kind   game.Kind
	}{
		{"wrong caller", `"N"`, "q", game.KindInvalidTurn},
		{"unknown direction", `"X"`, "p", game.KindInvalidMove},
		{"number", `5`, "p", game.KindInvalidActionSchema},
		{"missing move", `{"dir":"N"}`, "p", game.KindInvalidActionSchema},
		{"not json", `N`, "p", game.KindInvalidActionSchema},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t)
			err := g.SubmitAction([]byte(tc.action), tc.caller)
			if game.KindOf(err) != tc.kind {
				t.Fatalf("kind = %s; want %s (%v)", game.KindOf(err), tc.kind, err)
			}
			if g.Iteration() != 0 || g.heading != "E" || len(g.body) != 1 {
				t.Fatal("state changed on rejected move")
			}
		})
	}

	g := newGame(t)
	if err := g.SubmitAction([]byte(`{"move":"s"}`), "p"); err != nil {
		t.Fatalf("object form: %v", err)
	}
}

func TestForfeit(t *testing.T) {
	g := newGame(t)
	if err := g.Forfeit(1); game.KindOf(err) != game.KindUnknownPlayer {
		t.Fatalf("expected unknown player, got %v", err)
	}
	if err := g.Forfeit(0); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if got, ok := g.Outcome(0); !ok || got != 1 {
		t.Fatalf("outcome = %v,%v", got, ok)
	}
	if _, reward, _ := g.State("p", game.MoverIndex); reward != deathCost {
		t.Fatalf("reward = %v", reward)
	}
}
