package game

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestNewRoster(t *testing.T) {
	r, err := NewRoster("g1", []SessionInfo{
		{SID: "a", UserID: 1, ModelName: "m"},
		{SID: "b", UserID: 2, IsHuman: true},
	})
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("len = %d", r.Len())
	}
	p, ok := r.BySID("b")
	if !ok || p.Index != 1 || p.UserID() != 2 || !p.IsHuman() {
		t.Fatalf("BySID(b) = %+v, %v", p, ok)
	}
	if p.Info.GameID != "g1" {
		t.Fatalf("game id not stamped: %q", p.Info.GameID)
	}
	if _, ok := r.BySID("zzz"); ok {
		t.Fatal("unexpected lookup hit")
	}
	if _, ok := r.At(2); ok {
		t.Fatal("At out of range should fail")
	}

	all := r.All()
	all[0].Info.SID = "mutated"
	if p, _ := r.At(0); p.SID() != "a" {
		t.Fatal("All must return a copy")
	}
}

func TestNewRosterRejects(t *testing.T) {
	cases := []struct {
		name   string
		infos  []SessionInfo
		reason string
	}{
		{"empty sid", []SessionInfo{{SID: ""}}, "empty_sid"},
		{"duplicate sid", []SessionInfo{{SID: "a"}, {SID: "a"}}, "duplicate_sid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRoster("g", tc.infos)
			if KindOf(err) != KindConfiguration || ReasonOf(err) != tc.reason {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestAdvanceCountsOnlySuccess(t *testing.T) {
	r, _ := NewRoster("g", []SessionInfo{{SID: "a"}})
	b := NewBase("g", TypeTicTacToe, r, quietOptions())

	if err := b.Advance("a", func() error { return nil }); err != nil {
		t.Fatalf("advance: %v", err)
	}
	bad := NewError(KindInvalidMove, "nope")
	if err := b.Advance("a", func() error { return bad }); err != bad {
		t.Fatalf("advance error = %v", err)
	}

	if b.Iteration() != 1 || b.Attempts() != 2 {
		t.Fatalf("iteration=%d attempts=%d", b.Iteration(), b.Attempts())
	}
}

func TestBaseTimeout(t *testing.T) {
	r, _ := NewRoster("g", []SessionInfo{{SID: "a"}})
	opts := quietOptions()
	opts.TurnTimeout = 10 * time.Millisecond
	b := NewBase("g", TypeCodenames, r, opts)

	fired := make(chan struct{})
	b.ResetTimeout(func() { close(fired) })
	if ts := b.TimeoutTimestamp(); ts < time.Now().Unix()-1 {
		t.Fatalf("timestamp %d is in the past", ts)
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timeout never fired")
	}
}

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("submit: %w", Errorf(KindInvalidClue, "not_in_dictionary", "clue %q unknown", "xyz"))

	if !errors.Is(err, ErrInvalidClue) {
		t.Fatal("expected kind match")
	}
	if !errors.Is(err, &Error{Kind: KindInvalidClue, Reason: "not_in_dictionary"}) {
		t.Fatal("expected reason match")
	}
	if errors.Is(err, &Error{Kind: KindInvalidClue, Reason: "not_single_word"}) {
		t.Fatal("reason mismatch should not match")
	}
	if errors.Is(err, ErrInvalidGuess) {
		t.Fatal("kind mismatch should not match")
	}
	if KindOf(err) != KindInvalidClue || ReasonOf(err) != "not_in_dictionary" {
		t.Fatalf("KindOf/ReasonOf = %s/%s", KindOf(err), ReasonOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatal("plain errors should be UNKNOWN")
	}

	cause := errors.New("eof")
	if !errors.Is(Wrap(KindInvalidActionSchema, "bad json", cause), cause) {
		t.Fatal("Wrap must keep the cause")
	}
}
