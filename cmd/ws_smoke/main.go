// Command ws_smoke plays the opening exchange of a two-player codenames game
// against a running server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"playground_server/internal/service"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type seatState struct {
	Iteration int `json:"iteration"`
	State     struct {
		PlayerMovingID int      `json:"player_moving_id"`
		Role           string   `json:"role"`
		Color          string   `json:"color"`
		Words          []string `json:"words"`
		Actual         []string `json:"actual"`
		Clue           string   `json:"clue"`
	} `json:"state"`
}

var clues = []string{"animal", "fruit", "music", "ocean", "river", "planet", "garden"}

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server address")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	tokens, err := service.NewJWTService(secret, time.Hour)
	if err != nil {
		log.Fatal(err)
	}

	giver := dial(*addr, tokens, 3001)
	defer giver.Close()
	guesser := dial(*addr, tokens, 3002)
	defer guesser.Close()

	// seats are assigned in arrival order, so the first dial gives clues
	first := waitState(giver, 0)
	if first.State.Role != "GIVER" {
		log.Fatalf("expected first seat to be the giver, got %s", first.State.Role)
	}
	waitState(guesser, 0)

	iteration := 0
	for _, word := range clues {
		send(giver, map[string]any{"word": word, "count": 1})
		if st, ok := readState(giver, iteration+1); ok {
			log.Printf("clue %q accepted, iteration %d", word, st.Iteration)
			iteration = st.Iteration
			break
		}
	}
	if iteration == 0 {
		log.Fatal("no clue was accepted")
	}

	target := -1
	for i, c := range first.State.Actual {
		if c == first.State.Color {
			target = i
			break
		}
	}
	send(guesser, map[string]any{"guess": target})
	st := waitState(guesser, iteration+1)
	log.Printf("guessed %q, now iteration %d, mover seat %d", first.State.Words[target], st.Iteration, st.State.PlayerMovingID)

	log.Println("smoke test finished")
}

func dial(addr string, tokens *service.JWTService, userID int64) *websocket.Conn {
	token, err := tokens.Generate(userID)
	if err != nil {
		log.Fatalf("token for %d: %v", userID, err)
	}
	// use 127.0.0.1 to prefer IPv4
	url := fmt.Sprintf("ws://%s/ws?game=codenames&players=2&token=%s", addr, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %d: %v", userID, err)
	}
	return conn
}

func send(conn *websocket.Conn, value any) {
	msg, _ := json.Marshal(map[string]any{"type": "action", "value": value})
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Fatalf("write: %v", err)
	}
}

func waitState(conn *websocket.Conn, iteration int) seatState {
	st, ok := readState(conn, iteration)
	if !ok {
		log.Fatalf("no state for iteration %d", iteration)
	}
	return st
}

// readState reads until a state at iteration arrives. An error frame or a
// timeout returns false.
func readState(conn *websocket.Conn, iteration int) (seatState, bool) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Printf("read: %v", err)
			return seatState{}, false
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		switch env.Type {
		case "error":
			log.Printf("rejected: %s", env.Payload)
			return seatState{}, false
		case "state":
			var st seatState
			if err := json.Unmarshal(env.Payload, &st); err == nil && st.Iteration == iteration {
				return st, true
			}
		}
	}
}
