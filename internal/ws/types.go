package ws

import "encoding/json"

const (
	// client - server
	MsgAction = "action"
	MsgState  = "state"
	MsgPing   = "ping"

	// server - client
	MsgReady   = "ready"
	MsgMatched = "matched"
	MsgError   = "error"
	MsgResult  = "result"
	MsgPong    = "pong"
)

// Message is the outbound envelope.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// inbound is the envelope clients send. Value carries the game action
// verbatim so each game decodes its own schema.
type inbound struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}
