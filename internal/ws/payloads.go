package ws

import (
	"encoding/json"

	"minesweeper/internal/game"
)

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// client → server
type CellPayload struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Token string `json:"token,omitempty"`
}

type NewGamePayload struct {
	Difficulty string `json:"difficulty"`
}

// server → client
type TickPayload struct {
	Seq       uint64 `json:"seq"`
	SessionID string `json:"session_id"`
	game.DisplayState
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
