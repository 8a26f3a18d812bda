package ws

const (
	// client - server
	MsgReveal  = "reveal"
	MsgFlag    = "flag"
	MsgNewGame = "new_game"
	MsgRestart = "restart"
	MsgPing    = "ping"

	// server - client
	MsgState  = "state"
	MsgTick   = "tick"
	MsgResult = "result"
	MsgPong   = "pong"
	MsgError  = "error"
)

// Message is the envelope for everything written to a client.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
