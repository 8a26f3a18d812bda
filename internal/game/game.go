package game

// State is the lifecycle stage of a session.
type State string

const (
	StateReady   State = "ready"
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Terminal reports whether no further moves are accepted.
func (s State) Terminal() bool {
	return s == StateWon || s == StateLost
}

// DisplayState is the header information shown above the board.
type DisplayState struct {
	MineCount      int   `json:"mine_count"`
	ElapsedSeconds int   `json:"elapsed_seconds"`
	FlagsPlaced    int   `json:"flags_placed"`
	State          State `json:"state"`
}

// MoveResult is the outcome of a reveal action on a session.
type MoveResult struct {
	Revealed []Pos `json:"newly_revealed"`
	HitMine  bool  `json:"hit_mine"`
	Won      bool  `json:"won"`
}

// FlagResult is the outcome of a flag toggle on a session. Changed is false
// when the toggle was ignored.
type FlagResult struct {
	Flagged bool `json:"flagged"`
	Changed bool `json:"changed"`
}
