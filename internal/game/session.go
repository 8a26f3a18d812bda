package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// MinePlacer arms a board once the first revealed cell is known.
type MinePlacer func(b *Board, d Difficulty, excludeRow, excludeCol int) error

// RandomPlacer places mines uniformly at random using rng.
func RandomPlacer(rng *rand.Rand) MinePlacer {
	return func(b *Board, d Difficulty, excludeRow, excludeCol int) error {
		return b.PlaceMines(d, excludeRow, excludeCol, rng)
	}
}

// FixedPlacer always uses the given layout, regardless of the first click.
func FixedPlacer(positions ...Pos) MinePlacer {
	return func(b *Board, _ Difficulty, _, _ int) error {
		b.PlaceMinesAt(positions...)
		return nil
	}
}

// Session is one game from the first click to a win or a loss. It is not
// safe for concurrent use.
type Session struct {
	ID             string
	Difficulty     Difficulty
	Board          *Board
	State          State
	ElapsedSeconds int
	FirstMoveDone  bool
	FlagsPlaced    int

	place MinePlacer
}

// NewSession returns a ready session with an empty board. Mines are placed
// by placer on the first reveal. d must pass Validate.
func NewSession(d Difficulty, placer MinePlacer) (*Session, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		ID:         uuid.NewString(),
		Difficulty: d,
		Board:      CreateBoard(d),
		State:      StateReady,
		place:      placer,
	}, nil
}

// Reveal opens a cell. The first reveal of a session arms the board and
// starts the game. Moves on a finished game, or on revealed or flagged
// cells, are ignored.
func (s *Session) Reveal(row, col int) MoveResult {
	if s.State.Terminal() || !s.Board.In(row, col) {
		return MoveResult{}
	}
	cell := s.Board.Cell(row, col)
	if cell.IsRevealed || cell.IsFlagged {
		return MoveResult{}
	}

	if !s.FirstMoveDone {
		if err := s.place(s.Board, s.Difficulty, row, col); err != nil {
			// NewSession validated the difficulty, so only a broken placer gets here
			panic(fmt.Sprintf("place mines for %q: %v", s.Difficulty.Name, err))
		}
		s.FirstMoveDone = true
		s.State = StatePlaying
	}

	res := s.Board.RevealCell(row, col)
	out := MoveResult{Revealed: res.Revealed, HitMine: res.HitMine}

	if res.HitMine {
		s.State = StateLost
		s.Board.ExposeMines()
		return out
	}

	if s.Board.IsWin(s.Difficulty) {
		s.State = StateWon
		s.FlagsPlaced += s.Board.FlagRemainingMines()
		out.Won = true
	}
	return out
}

// ToggleFlag flips the flag on a hidden cell. Flagging is allowed before the
// first reveal and never starts the game.
func (s *Session) ToggleFlag(row, col int) FlagResult {
	if s.State.Terminal() {
		return FlagResult{}
	}
	flagged, ok := s.Board.ToggleFlag(row, col)
	if !ok {
		return FlagResult{}
	}
	if flagged {
		s.FlagsPlaced++
	} else {
		s.FlagsPlaced--
	}
	return FlagResult{Flagged: flagged, Changed: true}
}

// Tick advances the clock by one second while the game is being played.
func (s *Session) Tick() int {
	if s.State == StatePlaying {
		s.ElapsedSeconds++
	}
	return s.ElapsedSeconds
}

func (s *Session) Display() DisplayState {
	return DisplayState{
		MineCount:      s.Difficulty.Mines,
		ElapsedSeconds: s.ElapsedSeconds,
		FlagsPlaced:    s.FlagsPlaced,
		State:          s.State,
	}
}
