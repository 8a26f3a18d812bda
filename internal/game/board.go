package game

import (
	"errors"
	"math/rand/v2"
)

var ErrTooManyMines = errors.New("mine count must be smaller than the number of cells")

// Cell is a single square of the board.
type Cell struct {
	IsMine        bool
	IsRevealed    bool
	IsFlagged     bool
	NeighborCount int

	// Exposed is set on every mine when the game is lost. It only affects
	// rendering and is never counted as a revealed cell.
	Exposed bool
}

// Pos addresses a cell by row and column.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board is a fixed rows x cols grid of cells.
type Board struct {
	Rows  int
	Cols  int
	Cells [][]Cell
}

// RevealResult describes what a single reveal changed on the board.
type RevealResult struct {
	Revealed []Pos
	HitMine  bool
}

// CreateBoard allocates an empty, mine-less board for d.
func CreateBoard(d Difficulty) *Board {
	cells := make([][]Cell, d.Rows)
	for row := range cells {
		cells[row] = make([]Cell, d.Cols)
	}
	return &Board{Rows: d.Rows, Cols: d.Cols, Cells: cells}
}

// In reports whether (row, col) lies on the board.
func (b *Board) In(row, col int) bool {
	return row >= 0 && row < b.Rows && col >= 0 && col < b.Cols
}

// Cell returns the cell at (row, col). The position must be on the board.
func (b *Board) Cell(row, col int) *Cell {
	return &b.Cells[row][col]
}

func (b *Board) neighbors(row, col int, fn func(r, c int)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if b.In(r, c) {
				fn(r, c)
			}
		}
	}
}

// PlaceMines puts d.Mines mines on distinct random cells, never on
// (excludeRow, excludeCol), then computes neighbor counts.
func (b *Board) PlaceMines(d Difficulty, excludeRow, excludeCol int, rng *rand.Rand) error {
	if d.Mines >= b.Rows*b.Cols {
		return ErrTooManyMines
	}

	placed := 0
	for placed < d.Mines {
		row := rng.IntN(b.Rows)
		col := rng.IntN(b.Cols)

		// collisions and the excluded cell are simply redrawn
		if (row == excludeRow && col == excludeCol) || b.Cells[row][col].IsMine {
			continue
		}
		b.Cells[row][col].IsMine = true
		placed++
	}

	b.calculateNeighbors()
	return nil
}

// PlaceMinesAt places mines on exactly the given positions. Off-board
// positions are ignored.
func (b *Board) PlaceMinesAt(positions ...Pos) {
	for _, p := range positions {
		if b.In(p.Row, p.Col) {
			b.Cells[p.Row][p.Col].IsMine = true
		}
	}
	b.calculateNeighbors()
}

func (b *Board) calculateNeighbors() {
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			cell := &b.Cells[row][col]
			if cell.IsMine {
				cell.NeighborCount = 0
				continue
			}
			count := 0
			b.neighbors(row, col, func(r, c int) {
				if b.Cells[r][c].IsMine {
					count++
				}
			})
			cell.NeighborCount = count
		}
	}
}

// RevealCell opens (row, col). Revealed, flagged and off-board cells are
// left alone. A zero cell opens its whole connected zero region plus the
// numbered rim around it; flagged cells inside the region stay hidden.
func (b *Board) RevealCell(row, col int) RevealResult {
	var res RevealResult
	if !b.In(row, col) {
		return res
	}

	start := &b.Cells[row][col]
	if start.IsRevealed || start.IsFlagged {
		return res
	}

	start.IsRevealed = true
	res.Revealed = append(res.Revealed, Pos{row, col})
	if start.IsMine {
		res.HitMine = true
		return res
	}

	// IsRevealed doubles as the visited marker, so every cell is pushed at most once.
	stack := []Pos{{row, col}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if b.Cells[p.Row][p.Col].NeighborCount > 0 {
			continue
		}
		b.neighbors(p.Row, p.Col, func(r, c int) {
			next := &b.Cells[r][c]
			if next.IsRevealed || next.IsFlagged {
				return
			}
			next.IsRevealed = true
			res.Revealed = append(res.Revealed, Pos{r, c})
			stack = append(stack, Pos{r, c})
		})
	}

	return res
}

// ToggleFlag flips the flag on a hidden cell and returns the new flag state.
// ok is false when the cell is revealed or off the board.
func (b *Board) ToggleFlag(row, col int) (flagged, ok bool) {
	if !b.In(row, col) {
		return false, false
	}
	cell := &b.Cells[row][col]
	if cell.IsRevealed {
		return false, false
	}
	cell.IsFlagged = !cell.IsFlagged
	return cell.IsFlagged, true
}

// CountSafeRevealed counts revealed cells that are not mines.
func (b *Board) CountSafeRevealed() int {
	n := 0
	for row := range b.Cells {
		for _, c := range b.Cells[row] {
			if c.IsRevealed && !c.IsMine {
				n++
			}
		}
	}
	return n
}

// IsWin reports whether every safe cell has been revealed. Flags don't matter.
func (b *Board) IsWin(d Difficulty) bool {
	return b.CountSafeRevealed() == b.Rows*b.Cols-d.Mines
}

// ExposeMines marks every mine for display after a loss.
func (b *Board) ExposeMines() {
	for row := range b.Cells {
		for col := range b.Cells[row] {
			if b.Cells[row][col].IsMine {
				b.Cells[row][col].Exposed = true
			}
		}
	}
}

// FlagRemainingMines flags every mine that isn't flagged yet and returns
// how many flags were added.
func (b *Board) FlagRemainingMines() int {
	added := 0
	for row := range b.Cells {
		for col := range b.Cells[row] {
			c := &b.Cells[row][col]
			if c.IsMine && !c.IsFlagged {
				c.IsFlagged = true
				added++
			}
		}
	}
	return added
}
