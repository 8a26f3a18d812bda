package game

// Cell display states.
const (
	CellHidden   = "hidden"
	CellFlagged  = "flagged"
	CellRevealed = "revealed"
	CellMine     = "mine"
)

// CellView is everything a renderer needs for one cell. Mines stay hidden
// until the game is lost.
type CellView struct {
	State string `json:"state"`
	Count int    `json:"count,omitempty"`
}

type BoardView struct {
	Rows  int          `json:"rows"`
	Cols  int          `json:"cols"`
	Cells [][]CellView `json:"cells"`
}

// View renders the board for display. A lost game shows every mine but never
// marks misplaced flags.
func (s *Session) View() BoardView {
	b := s.Board
	grid := make([][]CellView, b.Rows)
	for row := 0; row < b.Rows; row++ {
		grid[row] = make([]CellView, b.Cols)
		for col := 0; col < b.Cols; col++ {
			grid[row][col] = viewCell(b.Cells[row][col])
		}
	}
	return BoardView{Rows: b.Rows, Cols: b.Cols, Cells: grid}
}

func viewCell(c Cell) CellView {
	switch {
	case c.Exposed || (c.IsRevealed && c.IsMine):
		return CellView{State: CellMine}
	case c.IsRevealed:
		return CellView{State: CellRevealed, Count: c.NeighborCount}
	case c.IsFlagged:
		return CellView{State: CellFlagged}
	default:
		return CellView{State: CellHidden}
	}
}
