package game

import "fmt"

// Difficulty is a named board configuration.
type Difficulty struct {
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Mines int    `json:"mines"`
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyCustom = "custom"
)

var (
	Easy   = Difficulty{Name: DifficultyEasy, Rows: 9, Cols: 9, Mines: 10}
	Medium = Difficulty{Name: DifficultyMedium, Rows: 16, Cols: 16, Mines: 40}
	Hard   = Difficulty{Name: DifficultyHard, Rows: 16, Cols: 30, Mines: 99}
)

// Presets returns the built-in difficulties, easiest first.
func Presets() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// Cells is the total number of cells on a board of this difficulty.
func (d Difficulty) Cells() int {
	return d.Rows * d.Cols
}

// Validate rejects configurations mine placement could never satisfy.
func (d Difficulty) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("difficulty name is empty")
	}
	if d.Rows <= 0 || d.Cols <= 0 {
		return fmt.Errorf("difficulty %q: board must be at least 1x1, got %dx%d", d.Name, d.Rows, d.Cols)
	}
	if d.Mines < 0 {
		return fmt.Errorf("difficulty %q: negative mine count %d", d.Name, d.Mines)
	}
	if d.Mines >= d.Cells() {
		return fmt.Errorf("difficulty %q: %d mines on %d cells: %w", d.Name, d.Mines, d.Cells(), ErrTooManyMines)
	}
	return nil
}
