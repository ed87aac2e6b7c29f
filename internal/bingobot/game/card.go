package game

import (
	"fmt"

	"github.com/bloops-games/bingo/internal/database/room/model"
)

// Card is a rows x columns grid of phrases stored row-major, with a parallel
// marked grid.
type Card struct {
	rows    int
	columns int
	cells   []string
	marked  []bool
}

func NewCard(rows, columns int, phrases []string) (*Card, error) {
	if rows <= 0 || columns <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGridShape, rows, columns)
	}

	if rows*columns != len(phrases) {
		return nil, fmt.Errorf("%w: %dx%d needs %d phrases, got %d",
			ErrInvalidGridShape, rows, columns, rows*columns, len(phrases))
	}

	seen := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		if _, ok := seen[p]; ok {
			return nil, fmt.Errorf("%w: duplicate phrase %q", ErrInvalidGridShape, p)
		}
		seen[p] = struct{}{}
	}

	c := &Card{
		rows:    rows,
		columns: columns,
		cells:   make([]string, len(phrases)),
		marked:  make([]bool, len(phrases)),
	}
	copy(c.cells, phrases)

	return c, nil
}

func cardFromPlayer(p model.Player) (*Card, error) {
	c, err := NewCard(p.Rows, p.Columns, p.Cells)
	if err != nil {
		return nil, fmt.Errorf("player %s card: %w", p.Identity, err)
	}

	if len(p.Marked) != len(p.Cells) {
		return nil, fmt.Errorf("player %s card: %w: %d marks for %d cells",
			p.Identity, ErrInvalidGridShape, len(p.Marked), len(p.Cells))
	}

	copy(c.marked, p.Marked)

	return c, nil
}

func (c *Card) Rows() int {
	return c.rows
}

func (c *Card) Columns() int {
	return c.columns
}

func (c *Card) Len() int {
	return len(c.cells)
}

func (c *Card) Cell(index int) string {
	return c.cells[index]
}

func (c *Card) IsMarked(index int) bool {
	return c.marked[index]
}

func (c *Card) Cells() []string {
	cells := make([]string, len(c.cells))
	copy(cells, c.cells)
	return cells
}

func (c *Card) Marked() []bool {
	marked := make([]bool, len(c.marked))
	copy(marked, c.marked)
	return marked
}

// Mark sets the cell at the 0-based index and reports whether the value changed.
// Setting a cell to the value it already holds succeeds.
func (c *Card) Mark(index int, value bool) (bool, error) {
	if index < 0 || index >= len(c.marked) {
		return false, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(c.marked))
	}

	if c.marked[index] == value {
		return false, nil
	}

	c.marked[index] = value

	return true, nil
}

// CheckWin reports whether a row, a column or, on square cards, a main diagonal
// is fully marked.
func (c *Card) CheckWin() bool {
RowLoop:
	for r := 0; r < c.rows; r++ {
		for col := 0; col < c.columns; col++ {
			if !c.marked[r*c.columns+col] {
				continue RowLoop
			}
		}
		return true
	}

ColumnLoop:
	for col := 0; col < c.columns; col++ {
		for r := 0; r < c.rows; r++ {
			if !c.marked[r*c.columns+col] {
				continue ColumnLoop
			}
		}
		return true
	}

	if c.rows != c.columns {
		return false
	}

	diagonal, antiDiagonal := true, true
	for i := 0; i < c.rows; i++ {
		diagonal = diagonal && c.marked[i*c.columns+i]
		antiDiagonal = antiDiagonal && c.marked[i*c.columns+(c.columns-1-i)]
	}

	return diagonal || antiDiagonal
}
