package engine

import "fmt"

// Board holds the committed cells of the playfield, indexed [y][x]
type Board struct {
	cells [][]Color
}

// NewBoard creates an empty BoardWidth x BoardHeight board
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// BoardFromRows builds a board from a snapshot, validating dimensions and colors
func BoardFromRows(rows [][]Color) (*Board, error) {
	if len(rows) != BoardHeight {
		return nil, fmt.Errorf("board must have %d rows, got %d", BoardHeight, len(rows))
	}
	b := &Board{cells: make([][]Color, BoardHeight)}
	for y, row := range rows {
		if len(row) != BoardWidth {
			return nil, fmt.Errorf("row %d must have %d cells, got %d", y, BoardWidth, len(row))
		}
		for x, c := range row {
			if c != Empty && !IsCatalogColor(c) {
				return nil, fmt.Errorf("invalid color %q at (%d,%d)", c, x, y)
			}
		}
		b.cells[y] = append([]Color(nil), row...)
	}
	return b, nil
}

// Width returns the number of columns
func (b *Board) Width() int {
	return BoardWidth
}

// Height returns the number of rows
func (b *Board) Height() int {
	return BoardHeight
}

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < BoardWidth && y >= 0 && y < BoardHeight
}

// CellAt returns the cell at (x, y); ok is false when out of range
func (b *Board) CellAt(x, y int) (Color, bool) {
	if !b.inBounds(x, y) {
		return Empty, false
	}
	return b.cells[y][x], true
}

// SetCell commits a color into (x, y). Out of range coordinates are a geometry bug and panic.
func (b *Board) SetCell(x, y int, color Color) {
	if !b.inBounds(x, y) {
		panic(fmt.Sprintf("engine: SetCell(%d, %d) outside %dx%d board", x, y, BoardWidth, BoardHeight))
	}
	b.cells[y][x] = color
}

// IsRowFull reports whether every cell of row y is occupied
func (b *Board) IsRowFull(y int) bool {
	if y < 0 || y >= BoardHeight {
		return false
	}
	for _, c := range b.cells[y] {
		if c == Empty {
			return false
		}
	}
	return true
}

// ClearRow removes row y and inserts an empty row at the top; rows above y shift down by one
func (b *Board) ClearRow(y int) {
	if y < 0 || y >= BoardHeight {
		panic(fmt.Sprintf("engine: ClearRow(%d) outside %d rows", y, BoardHeight))
	}
	copy(b.cells[1:y+1], b.cells[:y])
	b.cells[0] = make([]Color, BoardWidth)
}

// Reset empties every cell
func (b *Board) Reset() {
	b.cells = make([][]Color, BoardHeight)
	for y := range b.cells {
		b.cells[y] = make([]Color, BoardWidth)
	}
}

// Rows returns a deep copy of the cells
func (b *Board) Rows() [][]Color {
	rows := make([][]Color, len(b.cells))
	for y, row := range b.cells {
		rows[y] = append([]Color(nil), row...)
	}
	return rows
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	return &Board{cells: b.Rows()}
}
