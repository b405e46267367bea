package engine

import (
	"fmt"
	"strings"
)

// PieceType identifies one of the seven catalog pieces
type PieceType string

const (
	PieceI PieceType = "I"
	PieceO PieceType = "O"
	PieceT PieceType = "T"
	PieceS PieceType = "S"
	PieceZ PieceType = "Z"
	PieceJ PieceType = "J"
	PieceL PieceType = "L"
)

// PieceTypes lists the catalog in its canonical order
var PieceTypes = []PieceType{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}

// Shape is a square occupancy matrix indexed [row][column]
type Shape [][]bool

// Tetromino is a catalog entry
type Tetromino struct {
	Shape Shape `json:"shape"`
	Color Color `json:"color"`
}

var catalog = map[PieceType]Tetromino{
	PieceI: {Shape: shapeOf(
		"....",
		"XXXX",
		"....",
		"....",
	), Color: "#00f0f0"},
	PieceO: {Shape: shapeOf(
		"XX",
		"XX",
	), Color: "#f0f000"},
	PieceT: {Shape: shapeOf(
		".X.",
		"XXX",
		"...",
	), Color: "#a000f0"},
	PieceS: {Shape: shapeOf(
		".XX",
		"XX.",
		"...",
	), Color: "#00f000"},
	PieceZ: {Shape: shapeOf(
		"XX.",
		".XX",
		"...",
	), Color: "#f00000"},
	PieceJ: {Shape: shapeOf(
		"X..",
		"XXX",
		"...",
	), Color: "#0000f0"},
	PieceL: {Shape: shapeOf(
		"..X",
		"XXX",
		"...",
	), Color: "#f0a000"},
}

// shapeOf builds a shape from rows where 'X' marks an occupied cell
func shapeOf(rows ...string) Shape {
	shape := make(Shape, len(rows))
	for r, row := range rows {
		shape[r] = make([]bool, len(row))
		for c, ch := range row {
			shape[r][c] = ch == 'X'
		}
	}
	return shape
}

// Lookup returns a copy of the catalog entry for t
func Lookup(t PieceType) (Tetromino, bool) {
	entry, ok := catalog[t]
	if !ok {
		return Tetromino{}, false
	}
	return Tetromino{Shape: entry.Shape.Clone(), Color: entry.Color}, true
}

// BaseShape returns a copy of the spawn orientation of t
func BaseShape(t PieceType) Shape {
	entry, _ := Lookup(t)
	return entry.Shape
}

// ColorOf returns the color token of t
func ColorOf(t PieceType) Color {
	return catalog[t].Color
}

// Valid reports whether t is a catalog piece
func (t PieceType) Valid() bool {
	_, ok := catalog[t]
	return ok
}

// ParsePieceType parses a piece letter, case-insensitively
func ParsePieceType(s string) (PieceType, error) {
	t := PieceType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown piece type %q", s)
	}
	return t, nil
}

// IsCatalogColor reports whether c is the color of some catalog piece
func IsCatalogColor(c Color) bool {
	for _, entry := range catalog {
		if entry.Color == c {
			return true
		}
	}
	return false
}

// Size returns N for an N x N shape
func (s Shape) Size() int {
	return len(s)
}

// Clone returns a deep copy of the shape
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	c := make(Shape, len(s))
	for i, row := range s {
		c[i] = append([]bool(nil), row...)
	}
	return c
}

// Cells returns the occupied cells in local coordinates, row by row
func (s Shape) Cells() []Position {
	var cells []Position
	for y, row := range s {
		for x, filled := range row {
			if filled {
				cells = append(cells, Position{X: x, Y: y})
			}
		}
	}
	return cells
}

// Equal reports whether two shapes have identical occupancy
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if len(s[i]) != len(other[i]) {
			return false
		}
		for j := range s[i] {
			if s[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// String renders the shape using 'X' and '.'
func (s Shape) String() string {
	var b strings.Builder
	for i, row := range s {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, filled := range row {
			if filled {
				b.WriteByte('X')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
