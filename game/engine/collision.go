package engine

// CanPlace reports whether shape fits on board with its top-left corner at pos.
//
// Columns outside [0, width) and rows at or below the bottom are always
// illegal. Occupancy is only checked for rows >= 0: a piece may hang above
// the board, which is what lets pieces spawn and rotate at the top edge.
func CanPlace(shape Shape, pos Position, board *Board) bool {
	for y, row := range shape {
		for x, filled := range row {
			if !filled {
				continue
			}
			bx, by := pos.X+x, pos.Y+y
			if bx < 0 || bx >= BoardWidth || by >= BoardHeight {
				return false
			}
			if by >= 0 && board.cells[by][bx] != Empty {
				return false
			}
		}
	}
	return true
}

// Fits reports whether the piece can occupy its position shifted by dx, dy
func Fits(piece *ActivePiece, board *Board, dx, dy int) bool {
	return CanPlace(piece.Shape, piece.Position.Offset(dx, dy), board)
}
