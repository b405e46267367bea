package engine

// RotateClockwise returns shape turned 90 degrees clockwise:
// the transpose with every row reversed, so rotated[r][c] = shape[n-1-c][r].
func RotateClockwise(shape Shape) Shape {
	n := len(shape)
	rotated := make(Shape, n)
	for r := range n {
		rotated[r] = make([]bool, n)
		for c := range n {
			rotated[r][c] = shape[n-1-c][r]
		}
	}
	return rotated
}

// TryRotate computes the clockwise rotation of piece and validates it at the
// current position. It never mutates piece; ok is false when the rotated
// shape collides, in which case the caller keeps the original shape.
func TryRotate(piece *ActivePiece, board *Board) (Shape, bool) {
	rotated := RotateClockwise(piece.Shape)
	if !CanPlace(rotated, piece.Position, board) {
		return nil, false
	}
	return rotated, true
}
