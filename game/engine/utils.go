package engine

// ColumnHeights returns the stack height of every column, measured from the floor
func ColumnHeights(board *Board) []int {
	heights := make([]int, BoardWidth)
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if board.cells[y][x] != Empty {
				heights[x] = BoardHeight - y
				break
			}
		}
	}
	return heights
}

// AggregateHeight sums the column heights
func AggregateHeight(board *Board) int {
	total := 0
	for _, h := range ColumnHeights(board) {
		total += h
	}
	return total
}

// CountHoles counts empty cells that have a filled cell somewhere above them
func CountHoles(board *Board) int {
	holes := 0
	for x := 0; x < BoardWidth; x++ {
		covered := false
		for y := 0; y < BoardHeight; y++ {
			if board.cells[y][x] != Empty {
				covered = true
			} else if covered {
				holes++
			}
		}
	}
	return holes
}

// Bumpiness sums the absolute height difference of adjacent columns
func Bumpiness(board *Board) int {
	heights := ColumnHeights(board)
	total := 0
	for x := 1; x < len(heights); x++ {
		d := heights[x] - heights[x-1]
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// FilledCells counts the occupied cells on the board
func FilledCells(board *Board) int {
	n := 0
	for _, row := range board.cells {
		for _, c := range row {
			if c != Empty {
				n++
			}
		}
	}
	return n
}

// CompleteRows returns the indices of the currently full rows
func CompleteRows(board *Board) []int {
	var rows []int
	for y := 0; y < BoardHeight; y++ {
		if board.IsRowFull(y) {
			rows = append(rows, y)
		}
	}
	return rows
}
