package engine

// MergeResult describes a single merge event
type MergeResult struct {
	LinesCleared int   `json:"lines_cleared"`
	ClearedRows  []int `json:"cleared_rows,omitempty"`
	CellsDropped int   `json:"cells_dropped,omitempty"`
	ScoreDelta   int   `json:"score_delta"`
	LevelBefore  int   `json:"level_before"`
	LevelAfter   int   `json:"level_after"`
}

// Merge commits piece into board, clears full rows and updates the score and level in state.
//
// Cells above the top edge are dropped. The score multiplier is the level as
// of the start of the merge, applied once for all rows cleared by it.
func Merge(board *Board, piece *ActivePiece, state *SessionState) MergeResult {
	result := MergeResult{LevelBefore: state.Level}

	for _, cell := range piece.Shape.Cells() {
		bx, by := piece.Position.X+cell.X, piece.Position.Y+cell.Y
		if by < 0 {
			result.CellsDropped++
			continue
		}
		board.SetCell(bx, by, piece.Color)
	}

	result.ClearedRows = ClearFullRows(board)
	result.LinesCleared = len(result.ClearedRows)
	result.ScoreDelta = ScoreFor(result.LinesCleared, state.Level)

	state.Score += result.ScoreDelta
	state.Lines += result.LinesCleared
	state.Level = LevelFor(state.Score)
	result.LevelAfter = state.Level

	return result
}

// ClearFullRows scans bottom to top and clears every full row, re-examining
// the same index after each clear since the rows above shift into it.
// It returns the row indices in the order they were cleared.
func ClearFullRows(board *Board) []int {
	var cleared []int
	for y := BoardHeight - 1; y >= 0; {
		if board.IsRowFull(y) {
			board.ClearRow(y)
			cleared = append(cleared, y)
			continue
		}
		y--
	}
	return cleared
}

// ScoreFor returns the points for clearing lines at level
func ScoreFor(lines, level int) int {
	return lines * PointsPerLine * level
}

// LevelFor derives the level from a score
func LevelFor(score int) int {
	return score/PointsPerLevel + 1
}
