package engine

import (
	"testing"
	"time"
)

func createTestConfig() *GameConfig {
	return &GameConfig{
		Name:           "engine-test",
		Description:    "Configuration for engine integration tests",
		BaseIntervalMS: 1000,
	}
}

// newSequenceEngine returns an engine that spawns the given types in order
func newSequenceEngine(t *testing.T, types ...PieceType) *GameEngine {
	t.Helper()
	engine, err := NewEngineWithSource(createTestConfig(), NewSequenceSource(types...))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}

// rowsWithGap returns a board snapshot whose bottom rows are full except for the gap columns
func rowsWithGap(filledRows int, gap ...int) [][]Color {
	rows := NewBoard().Rows()
	skip := make(map[int]bool)
	for _, x := range gap {
		skip[x] = true
	}
	for y := BoardHeight - filledRows; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if !skip[x] {
				rows[y][x] = ColorOf(PieceZ)
			}
		}
	}
	return rows
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	state := engine.GetState()
	if state.Score != 0 {
		t.Errorf("Expected initial score 0, got %d", state.Score)
	}
	if state.Level != 1 {
		t.Errorf("Expected initial level 1, got %d", state.Level)
	}
	if state.Status != StatusRunning {
		t.Errorf("Expected status running, got %s", state.Status)
	}
	if state.Piece == nil {
		t.Fatal("Expected an active piece after start")
	}
	if state.Piece.Position != SpawnPosition() {
		t.Errorf("Expected piece at spawn %v, got %v", SpawnPosition(), state.Piece.Position)
	}
	if state.PiecesSpawned != 1 {
		t.Errorf("Expected 1 spawned piece, got %d", state.PiecesSpawned)
	}
	if len(state.Board) != BoardHeight || len(state.Board[0]) != BoardWidth {
		t.Errorf("Expected %dx%d board, got %dx%d", BoardWidth, BoardHeight, len(state.Board[0]), len(state.Board))
	}
}

func TestNewEngineInvalidConfig(t *testing.T) {
	if _, err := NewEngine(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := NewEngine(&GameConfig{Description: "no name"}); err == nil {
		t.Error("Expected error for config without name")
	}
	if _, err := NewEngineWithSource(createTestConfig(), nil); err == nil {
		t.Error("Expected error for nil source")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults()
	if engine.GetConfig().Name != "classic" {
		t.Errorf("Expected classic preset, got %s", engine.GetConfig().Name)
	}
	if engine.Interval() != time.Second {
		t.Errorf("Expected 1s interval, got %v", engine.Interval())
	}
}

// An I piece falls to the floor and locks into the bottom row without scoring
func TestTickToFloorLocksPiece(t *testing.T) {
	engine := newSequenceEngine(t, PieceI)

	// The I piece occupies local row 1, so it rests with its origin at y=18
	for i := 0; i < BoardHeight-2; i++ {
		out := engine.Tick()
		if !out.Applied || out.Locked || out.DropDistance != 1 {
			t.Fatalf("Tick %d: expected a one row descent, got %+v", i+1, out)
		}
	}
	if y := engine.ActivePiece().Position.Y; y != BoardHeight-2 {
		t.Fatalf("Expected piece origin at y=%d, got %d", BoardHeight-2, y)
	}

	out := engine.Tick()
	if !out.Locked {
		t.Fatalf("Expected final tick to lock the piece, got %+v", out)
	}
	if out.LinesCleared != 0 || engine.GetScore() != 0 {
		t.Errorf("Expected no clear and score 0, got %d lines and score %d", out.LinesCleared, engine.GetScore())
	}

	board := engine.Board()
	for x := 0; x < BoardWidth; x++ {
		cell, _ := board.CellAt(x, BoardHeight-1)
		want := Empty
		if x >= 4 && x <= 7 {
			want = ColorOf(PieceI)
		}
		if cell != want {
			t.Errorf("Cell (%d,%d): expected %q, got %q", x, BoardHeight-1, want, cell)
		}
	}
	if FilledCells(board) != 4 {
		t.Errorf("Expected 4 filled cells, got %d", FilledCells(board))
	}

	state := engine.GetState()
	if state.Piece.Position != SpawnPosition() {
		t.Errorf("Expected a fresh piece at spawn, got %v", state.Piece.Position)
	}
	if state.PiecesSpawned != 2 {
		t.Errorf("Expected 2 spawned pieces, got %d", state.PiecesSpawned)
	}
	if state.Ticks != BoardHeight-1 {
		t.Errorf("Expected %d ticks, got %d", BoardHeight-1, state.Ticks)
	}
}

// A hard-dropped O piece completes the bottom row
func TestHardDropClearsRow(t *testing.T) {
	engine := newSequenceEngine(t, PieceO)
	board, err := BoardFromRows(rowsWithGap(1, 4, 5))
	if err != nil {
		t.Fatalf("Failed to build board: %v", err)
	}
	engine.board = board

	out := engine.HardDrop()
	if !out.Locked {
		t.Fatalf("Expected hard drop to lock, got %+v", out)
	}
	if out.DropDistance != BoardHeight-2 {
		t.Errorf("Expected drop distance %d, got %d", BoardHeight-2, out.DropDistance)
	}
	if out.LinesCleared != 1 {
		t.Fatalf("Expected 1 cleared line, got %d", out.LinesCleared)
	}
	if out.ScoreDelta != PointsPerLine*1 || engine.GetScore() != PointsPerLine {
		t.Errorf("Expected score %d, got delta %d score %d", PointsPerLine, out.ScoreDelta, engine.GetScore())
	}

	rows := engine.GetState().Board
	if len(rows) != BoardHeight {
		t.Fatalf("Expected %d rows after clear, got %d", BoardHeight, len(rows))
	}
	for x := 0; x < BoardWidth; x++ {
		if rows[0][x] != Empty {
			t.Errorf("Expected new top row to be empty at column %d", x)
		}
	}
	// The upper half of the O shifted down into the cleared row
	for x := 0; x < BoardWidth; x++ {
		want := Empty
		if x == 4 || x == 5 {
			want = ColorOf(PieceO)
		}
		if rows[BoardHeight-1][x] != want {
			t.Errorf("Bottom row column %d: expected %q, got %q", x, want, rows[BoardHeight-1][x])
		}
	}
}

// Stacking O pieces in the spawn column ends the game
func TestGameOverWhenSpawnBlocked(t *testing.T) {
	engine := newSequenceEngine(t, PieceO)

	var last Outcome
	drops := 0
	for !engine.IsGameOver() && drops < BoardHeight {
		last = engine.HardDrop()
		drops++
	}

	if !engine.IsGameOver() {
		t.Fatal("Expected game over after filling the spawn column")
	}
	if drops != BoardHeight/2 {
		t.Errorf("Expected game over on drop %d, got %d", BoardHeight/2, drops)
	}
	if !last.GameOver {
		t.Error("Expected the final outcome to report game over")
	}
	if engine.Status() != StatusGameOver {
		t.Errorf("Expected status game_over, got %s", engine.Status())
	}

	// The rejected spawn stays visible
	before := engine.GetState()
	if before.Piece == nil || before.Piece.Position != SpawnPosition() {
		t.Errorf("Expected rejected piece at spawn, got %+v", before.Piece)
	}

	for _, intent := range Intents() {
		if out := engine.Apply(intent); out.Applied {
			t.Errorf("Expected %s to be a no-op after game over", intent)
		}
	}
	after := engine.GetState()
	if after.Piece.Position != before.Piece.Position || after.Score != before.Score {
		t.Error("Expected no state change after game over")
	}
	if after.IsPaused {
		t.Error("Expected pause toggle to be ignored after game over")
	}
}

func TestGameOverViaTicks(t *testing.T) {
	engine := newSequenceEngine(t, PieceO)
	for i := 0; i < 1000 && !engine.IsGameOver(); i++ {
		engine.Tick()
	}
	if !engine.IsGameOver() {
		t.Fatal("Expected ticks alone to end the game")
	}
	if out := engine.Tick(); out.Applied {
		t.Error("Expected tick to be a no-op after game over")
	}
	if out := engine.MoveLeft(); out.Applied {
		t.Error("Expected move to be a no-op after game over")
	}
}

func TestPauseBlocksActions(t *testing.T) {
	engine := newSequenceEngine(t, PieceT)

	out := engine.TogglePause()
	if !out.Applied || !out.Paused || !engine.IsPaused() {
		t.Fatalf("Expected pause to apply, got %+v", out)
	}
	if engine.Status() != StatusPaused {
		t.Errorf("Expected status paused, got %s", engine.Status())
	}

	before := engine.GetState()
	for _, intent := range []Intent{IntentMoveLeft, IntentMoveRight, IntentRotateCW, IntentSoftDrop, IntentHardDrop, IntentTick} {
		if out := engine.Apply(intent); out.Applied {
			t.Errorf("Expected %s to be ignored while paused", intent)
		}
	}
	after := engine.GetState()
	if after.Piece.Position != before.Piece.Position || !after.Piece.Shape.Equal(before.Piece.Shape) {
		t.Error("Expected piece unchanged while paused")
	}
	if after.Ticks != 0 {
		t.Errorf("Expected no ticks counted while paused, got %d", after.Ticks)
	}

	out = engine.TogglePause()
	if !out.Applied || out.Paused || engine.IsPaused() {
		t.Fatalf("Expected resume, got %+v", out)
	}
	if out := engine.MoveLeft(); !out.Applied {
		t.Error("Expected move to apply after resume")
	}
	if out := engine.Tick(); !out.Applied {
		t.Error("Expected tick to apply after resume")
	}
}

func TestMoveLeftAgainstWall(t *testing.T) {
	engine := newSequenceEngine(t, PieceT)

	for i := 0; i < BoardWidth; i++ {
		engine.MoveLeft()
	}
	pos := engine.ActivePiece().Position
	if pos.X != 0 {
		t.Fatalf("Expected piece against the left wall at x=0, got %d", pos.X)
	}

	out := engine.MoveLeft()
	if out.Applied {
		t.Error("Expected move against the wall to be rejected")
	}
	if engine.ActivePiece().Position != pos {
		t.Errorf("Expected position unchanged, got %v", engine.ActivePiece().Position)
	}
}

func TestMoveRightAgainstWall(t *testing.T) {
	engine := newSequenceEngine(t, PieceT)

	for i := 0; i < BoardWidth; i++ {
		engine.MoveRight()
	}
	// T is three columns wide
	if x := engine.ActivePiece().Position.X; x != BoardWidth-3 {
		t.Errorf("Expected piece at x=%d, got %d", BoardWidth-3, x)
	}
}

func TestRotate(t *testing.T) {
	engine := newSequenceEngine(t, PieceT)

	original := engine.ActivePiece().Shape
	out := engine.Rotate()
	if !out.Applied || !out.Rotated {
		t.Fatalf("Expected rotation on an empty board, got %+v", out)
	}
	piece := engine.ActivePiece()
	if piece.Rotation != 1 {
		t.Errorf("Expected rotation 1, got %d", piece.Rotation)
	}
	if !piece.Shape.Equal(RotateClockwise(original)) {
		t.Errorf("Expected clockwise shape:\n%s\ngot:\n%s", RotateClockwise(original), piece.Shape)
	}

	for i := 0; i < 3; i++ {
		engine.Rotate()
	}
	piece = engine.ActivePiece()
	if piece.Rotation != 0 || !piece.Shape.Equal(original) {
		t.Errorf("Expected four rotations to restore the piece, got rotation %d:\n%s", piece.Rotation, piece.Shape)
	}
}

func TestRotateRejectedKeepsShape(t *testing.T) {
	engine := newSequenceEngine(t, PieceI)

	// Vertical I occupies local column 2; hugging the right wall makes the
	// horizontal orientation overflow when turned back
	engine.Rotate()
	for i := 0; i < BoardWidth; i++ {
		engine.MoveRight()
	}
	before := engine.ActivePiece()
	if before.Position.X != BoardWidth-3 {
		t.Fatalf("Expected vertical I at x=%d, got %d", BoardWidth-3, before.Position.X)
	}

	out := engine.Rotate()
	if out.Applied {
		t.Fatal("Expected rotation into the wall to be rejected")
	}
	after := engine.ActivePiece()
	if !after.Shape.Equal(before.Shape) || after.Rotation != before.Rotation || after.Position != before.Position {
		t.Error("Expected rejected rotation to leave the piece untouched")
	}
}

func TestSoftDropMatchesTick(t *testing.T) {
	a := newSequenceEngine(t, PieceS, PieceZ)
	b := newSequenceEngine(t, PieceS, PieceZ)

	for i := 0; i < BoardHeight+5; i++ {
		oa := a.Tick()
		ob := b.SoftDrop()
		if oa.Locked != ob.Locked || oa.DropDistance != ob.DropDistance {
			t.Fatalf("Step %d: tick %+v and soft drop %+v diverged", i, oa, ob)
		}
	}
	if a.GetState().Ticks == 0 || b.GetState().Ticks != 0 {
		t.Error("Expected only gravity ticks to be counted")
	}
}

func TestStartResetsGame(t *testing.T) {
	engine := newSequenceEngine(t, PieceO, PieceT)
	engine.HardDrop()
	engine.TogglePause()

	state := engine.Start()
	if state.Score != 0 || state.Level != 1 || state.Lines != 0 {
		t.Errorf("Expected zeroed session, got %+v", state.SessionState)
	}
	if state.IsPaused || state.IsGameOver {
		t.Error("Expected running state after start")
	}
	if FilledCells(engine.Board()) != 0 {
		t.Error("Expected empty board after start")
	}
	if state.Piece.Type != PieceO {
		t.Errorf("Expected the sequence to rewind to O, got %s", state.Piece.Type)
	}
	if state.PiecesSpawned != 1 || state.Ticks != 0 {
		t.Errorf("Expected counters reset, got spawned=%d ticks=%d", state.PiecesSpawned, state.Ticks)
	}
}

func TestStartAfterGameOver(t *testing.T) {
	engine := newSequenceEngine(t, PieceO)
	for !engine.IsGameOver() {
		engine.HardDrop()
	}
	engine.Reset()
	if engine.IsGameOver() {
		t.Error("Expected reset to leave game over")
	}
	if out := engine.MoveLeft(); !out.Applied {
		t.Error("Expected actions to work after reset")
	}
}

func TestGetStateIsSnapshot(t *testing.T) {
	engine := newSequenceEngine(t, PieceI)
	state := engine.GetState()

	state.Board[BoardHeight-1][0] = ColorOf(PieceI)
	state.Piece.Position.X = 0
	state.Piece.Shape[0][0] = true

	fresh := engine.GetState()
	if fresh.Board[BoardHeight-1][0] != Empty {
		t.Error("Expected board snapshot not to alias engine memory")
	}
	if fresh.Piece.Position.X == 0 || fresh.Piece.Shape[0][0] {
		t.Error("Expected piece snapshot not to alias engine memory")
	}
}

func TestApplyUnknownIntent(t *testing.T) {
	engine := newSequenceEngine(t, PieceI)
	if out := engine.Apply(Intent("jump")); out.Applied {
		t.Error("Expected unknown intent to be a no-op")
	}
}

func TestApplyAll(t *testing.T) {
	engine := newSequenceEngine(t, PieceO)
	intents := make([]Intent, 0, 30)
	for i := 0; i < 30; i++ {
		intents = append(intents, IntentHardDrop)
	}
	outcomes := engine.ApplyAll(intents)
	if len(outcomes) != BoardHeight/2 {
		t.Errorf("Expected processing to stop at game over after %d intents, got %d", BoardHeight/2, len(outcomes))
	}
}

func TestInterval(t *testing.T) {
	tests := []struct {
		name       string
		reschedule bool
		level      int
		expected   time.Duration
	}{
		{"fixed at start level", false, 3, 1000 * time.Millisecond},
		{"follows current level", true, 4, 250 * time.Millisecond},
		{"level one", true, 1, 1000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			config.RescheduleOnLevelUp = tt.reschedule
			engine, err := NewEngine(config)
			if err != nil {
				t.Fatalf("Failed to create engine: %v", err)
			}
			engine.state.Level = tt.level
			if got := engine.Interval(); got != tt.expected {
				t.Errorf("Expected interval %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIntervalFor(t *testing.T) {
	if got := IntervalFor(time.Second, 2); got != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", got)
	}
	if got := IntervalFor(time.Second, 0); got != time.Second {
		t.Errorf("Expected level below 1 to clamp, got %v", got)
	}
}

func TestLevelUpOutcome(t *testing.T) {
	engine := newSequenceEngine(t, PieceO)
	board, err := BoardFromRows(rowsWithGap(2, 4, 5))
	if err != nil {
		t.Fatalf("Failed to build board: %v", err)
	}
	engine.board = board
	engine.state.Score = 900

	out := engine.HardDrop()
	if out.LinesCleared != 2 {
		t.Fatalf("Expected 2 cleared lines, got %d", out.LinesCleared)
	}
	if !out.LevelUp || engine.GetLevel() != 2 {
		t.Errorf("Expected level up to 2, got level %d (outcome %+v)", engine.GetLevel(), out)
	}
	if engine.GetScore() != 1100 {
		t.Errorf("Expected score 1100, got %d", engine.GetScore())
	}
}
