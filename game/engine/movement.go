package engine

// canAct reports whether movement, rotation and gravity are allowed
func (e *GameEngine) canAct() bool {
	return e.piece != nil && !e.state.IsGameOver && !e.state.IsPaused
}

// shift moves the active piece by dx, dy when the target is legal
func (e *GameEngine) shift(dx, dy int) bool {
	if !Fits(e.piece, e.board, dx, dy) {
		return false
	}
	e.piece.Position = e.piece.Position.Offset(dx, dy)
	return true
}

// horizontal handles MoveLeft/MoveRight
func (e *GameEngine) horizontal(intent Intent, dx int) Outcome {
	out := Outcome{Intent: intent}
	if !e.canAct() {
		return out
	}
	out.Applied = e.shift(dx, 0)
	return out
}

// gravity descends one row, or locks the piece when it cannot
func (e *GameEngine) gravity(intent Intent) Outcome {
	out := Outcome{Intent: intent}
	if !e.canAct() {
		return out
	}
	out.Applied = true
	if e.shift(0, 1) {
		out.DropDistance = 1
		return out
	}
	e.lock(&out)
	return out
}

// drop descends as far as possible and locks exactly once
func (e *GameEngine) drop() Outcome {
	out := Outcome{Intent: IntentHardDrop}
	if !e.canAct() {
		return out
	}
	out.Applied = true
	for e.shift(0, 1) {
		out.DropDistance++
	}
	e.lock(&out)
	return out
}

// lock merges the piece, spawns the next one and detects game over
func (e *GameEngine) lock(out *Outcome) {
	result := Merge(e.board, e.piece, &e.state)
	out.Locked = true
	out.LinesCleared = result.LinesCleared
	out.ClearedRows = result.ClearedRows
	out.ScoreDelta = result.ScoreDelta
	out.LevelUp = result.LevelAfter > result.LevelBefore

	e.spawn()
	if !Fits(e.piece, e.board, 0, 0) {
		e.state.IsGameOver = true
		out.GameOver = true
	}
}

// spawn replaces the active piece with the next one from the source
func (e *GameEngine) spawn() {
	e.piece = Spawn(e.source)
	e.spawned++
}

// DropDistance returns how many rows the active piece can fall
func (e *GameEngine) DropDistance() int {
	if e.piece == nil {
		return 0
	}
	d := 0
	for Fits(e.piece, e.board, 0, d+1) {
		d++
	}
	return d
}
