package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	Start() *GameState
	Reset() *GameState

	// Gravity and player intents
	Tick() Outcome
	MoveLeft() Outcome
	MoveRight() Outcome
	Rotate() Outcome
	SoftDrop() Outcome
	HardDrop() Outcome
	TogglePause() Outcome
	Apply(intent Intent) Outcome

	// Snapshots
	GetState() *GameState
	Board() *Board
	ActivePiece() *ActivePiece
	Status() Status
	IsGameOver() bool
	IsPaused() bool
	GetScore() int
	GetLevel() int

	// Cadence and configuration
	Interval() time.Duration
	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface
type GameEngine struct {
	config *GameConfig
	source PieceSource

	board *Board
	piece *ActivePiece
	state SessionState

	startLevel int
	ticks      int
	spawned    int
}

// NewEngine creates a started engine for the provided preset
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return newEngine(config, config.NewSource()), nil
}

// NewEngineWithSource creates a started engine that draws pieces from source
func NewEngineWithSource(config *GameConfig, source PieceSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("piece source cannot be nil")
	}
	return newEngine(config, source), nil
}

// NewEngineWithDefaults creates a started engine with the classic preset
func NewEngineWithDefaults() *GameEngine {
	config := DefaultConfig()
	return newEngine(config, config.NewSource())
}

func newEngine(config *GameConfig, source PieceSource) *GameEngine {
	e := &GameEngine{
		config: config,
		source: source,
		board:  NewBoard(),
	}
	e.Start()
	return e
}

// Start begins a new game from any state: empty board, zero score, level 1, fresh piece
func (e *GameEngine) Start() *GameState {
	if r, ok := e.source.(resetter); ok {
		r.Reset()
	}
	e.board.Reset()
	e.state = SessionState{Score: 0, Level: 1}
	e.startLevel = e.state.Level
	e.ticks = 0
	e.spawned = 0
	e.spawn()
	return e.GetState()
}

// Reset is an alias for Start
func (e *GameEngine) Reset() *GameState {
	return e.Start()
}

// Tick advances gravity by one row, locking the piece when it cannot fall
func (e *GameEngine) Tick() Outcome {
	out := e.gravity(IntentTick)
	if out.Applied {
		e.ticks++
	}
	return out
}

// MoveLeft shifts the piece one column left if legal
func (e *GameEngine) MoveLeft() Outcome {
	return e.horizontal(IntentMoveLeft, -1)
}

// MoveRight shifts the piece one column right if legal
func (e *GameEngine) MoveRight() Outcome {
	return e.horizontal(IntentMoveRight, 1)
}

// Rotate turns the piece clockwise if the rotated shape fits at the current position
func (e *GameEngine) Rotate() Outcome {
	out := Outcome{Intent: IntentRotateCW}
	if !e.canAct() {
		return out
	}
	rotated, ok := TryRotate(e.piece, e.board)
	if !ok {
		return out
	}
	e.piece.Shape = rotated
	e.piece.Rotation = (e.piece.Rotation + 1) % 4
	out.Applied = true
	out.Rotated = true
	return out
}

// SoftDrop is a player-requested gravity step
func (e *GameEngine) SoftDrop() Outcome {
	return e.gravity(IntentSoftDrop)
}

// HardDrop drops the piece to its resting row and merges it once
func (e *GameEngine) HardDrop() Outcome {
	return e.drop()
}

// TogglePause switches between running and paused; it has no effect after game over
func (e *GameEngine) TogglePause() Outcome {
	out := Outcome{Intent: IntentTogglePause}
	if e.state.IsGameOver {
		return out
	}
	e.state.IsPaused = !e.state.IsPaused
	out.Applied = true
	out.Paused = e.state.IsPaused
	return out
}

// Apply dispatches an intent to the matching operation
func (e *GameEngine) Apply(intent Intent) Outcome {
	switch intent {
	case IntentMoveLeft:
		return e.MoveLeft()
	case IntentMoveRight:
		return e.MoveRight()
	case IntentRotateCW:
		return e.Rotate()
	case IntentSoftDrop:
		return e.SoftDrop()
	case IntentHardDrop:
		return e.HardDrop()
	case IntentTogglePause:
		return e.TogglePause()
	case IntentTick:
		return e.Tick()
	default:
		return Outcome{Intent: intent}
	}
}

// GetState returns a snapshot of the game
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		Board:         e.board.Rows(),
		Piece:         e.piece.Clone(),
		Width:         BoardWidth,
		Height:        BoardHeight,
		SessionState:  e.state,
		Status:        e.state.Status(),
		ConfigName:    e.config.Name,
		Ticks:         e.ticks,
		PiecesSpawned: e.spawned,
		IntervalMS:    e.Interval().Milliseconds(),
	}
}

// Board returns a copy of the committed cells
func (e *GameEngine) Board() *Board {
	return e.board.Clone()
}

// ActivePiece returns a copy of the falling piece, or nil
func (e *GameEngine) ActivePiece() *ActivePiece {
	return e.piece.Clone()
}

// Status returns the state machine state
func (e *GameEngine) Status() Status {
	return e.state.Status()
}

// IsGameOver returns whether the game has ended
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsGameOver
}

// IsPaused returns whether the game is paused
func (e *GameEngine) IsPaused() bool {
	return e.state.IsPaused
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetLevel returns the current level
func (e *GameEngine) GetLevel() int {
	return e.state.Level
}

// Interval returns the gravity cadence: the base interval divided by the
// level captured at Start, or by the current level when the preset opts in.
func (e *GameEngine) Interval() time.Duration {
	level := e.startLevel
	if e.config.RescheduleOnLevelUp {
		level = e.state.Level
	}
	return IntervalFor(e.config.BaseInterval(), level)
}

// GetConfig returns the preset
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// IntervalFor divides base by level
func IntervalFor(base time.Duration, level int) time.Duration {
	if level < 1 {
		level = 1
	}
	return base / time.Duration(level)
}

// ApplyAll applies intents in order, stopping once the game is over
func (e *GameEngine) ApplyAll(intents []Intent) []Outcome {
	outcomes := make([]Outcome, 0, len(intents))
	for _, intent := range intents {
		if e.IsGameOver() {
			break
		}
		outcomes = append(outcomes, e.Apply(intent))
	}
	return outcomes
}
