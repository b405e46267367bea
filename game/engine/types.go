package engine

// Color is an opaque color token stored in committed board cells
type Color string

// Empty marks a free board cell
const Empty Color = ""

const (
	BoardWidth  = 10
	BoardHeight = 20

	// Scoring constants
	PointsPerLine  = 100
	PointsPerLevel = 1000

	// Validation constants
	DefaultBaseIntervalMS = 1000
	MinBaseIntervalMS     = 50
	MaxBaseIntervalMS     = 10000
	MaxPieceSequence      = 1000
	MaxBulkIntents        = 100
	WebSocketBufferSize   = 256
)

// Position represents x,y board coordinates. Y grows downwards.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Offset returns the position shifted by dx, dy
func (p Position) Offset(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Status is the derived state machine state of a session
type Status string

const (
	StatusRunning  Status = "running"
	StatusPaused   Status = "paused"
	StatusGameOver Status = "game_over"
)

// ActivePiece is the falling, not yet committed piece
type ActivePiece struct {
	Type     PieceType `json:"type"`
	Position Position  `json:"position"`
	Rotation int       `json:"rotation"` // accepted clockwise turns, mod 4
	Shape    Shape     `json:"shape"`
	Color    Color     `json:"color"`
}

// Clone returns a deep copy of the piece
func (p *ActivePiece) Clone() *ActivePiece {
	if p == nil {
		return nil
	}
	c := *p
	c.Shape = p.Shape.Clone()
	return &c
}

// SessionState holds score, level and the lifecycle flags
type SessionState struct {
	Score      int  `json:"score"`
	Level      int  `json:"level"`
	Lines      int  `json:"lines"`
	IsGameOver bool `json:"is_game_over"`
	IsPaused   bool `json:"is_paused"`
}

// Status derives the state machine state from the flags
func (s SessionState) Status() Status {
	switch {
	case s.IsGameOver:
		return StatusGameOver
	case s.IsPaused:
		return StatusPaused
	default:
		return StatusRunning
	}
}

// GameState is a read-only snapshot of a game. It never aliases engine memory.
type GameState struct {
	Board  [][]Color    `json:"board"`
	Piece  *ActivePiece `json:"piece"`
	Width  int          `json:"width"`
	Height int          `json:"height"`

	SessionState
	Status Status `json:"status"`

	ConfigName    string `json:"config_name"`
	Ticks         int    `json:"ticks"`
	PiecesSpawned int    `json:"pieces_spawned"`
	IntervalMS    int64  `json:"interval_ms"`
}

// Outcome reports what a single engine operation changed
type Outcome struct {
	Intent  Intent `json:"intent"`
	Applied bool   `json:"applied"`

	DropDistance int   `json:"drop_distance,omitempty"`
	Rotated      bool  `json:"rotated,omitempty"`
	Locked       bool  `json:"locked,omitempty"`
	LinesCleared int   `json:"lines_cleared,omitempty"`
	ClearedRows  []int `json:"cleared_rows,omitempty"`
	ScoreDelta   int   `json:"score_delta,omitempty"`
	LevelUp      bool  `json:"level_up,omitempty"`
	GameOver     bool  `json:"game_over,omitempty"`
	Paused       bool  `json:"paused,omitempty"`
}
