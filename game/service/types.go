package service

import (
	"time"

	"github.com/wricardo/mcp-training/blockfall/game/autoplay"
	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

// Event types emitted by game operations
const (
	EventReset     = "reset"
	EventMove      = "move"
	EventRotate    = "rotate"
	EventLock      = "lock"
	EventLineClear = "line_clear"
	EventLevelUp   = "level_up"
	EventPause     = "pause"
	EventResume    = "resume"
	EventGameOver  = "game_over"
	EventTick      = "tick"
)

// Stop reason codes reported by BulkAct
const (
	StopReasonGameOver  = "game_over"
	StopReasonPaused    = "paused"
	StopReasonTruncated = "truncated"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	AutoTick       bool               `json:"auto_tick"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult contains the result of a single intent
type ActionResult struct {
	Success   bool              `json:"success"`
	Intent    engine.Intent     `json:"intent"`
	Outcome   engine.Outcome    `json:"outcome"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BulkActionResult contains the result of a batch of intents
type BulkActionResult struct {
	// Summary
	IntentsExecuted  int               `json:"intents_executed"`
	RequestedIntents int               `json:"requested_intents"`
	Success          bool              `json:"success"`
	GameState        *engine.GameState `json:"game_state"`
	Events           []GameEvent       `json:"events"`
	StopReasonCode   string            `json:"stop_reason_code,omitempty"` // game_over|paused|truncated
	StoppedOnIntent  int               `json:"stopped_on_intent,omitempty"`
	Truncated        bool              `json:"truncated,omitempty"`
	Limit            int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore   int `json:"start_score"`
	EndScore     int `json:"end_score"`
	ScoreDelta   int `json:"score_delta"`
	LinesCleared int `json:"lines_cleared"`
	PiecesLocked int `json:"pieces_locked"`

	// Per-intent trace (only for this call)
	Outcomes []engine.Outcome `json:"outcomes,omitempty"`

	GameOver bool   `json:"game_over"`
	Message  string `json:"message,omitempty"`
}

// SuggestionResult is the planner's recommendation for the active piece
type SuggestionResult struct {
	SessionID string              `json:"session_id"`
	Piece     *engine.ActivePiece `json:"piece"`
	Placement *autoplay.Placement `json:"placement"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // see the Event* constants
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Lines     int       `json:"lines,omitempty"`
	Score     int       `json:"score,omitempty"`
	Level     int       `json:"level,omitempty"`
}

// ConfigInfo provides information about a game preset
type ConfigInfo struct {
	Filename            string `json:"filename"`
	ConfigID            string `json:"config_id"` // The identifier to use for session creation
	Name                string `json:"name"`      // Display name
	Description         string `json:"description"`
	BaseIntervalMS      int    `json:"base_interval_ms"`
	RescheduleOnLevelUp bool   `json:"reschedule_on_level_up"`
	Scripted            bool   `json:"scripted"`
}
