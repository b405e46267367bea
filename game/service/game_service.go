package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/blockfall/game/clock"
	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Act(ctx context.Context, sessionID string, intent engine.Intent) (*ActionResult, error)
	BulkAct(ctx context.Context, sessionID string, intents []engine.Intent) (*BulkActionResult, error)
	Tick(ctx context.Context, sessionID string) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Gravity driver
	StartAutoTick(ctx context.Context, sessionID string) (*SessionInfo, error)
	StopAutoTick(ctx context.Context, sessionID string) (*SessionInfo, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	Suggest(ctx context.Context, sessionID string) (*SuggestionResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Notifier receives every state change of a session
type Notifier interface {
	Notify(sessionID string, state *engine.GameState, events []GameEvent)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(sessionID string, state *engine.GameState, events []GameEvent)

// Notify calls f
func (f NotifierFunc) Notify(sessionID string, state *engine.GameState, events []GameEvent) {
	f(sessionID, state, events)
}

// Session represents an active game session.
//
// The engine is single-threaded; every call into it goes through Lock/Unlock,
// including the steps of the gravity driver.
//
// The access time has its own lock, separate from the engine lock.
type Session struct {
	ID        string
	Engine    *engine.GameEngine
	Config    *engine.GameConfig
	Driver    *clock.Driver
	CreatedAt time.Time

	mu sync.Mutex
	// wantAutoTick outlives game over; Reset restarts gravity when set.
	// Guarded by mu.
	wantAutoTick bool

	accessMu     sync.Mutex
	lastAccessed time.Time
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.accessMu.Lock()
	s.lastAccessed = t
	s.accessMu.Unlock()
}

// LastAccessed returns the time of the last access
func (s *Session) LastAccessed() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.lastAccessed
}

// Lock serializes access to the session engine
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session engine
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// AutoTick reports whether the gravity driver is running
func (s *Session) AutoTick() bool {
	return s.Driver != nil && s.Driver.Running()
}

// Close stops the gravity driver
func (s *Session) Close() {
	if s.Driver != nil {
		s.Driver.Stop()
	}
}
