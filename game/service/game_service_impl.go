package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/blockfall/game/autoplay"
	"github.com/wricardo/mcp-training/blockfall/game/clock"
	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

// Options tunes the game service
type Options struct {
	// AutoTick starts the gravity driver of every new session
	AutoTick bool

	// Notifiers receive every state change, including driver ticks
	Notifiers []Notifier

	// Planner backs Suggest; nil uses the default weights
	Planner *autoplay.Planner
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	notifiers []Notifier
	planner   *autoplay.Planner
	autoTick  bool
	mu        sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, notifiers ...Notifier) GameService {
	return NewGameServiceWithOptions(sessions, configs, Options{Notifiers: notifiers})
}

// NewGameServiceWithOptions creates a game service with explicit options
func NewGameServiceWithOptions(sessions SessionManager, configs ConfigManager, opts Options) GameService {
	planner := opts.Planner
	if planner == nil {
		planner = autoplay.NewDefaultPlanner()
	}
	return &gameServiceImpl{
		sessions:  sessions,
		configs:   configs,
		notifiers: opts.Notifiers,
		planner:   planner,
		autoTick:  opts.AutoTick,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	sess.Lock()
	state := sess.Engine.GetState()
	sess.Unlock()

	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		AutoTick:       sess.AutoTick(),
		GameState:      state,
		GameConfig:     sess.Config,
	}
}

// getSession looks a session up and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found, use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	if s.autoTick {
		sess.Lock()
		sess.wantAutoTick = true
		err := s.startDriverLocked(sess)
		sess.Unlock()
		if err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("failed to start gravity driver")
		}
	}

	log.Info().Str("session", sess.ID).Str("config", configID).Msg("session created")

	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session and stops its driver
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// Act applies a single intent to a session
func (s *gameServiceImpl) Act(ctx context.Context, sessionID string, intent engine.Intent) (*ActionResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	out := sess.Engine.Apply(intent)
	state := sess.Engine.GetState()
	if out.GameOver {
		sess.Close()
	}
	sess.Unlock()

	events := eventsFor(out, state)
	s.notify(sess.ID, state, events)
	if out.GameOver {
		log.Info().Str("session", sess.ID).Int("score", state.Score).Int("lines", state.Lines).Msg("game over")
	}

	return &ActionResult{
		Success:   out.Applied,
		Intent:    intent,
		Outcome:   out,
		GameState: state,
		Message:   describe(out, state),
		Events:    events,
	}, nil
}

// BulkAct applies intents in order, stopping at game over
func (s *gameServiceImpl) BulkAct(ctx context.Context, sessionID string, intents []engine.Intent) (*BulkActionResult, error) {
	if len(intents) == 0 {
		return nil, ErrNoIntents
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkActionResult{
		RequestedIntents: len(intents),
		Events:           make([]GameEvent, 0),
		Success:          true,
	}

	// Limit intents to prevent abuse
	if len(intents) > engine.MaxBulkIntents {
		result.Truncated = true
		result.Limit = engine.MaxBulkIntents
		intents = intents[:engine.MaxBulkIntents]
	}

	sess.Lock()
	start := sess.Engine.GetState()
	result.StartScore = start.Score

	for i, intent := range intents {
		if sess.Engine.IsGameOver() {
			result.StopReasonCode = StopReasonGameOver
			result.StoppedOnIntent = i + 1
			break
		}
		if sess.Engine.IsPaused() && intent != engine.IntentTogglePause {
			result.StopReasonCode = StopReasonPaused
			result.StoppedOnIntent = i + 1
			break
		}

		out := sess.Engine.Apply(intent)
		result.IntentsExecuted++
		result.Outcomes = append(result.Outcomes, out)
		if !out.Applied {
			result.Success = false
		}
		if out.Locked {
			result.PiecesLocked++
		}
		result.LinesCleared += out.LinesCleared
		result.Events = append(result.Events, eventsFor(out, sess.Engine.GetState())...)
	}

	state := sess.Engine.GetState()
	if state.IsGameOver {
		sess.Close()
	}
	sess.Unlock()

	if result.StopReasonCode == "" && result.Truncated {
		result.StopReasonCode = StopReasonTruncated
	}
	result.GameState = state
	result.EndScore = state.Score
	result.ScoreDelta = state.Score - result.StartScore
	result.GameOver = state.IsGameOver
	result.Message = fmt.Sprintf("Executed %d of %d intents: %d pieces locked, %d lines cleared",
		result.IntentsExecuted, result.RequestedIntents, result.PiecesLocked, result.LinesCleared)

	s.notify(sess.ID, state, result.Events)
	return result, nil
}

// Tick advances gravity by one step
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.Act(ctx, sessionID, engine.IntentTick)
}

// Reset restarts the game. Gravity resumes when auto tick was requested for
// the session, including after a game over stopped the driver.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	state := sess.Engine.Reset()
	if sess.wantAutoTick {
		if err := s.startDriverLocked(sess); err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("failed to restart gravity driver")
		}
	}
	sess.Unlock()

	s.notify(sess.ID, state, []GameEvent{{
		Type:      EventReset,
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
		Level:     state.Level,
	}})
	return state, nil
}

// StartAutoTick starts the session's gravity driver
func (s *gameServiceImpl) StartAutoTick(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	if sess.Engine.IsGameOver() {
		sess.Unlock()
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrGameOver)
	}
	err = s.startDriverLocked(sess)
	if err == nil {
		sess.wantAutoTick = true
	}
	sess.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to start gravity driver: %w", err)
	}

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// StopAutoTick stops the session's gravity driver
func (s *gameServiceImpl) StopAutoTick(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	sess.wantAutoTick = false
	sess.Close()
	sess.Unlock()
	log.Debug().Str("session", sess.ID).Msg("gravity driver stopped")

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// startDriverLocked (re)starts the driver at the engine's current interval.
// The caller holds the session lock.
func (s *gameServiceImpl) startDriverLocked(sess *Session) error {
	if sess.Driver == nil {
		sess.Driver = clock.NewDriver()
	}
	interval := sess.Engine.Interval()
	if err := sess.Driver.Start(interval, s.gravityStep(sess)); err != nil {
		return err
	}
	log.Debug().Str("session", sess.ID).Dur("interval", interval).Msg("gravity driver started")
	return nil
}

// gravityStep is the driver callback: one tick under the session lock
func (s *gameServiceImpl) gravityStep(sess *Session) clock.StepFunc {
	return func(ctx context.Context) (bool, time.Duration) {
		sess.Lock()
		if ctx.Err() != nil {
			sess.Unlock()
			return false, 0
		}
		out := sess.Engine.Tick()
		state := sess.Engine.GetState()
		next := sess.Engine.Interval()
		sess.Unlock()

		if out.Applied {
			s.notify(sess.ID, state, eventsFor(out, state))
		}
		if state.IsGameOver {
			log.Info().Str("session", sess.ID).Int("score", state.Score).Int("lines", state.Lines).Msg("game over")
			return false, 0
		}
		return true, next
	}
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.GetState(), nil
}

// Suggest plans a placement for the active piece
func (s *gameServiceImpl) Suggest(ctx context.Context, sessionID string) (*SuggestionResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	board := sess.Engine.Board()
	piece := sess.Engine.ActivePiece()
	over := sess.Engine.IsGameOver()
	sess.Unlock()

	if over {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrGameOver)
	}

	placement, err := s.planner.Plan(board, piece)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	return &SuggestionResult{
		SessionID: sess.ID,
		Piece:     piece,
		Placement: placement,
	}, nil
}

// ListConfigs returns available game presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) notify(sessionID string, state *engine.GameState, events []GameEvent) {
	for _, n := range s.notifiers {
		n.Notify(sessionID, state, events)
	}
}
