package service

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

// eventsFor translates an engine outcome into game events
func eventsFor(out engine.Outcome, state *engine.GameState) []GameEvent {
	if !out.Applied {
		return nil
	}

	now := time.Now()
	var events []GameEvent
	add := func(eventType, message string) *GameEvent {
		events = append(events, GameEvent{Type: eventType, Message: message, Timestamp: now})
		return &events[len(events)-1]
	}

	switch out.Intent {
	case engine.IntentMoveLeft:
		add(EventMove, "Piece moved left")
	case engine.IntentMoveRight:
		add(EventMove, "Piece moved right")
	case engine.IntentRotateCW:
		add(EventRotate, "Piece rotated clockwise")
	case engine.IntentTogglePause:
		if out.Paused {
			add(EventPause, "Game paused")
		} else {
			add(EventResume, "Game resumed")
		}
	case engine.IntentTick:
		if out.DropDistance > 0 {
			add(EventTick, "Piece fell one row")
		}
	case engine.IntentSoftDrop, engine.IntentHardDrop:
		if out.DropDistance > 0 {
			add(EventMove, fmt.Sprintf("Piece dropped %d rows", out.DropDistance))
		}
	}

	if out.Locked {
		add(EventLock, "Piece locked")
	}
	if out.LinesCleared > 0 {
		e := add(EventLineClear, fmt.Sprintf("Cleared %d lines for %d points", out.LinesCleared, out.ScoreDelta))
		e.Lines = out.LinesCleared
		e.Score = state.Score
	}
	if out.LevelUp {
		e := add(EventLevelUp, fmt.Sprintf("Level %d reached", state.Level))
		e.Level = state.Level
	}
	if out.GameOver {
		e := add(EventGameOver, fmt.Sprintf("Game over with %d points", state.Score))
		e.Score = state.Score
		e.Lines = state.Lines
		e.Level = state.Level
	}

	return events
}

// describe returns a human readable summary of an outcome
func describe(out engine.Outcome, state *engine.GameState) string {
	switch {
	case state.IsGameOver && !out.Applied:
		return "Game is over, reset to play again"
	case state.IsPaused && !out.Applied:
		return "Game is paused"
	case !out.Applied:
		return fmt.Sprintf("Cannot %s from here", out.Intent)
	case out.GameOver:
		return fmt.Sprintf("Game over! Final score %d", state.Score)
	case out.LinesCleared > 0:
		return fmt.Sprintf("Cleared %d lines, score %d", out.LinesCleared, state.Score)
	case out.Locked:
		return "Piece locked"
	case out.Intent == engine.IntentTogglePause && out.Paused:
		return "Game paused"
	case out.Intent == engine.IntentTogglePause:
		return "Game resumed"
	default:
		return fmt.Sprintf("Applied %s", out.Intent)
	}
}
