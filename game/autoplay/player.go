package autoplay

import (
	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

// Summary reports the result of an automated game
type Summary struct {
	Pieces   int  `json:"pieces"`
	Lines    int  `json:"lines"`
	Score    int  `json:"score"`
	Level    int  `json:"level"`
	Intents  int  `json:"intents"`
	GameOver bool `json:"game_over"`
}

// Play locks up to maxPieces pieces into e, following the planner's placements.
// It stops early on game over, when the game is paused, or when no placement exists.
func (p *Planner) Play(e engine.Engine, maxPieces int) Summary {
	var summary Summary

	for summary.Pieces < maxPieces && !e.IsGameOver() && !e.IsPaused() {
		placement, err := p.Plan(e.Board(), e.ActivePiece())
		if err != nil {
			break
		}
		for _, intent := range placement.Intents {
			out := e.Apply(intent)
			summary.Intents++
			if out.Locked {
				summary.Pieces++
				break
			}
		}
	}

	state := e.GetState()
	summary.Lines = state.Lines
	summary.Score = state.Score
	summary.Level = state.Level
	summary.GameOver = state.IsGameOver
	return summary
}
