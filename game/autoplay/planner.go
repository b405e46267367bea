// Package autoplay plans piece placements for the active piece.
//
// The planner enumerates every reachable rotation and column, simulates a
// hard drop on a cloned board with the engine's own collision and merge
// rules, and ranks the results with a weighted board heuristic. The winning
// placement carries the intent sequence that reproduces it: rotations first
// (applied at the current position), then horizontal moves, then a hard drop.
package autoplay

import (
	"errors"

	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

// ErrNoPlacement is returned when the piece cannot be placed anywhere
var ErrNoPlacement = errors.New("no legal placement")

// Weights scores a resulting board. Positive weights reward, negative penalize.
type Weights struct {
	Lines     float64 `json:"lines"`
	Height    float64 `json:"height"`
	Holes     float64 `json:"holes"`
	Bumpiness float64 `json:"bumpiness"`
	Overflow  float64 `json:"overflow"`
}

// DefaultWeights is a well known four-feature tuning plus a large overflow penalty
var DefaultWeights = Weights{
	Lines:     0.760666,
	Height:    -0.510066,
	Holes:     -0.35663,
	Bumpiness: -0.184483,
	Overflow:  -100,
}

// Placement is a candidate final position for the active piece
type Placement struct {
	Rotation     int             `json:"rotation"`
	Position     engine.Position `json:"position"`
	Shape        engine.Shape    `json:"shape"`
	LinesCleared int             `json:"lines_cleared"`
	Holes        int             `json:"holes"`
	Height       int             `json:"aggregate_height"`
	Bumpiness    int             `json:"bumpiness"`
	Score        float64         `json:"score"`
	Intents      []engine.Intent `json:"intents"`
}

// Planner picks placements
type Planner struct {
	weights Weights
}

// NewPlanner creates a planner with custom weights
func NewPlanner(weights Weights) *Planner {
	return &Planner{weights: weights}
}

// NewDefaultPlanner creates a planner with DefaultWeights
func NewDefaultPlanner() *Planner {
	return NewPlanner(DefaultWeights)
}

// Plan returns the best placement for piece on board
func (p *Planner) Plan(board *engine.Board, piece *engine.ActivePiece) (*Placement, error) {
	candidates := p.Candidates(board, piece)
	if len(candidates) == 0 {
		return nil, ErrNoPlacement
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, nil
}

// Candidates returns every reachable placement, scored
func (p *Planner) Candidates(board *engine.Board, piece *engine.ActivePiece) []*Placement {
	if board == nil || piece == nil {
		return nil
	}

	var candidates []*Placement
	var seen []engine.Shape
	shape := piece.Shape

	for rotation := 0; rotation < 4; rotation++ {
		if rotation > 0 {
			shape = engine.RotateClockwise(shape)
			// Rotation happens in place; an illegal turn blocks every later one
			if !engine.CanPlace(shape, piece.Position, board) {
				break
			}
		} else if !engine.CanPlace(shape, piece.Position, board) {
			return nil
		}
		if containsShape(seen, shape) {
			continue
		}
		seen = append(seen, shape)

		for _, dx := range reachableOffsets(board, shape, piece.Position) {
			candidates = append(candidates, p.evaluate(board, piece, shape, rotation, dx))
		}
	}

	return candidates
}

// evaluate drops shape from the shifted position and scores the resulting board
func (p *Planner) evaluate(board *engine.Board, piece *engine.ActivePiece, shape engine.Shape, rotation, dx int) *Placement {
	pos := piece.Position.Offset(dx, 0)
	for engine.CanPlace(shape, pos.Offset(0, 1), board) {
		pos = pos.Offset(0, 1)
	}

	sim := board.Clone()
	landed := &engine.ActivePiece{Type: piece.Type, Position: pos, Shape: shape, Color: piece.Color}
	state := engine.SessionState{Level: 1}
	result := engine.Merge(sim, landed, &state)

	placement := &Placement{
		Rotation:     rotation,
		Position:     pos,
		Shape:        shape.Clone(),
		LinesCleared: result.LinesCleared,
		Holes:        engine.CountHoles(sim),
		Height:       engine.AggregateHeight(sim),
		Bumpiness:    engine.Bumpiness(sim),
		Intents:      intentsFor(rotation, dx),
	}
	placement.Score = p.weights.Lines*float64(placement.LinesCleared) +
		p.weights.Height*float64(placement.Height) +
		p.weights.Holes*float64(placement.Holes) +
		p.weights.Bumpiness*float64(placement.Bumpiness) +
		p.weights.Overflow*float64(result.CellsDropped)
	return placement
}

// reachableOffsets walks left and right from pos until the shape is blocked
func reachableOffsets(board *engine.Board, shape engine.Shape, pos engine.Position) []int {
	offsets := []int{0}
	for dx := -1; engine.CanPlace(shape, pos.Offset(dx, 0), board); dx-- {
		offsets = append(offsets, dx)
	}
	for dx := 1; engine.CanPlace(shape, pos.Offset(dx, 0), board); dx++ {
		offsets = append(offsets, dx)
	}
	return offsets
}

func intentsFor(rotation, dx int) []engine.Intent {
	intents := make([]engine.Intent, 0, rotation+abs(dx)+1)
	for i := 0; i < rotation; i++ {
		intents = append(intents, engine.IntentRotateCW)
	}
	move := engine.IntentMoveRight
	if dx < 0 {
		move = engine.IntentMoveLeft
	}
	for i := 0; i < abs(dx); i++ {
		intents = append(intents, move)
	}
	return append(intents, engine.IntentHardDrop)
}

func containsShape(shapes []engine.Shape, shape engine.Shape) bool {
	for _, s := range shapes {
		if s.Equal(shape) {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
