package engine

import "math/rand/v2"

// PieceSource decides the type of the next spawned piece
type PieceSource interface {
	Next() PieceType
}

// resetter is implemented by sources that replay from the start on a restart
type resetter interface {
	Reset()
}

// RandomSource picks uniformly among the catalog types
type RandomSource struct {
	seed int64
	rng  *rand.Rand
}

// NewRandomSource creates a random source. A zero seed draws a fresh random seed.
func NewRandomSource(seed int64) *RandomSource {
	s := &RandomSource{seed: seed}
	s.Reset()
	return s
}

// Next returns a uniformly random piece type
func (s *RandomSource) Next() PieceType {
	return PieceTypes[s.rng.IntN(len(PieceTypes))]
}

// Reset re-seeds the generator; seeded sources replay the same sequence
func (s *RandomSource) Reset() {
	if s.seed == 0 {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		return
	}
	s.rng = rand.New(rand.NewPCG(uint64(s.seed), uint64(s.seed)^0x9e3779b97f4a7c15))
}

// SequenceSource cycles through a fixed list of types
type SequenceSource struct {
	types []PieceType
	next  int
}

// NewSequenceSource creates a source cycling types. An empty list yields I pieces.
func NewSequenceSource(types ...PieceType) *SequenceSource {
	return &SequenceSource{types: append([]PieceType(nil), types...)}
}

// Next returns the next type in the cycle
func (s *SequenceSource) Next() PieceType {
	if len(s.types) == 0 {
		return PieceI
	}
	t := s.types[s.next%len(s.types)]
	s.next++
	return t
}

// Reset rewinds the cycle
func (s *SequenceSource) Reset() {
	s.next = 0
}

// SpawnPosition is the canonical spawn point: one column left of center, top row
func SpawnPosition() Position {
	return Position{X: BoardWidth/2 - 1, Y: 0}
}

// NewPiece builds a piece of type t in its base orientation at the spawn position
func NewPiece(t PieceType) *ActivePiece {
	entry, _ := Lookup(t)
	return &ActivePiece{
		Type:     t,
		Position: SpawnPosition(),
		Rotation: 0,
		Shape:    entry.Shape,
		Color:    entry.Color,
	}
}

// Spawn builds the next piece from source
func Spawn(source PieceSource) *ActivePiece {
	return NewPiece(source.Next())
}
