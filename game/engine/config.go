package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GameConfig is a difficulty preset loaded from JSON
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// BaseIntervalMS is the gravity interval at level 1
	BaseIntervalMS int `json:"base_interval_ms"`

	// RescheduleOnLevelUp makes Interval follow the current level instead of
	// the level captured when the session started.
	RescheduleOnLevelUp bool `json:"reschedule_on_level_up"`

	// Seed fixes the random piece order; 0 means unseeded
	Seed int64 `json:"seed,omitempty"`

	// PieceSequence replaces random spawning with a fixed cycle
	PieceSequence []PieceType `json:"piece_sequence,omitempty"`
}

// BaseInterval returns the level 1 gravity interval
func (c *GameConfig) BaseInterval() time.Duration {
	ms := c.BaseIntervalMS
	if ms == 0 {
		ms = DefaultBaseIntervalMS
	}
	return time.Duration(ms) * time.Millisecond
}

// NewSource builds the piece source described by the preset
func (c *GameConfig) NewSource() PieceSource {
	if len(c.PieceSequence) > 0 {
		return NewSequenceSource(c.PieceSequence...)
	}
	return NewRandomSource(c.Seed)
}

// ValidateGameConfig validates a preset for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.BaseIntervalMS != 0 &&
		(config.BaseIntervalMS < MinBaseIntervalMS || config.BaseIntervalMS > MaxBaseIntervalMS) {
		return fmt.Errorf("config validation: base_interval_ms must be between %d and %d, got %d",
			MinBaseIntervalMS, MaxBaseIntervalMS, config.BaseIntervalMS)
	}

	if len(config.PieceSequence) > MaxPieceSequence {
		return fmt.Errorf("config validation: piece_sequence may hold at most %d pieces, got %d",
			MaxPieceSequence, len(config.PieceSequence))
	}
	for i, t := range config.PieceSequence {
		if !t.Valid() {
			return fmt.Errorf("config validation: piece_sequence[%d] is not a catalog piece: %q", i, t)
		}
	}
	if len(config.PieceSequence) > 0 && config.Seed != 0 {
		return fmt.Errorf("config validation: seed and piece_sequence are mutually exclusive")
	}

	return nil
}

// LoadGameConfig loads a preset from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// NormalizeGameConfig upper-cases piece letters so hand-written presets may
// use lowercase
func NormalizeGameConfig(config *GameConfig) {
	if config == nil {
		return
	}
	for i, t := range config.PieceSequence {
		config.PieceSequence[i] = PieceType(strings.ToUpper(strings.TrimSpace(string(t))))
	}
}

// ParseGameConfig decodes and validates a preset
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	NormalizeGameConfig(&config)
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns the built-in classic preset
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Standard 10x20 marathon with one second gravity at level 1",
		BaseIntervalMS: DefaultBaseIntervalMS,
	}
}
